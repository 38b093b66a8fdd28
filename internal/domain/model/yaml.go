package model

import (
	"gopkg.in/yaml.v3"
)

// MarshalYAML mirrors MarshalJSON: finite values as numbers, otherwise null.
func (m Metric) MarshalYAML() (any, error) {
	v, ok := m.Finite()
	if !ok {
		return nil, nil
	}
	return v, nil
}

// MarshalYAML encodes the mapping in insertion order.
func (p Providers) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range p.names {
		var val yaml.Node
		if err := val.Encode(p.byName[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &val)
	}
	return node, nil
}
