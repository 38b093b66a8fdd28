package ingest

// State is where an ingestion run stands.
type State int

const (
	// Loading means the run has not finished yet.
	Loading State = iota
	// Ready means the corpus came from the source.
	Ready
	// Fallback means the run failed or found nothing and the built-in
	// sample dataset is in use.
	Fallback
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run is over.
func (s State) Terminal() bool { return s == Ready || s == Fallback }

// MarshalText writes the state name, so JSON and YAML show "ready" rather than 1.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
