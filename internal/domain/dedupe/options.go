package dedupe

const defaultMaxSize = 50000

// Option configures the in-memory Deduper.
type Option func(*memoryDeduper)

// WithMaxSize bounds the number of remembered keys. A value <= 0 removes the
// bound.
func WithMaxSize(maxSize int) Option {
	return func(d *memoryDeduper) {
		d.maxSize = maxSize
	}
}
