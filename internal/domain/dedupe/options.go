package dedupe

// Option configures an in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets how many IDs are remembered. Non-positive means no limit.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
