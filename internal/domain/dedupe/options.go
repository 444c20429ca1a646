package dedupe

// Option applies a configuration option to a Window.
type Option func(*Window)

// WithCapacity sets the maximum number of identities to keep.
// Values <= 0 fall back to DefaultCapacity.
func WithCapacity(n int) Option {
	return func(w *Window) {
		w.capacity = n
	}
}
