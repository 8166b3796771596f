package dedupe

// Option applies a configuration option to the frame window.
type Option func(*frameWindow)

// WithMaxSize sets how many frame IDs are remembered. When the window is full
// the oldest ID is forgotten. Values <= 0 keep the default.
func WithMaxSize(maxSize int) Option {
	return func(w *frameWindow) {
		if maxSize > 0 {
			w.maxSize = maxSize
		}
	}
}
