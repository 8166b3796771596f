package hysteresis

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithEARThreshold sets the eye aspect ratio under which an eye counts as closed.
func WithEARThreshold(v float64) Option {
	return func(c *Classifier) {
		c.earThreshold = v
	}
}

// WithEARConsecFrames sets how many consecutive closed-eye frames make a driver drowsy.
// Values below 1 are ignored.
func WithEARConsecFrames(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.earConsecFrames = n
		}
	}
}

// WithMARThreshold sets the mouth aspect ratio over which the mouth counts as open.
func WithMARThreshold(v float64) Option {
	return func(c *Classifier) {
		c.marThreshold = v
	}
}

// WithYawnConsecFrames sets how many consecutive open-mouth frames make a yawn.
// Values below 1 are ignored.
func WithYawnConsecFrames(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.yawnConsecFrames = n
		}
	}
}
