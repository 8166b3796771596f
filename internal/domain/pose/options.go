package pose

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithPitchDown sets the pitch (degrees) below which the head is nodding down.
func WithPitchDown(v float64) Option {
	return func(c *Classifier) { c.pitchDown = v }
}

// WithYawRight sets the yaw above which the driver is looking right.
func WithYawRight(v float64) Option {
	return func(c *Classifier) { c.yawRight = v }
}

// WithYawLeft sets the yaw below which the driver is looking left.
func WithYawLeft(v float64) Option {
	return func(c *Classifier) { c.yawLeft = v }
}

// WithRollLeft sets the roll above which the head is tilting left.
func WithRollLeft(v float64) Option {
	return func(c *Classifier) { c.rollLeft = v }
}

// WithRollRight sets the roll below which the head is tilting right.
func WithRollRight(v float64) Option {
	return func(c *Classifier) { c.rollRight = v }
}
