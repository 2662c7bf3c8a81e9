package orbview

// Controllable is the capability interface every user-steerable entity
// implements. Most entities care about a small subset of gestures and
// leave the rest as no-ops; embed NoopControllable and override what you
// need.
type Controllable interface {
	MouseUpDown(delta float64)
	MouseLeftRight(delta float64)
	ArrowsUpDown(delta float64)
	ArrowsLeftRight(delta float64)
	NumpadNumber(n int)
	NumpadAddSubtract(delta float64)
	WasdUpDown(delta float64)
	WasdLeftRight(delta float64)
}

// NoopControllable ignores every gesture.
type NoopControllable struct{}

func (NoopControllable) MouseUpDown(float64)       {}
func (NoopControllable) MouseLeftRight(float64)    {}
func (NoopControllable) ArrowsUpDown(float64)      {}
func (NoopControllable) ArrowsLeftRight(float64)   {}
func (NoopControllable) NumpadNumber(int)          {}
func (NoopControllable) NumpadAddSubtract(float64) {}
func (NoopControllable) WasdUpDown(float64)        {}
func (NoopControllable) WasdLeftRight(float64)     {}

// Controls fans every gesture out to all bound entities. The input layer
// calls the Controls; each entity reacts to the gestures it implements.
type Controls struct {
	sinks []Controllable
}

func NewControls(sinks ...Controllable) *Controls {
	return &Controls{sinks: sinks}
}

// Bind adds entities to the dispatch set.
func (c *Controls) Bind(sinks ...Controllable) {
	c.sinks = append(c.sinks, sinks...)
}

func (c *Controls) MouseUpDown(delta float64) {
	for _, s := range c.sinks {
		s.MouseUpDown(delta)
	}
}

func (c *Controls) MouseLeftRight(delta float64) {
	for _, s := range c.sinks {
		s.MouseLeftRight(delta)
	}
}

func (c *Controls) ArrowsUpDown(delta float64) {
	for _, s := range c.sinks {
		s.ArrowsUpDown(delta)
	}
}

func (c *Controls) ArrowsLeftRight(delta float64) {
	for _, s := range c.sinks {
		s.ArrowsLeftRight(delta)
	}
}

func (c *Controls) NumpadNumber(n int) {
	for _, s := range c.sinks {
		s.NumpadNumber(n)
	}
}

func (c *Controls) NumpadAddSubtract(delta float64) {
	for _, s := range c.sinks {
		s.NumpadAddSubtract(delta)
	}
}

func (c *Controls) WasdUpDown(delta float64) {
	for _, s := range c.sinks {
		s.WasdUpDown(delta)
	}
}

func (c *Controls) WasdLeftRight(delta float64) {
	for _, s := range c.sinks {
		s.WasdLeftRight(delta)
	}
}
