package orbview

// Shading parameter indices selectable through the numpad. Index 0 (and
// anything past channel) selects nothing.
const (
	ParamNone = iota
	ParamGamma
	ParamBrightness
	ParamReflectance
	ParamDiffuseStrength
	ParamSkyBrightness
	ParamChannel
)

// maxChannel bounds the debug channel selector.
const maxChannel = 14

// ShadingState holds the user-tunable shading scalars and pushes them
// into the shader technique each frame. A selected parameter index picks
// which value the adjust gesture changes; adjustment steps are scaled by
// rate/fps so tuning speed does not depend on refresh rate.
type ShadingState struct {
	NoopControllable

	Gamma           float32
	Brightness      float32
	Reflectance     float32
	DiffuseStrength float32
	SkyBrightness   float32
	Channel         int

	selected int
	fps      float32
}

// NewShadingState returns the tuned defaults the demo ships with.
func NewShadingState() *ShadingState {
	return &ShadingState{
		Gamma:           2.2,
		Brightness:      0.8,
		Reflectance:     2.35,
		DiffuseStrength: 1.25,
		SkyBrightness:   1.1,
		Channel:         0,
		fps:             1,
	}
}

// SetFPS feeds the frame rate into the adjustment-step normalization.
// Non-positive values are ignored.
func (s *ShadingState) SetFPS(fps float32) {
	if fps > 0 {
		s.fps = fps
	}
}

// SelectParameter picks which scalar AdjustSelected modifies.
func (s *ShadingState) SelectParameter(index int) {
	s.selected = index
}

// AdjustSelected nudges the selected parameter up or down. Only the sign
// of delta matters; each parameter has its own per-second rate. The
// channel selector steps by whole numbers and clamps to [0, maxChannel].
func (s *ShadingState) AdjustSelected(delta float64) {
	sign := float32(1)
	if delta < 0 {
		sign = -1
	}

	switch s.selected {
	case ParamGamma:
		s.Gamma += sign * 0.1 / s.fps
	case ParamBrightness:
		s.Brightness += sign * 0.2 / s.fps
	case ParamReflectance:
		s.Reflectance += sign * 0.4 / s.fps
	case ParamDiffuseStrength:
		s.DiffuseStrength += sign * 0.4 / s.fps
	case ParamSkyBrightness:
		s.SkyBrightness += sign * 0.4 / s.fps
	case ParamChannel:
		if delta >= 0 && s.Channel < maxChannel {
			s.Channel++
		} else if delta < 0 && s.Channel > 0 {
			s.Channel--
		}
	}
}

// Push uploads the shading control values in one call, annotated with
// the current scene object count.
func (s *ShadingState) Push(bridge ShaderBridge, objectCount int) {
	bridge.SetShadingScalars(
		s.Gamma,
		s.Brightness,
		s.Reflectance,
		s.DiffuseStrength,
		s.SkyBrightness,
		s.Channel,
		objectCount,
	)
}

// Numpad gestures are the only ones the shading state reacts to.

func (s *ShadingState) NumpadNumber(n int) { s.SelectParameter(n) }

func (s *ShadingState) NumpadAddSubtract(delta float64) { s.AdjustSelected(delta) }
