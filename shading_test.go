package orbview

import (
	"math"
	"testing"
)

func TestShadingDefaults(t *testing.T) {
	s := NewShadingState()

	if s.Gamma != 2.2 || s.Brightness != 0.8 || s.Reflectance != 2.35 ||
		s.DiffuseStrength != 1.25 || s.SkyBrightness != 1.1 || s.Channel != 0 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestShadingAdjustRates(t *testing.T) {
	s := NewShadingState()
	s.SetFPS(60)

	cases := []struct {
		param int
		read  func() float32
		rate  float32
	}{
		{ParamGamma, func() float32 { return s.Gamma }, 0.1},
		{ParamBrightness, func() float32 { return s.Brightness }, 0.2},
		{ParamReflectance, func() float32 { return s.Reflectance }, 0.4},
		{ParamDiffuseStrength, func() float32 { return s.DiffuseStrength }, 0.4},
		{ParamSkyBrightness, func() float32 { return s.SkyBrightness }, 0.4},
	}

	for _, tc := range cases {
		s.SelectParameter(tc.param)
		before := tc.read()
		s.AdjustSelected(1)
		want := before + tc.rate/60
		if got := tc.read(); math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("param %d stepped to %v, want %v", tc.param, got, want)
		}

		s.AdjustSelected(-1)
		if got := tc.read(); math.Abs(float64(got-before)) > 1e-6 {
			t.Errorf("param %d did not step back down: %v vs %v", tc.param, got, before)
		}
	}
}

func TestShadingAdjustUsesSignOnly(t *testing.T) {
	s := NewShadingState()
	s.SetFPS(60)
	s.SelectParameter(ParamGamma)

	s.AdjustSelected(0.001)
	small := s.Gamma

	s = NewShadingState()
	s.SetFPS(60)
	s.SelectParameter(ParamGamma)
	s.AdjustSelected(1000)

	if s.Gamma != small {
		t.Errorf("step size depends on delta magnitude: %v vs %v", s.Gamma, small)
	}
}

func TestShadingChannelBounds(t *testing.T) {
	s := NewShadingState()
	s.SelectParameter(ParamChannel)

	for i := 0; i < 100; i++ {
		s.AdjustSelected(1)
	}
	if s.Channel != 14 {
		t.Errorf("channel ran past the top bound: %d", s.Channel)
	}

	for i := 0; i < 100; i++ {
		s.AdjustSelected(-1)
	}
	if s.Channel != 0 {
		t.Errorf("channel ran past the bottom bound: %d", s.Channel)
	}

	// Whole steps regardless of fps.
	s.SetFPS(144)
	s.AdjustSelected(1)
	if s.Channel != 1 {
		t.Errorf("channel stepped fractionally: %d", s.Channel)
	}
}

func TestShadingNoSelectionIsNoop(t *testing.T) {
	s := NewShadingState()
	before := *s

	s.AdjustSelected(1)
	s.SelectParameter(ParamNone)
	s.AdjustSelected(-1)
	s.SelectParameter(99)
	s.AdjustSelected(1)

	if s.Gamma != before.Gamma || s.Brightness != before.Brightness ||
		s.Reflectance != before.Reflectance || s.DiffuseStrength != before.DiffuseStrength ||
		s.SkyBrightness != before.SkyBrightness || s.Channel != before.Channel {
		t.Errorf("adjust without a selected parameter changed state: %+v", s)
	}
}

func TestShadingPush(t *testing.T) {
	s := NewShadingState()
	trace := &frameTrace{}
	s.Channel = 3

	s.Push(&stubBridge{trace: trace}, 7)

	if len(trace.events) != 1 || trace.events[0] != "shading channel=3 count=7" {
		t.Errorf("push recorded %v", trace.events)
	}
}

func TestShadingNumpadGestures(t *testing.T) {
	s := NewShadingState()
	s.SetFPS(60)

	s.NumpadNumber(ParamBrightness)
	s.NumpadAddSubtract(1)
	if math.Abs(float64(s.Brightness-(0.8+0.2/60))) > 1e-6 {
		t.Errorf("numpad gestures did not adjust brightness: %v", s.Brightness)
	}
}
