package orbview

import (
	"time"
)

// Timer measures wall-clock seconds since it was started.
type Timer struct {
	start time.Time
}

func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// Seconds returns the elapsed time since the timer started.
func (t Timer) Seconds() float32 {
	return float32(time.Since(t.start).Seconds())
}

// FPSCounter averages the frame rate over one-second windows. Tick is
// called once per frame; between window rollovers it keeps reporting the
// last completed average.
type FPSCounter struct {
	last    time.Time
	elapsed float64
	frames  int
	fps     float64
}

func NewFPSCounter() *FPSCounter {
	return &FPSCounter{last: time.Now(), fps: 60}
}

// Tick registers one frame and returns the current average FPS.
func (f *FPSCounter) Tick() float64 {
	now := time.Now()
	f.elapsed += now.Sub(f.last).Seconds()
	f.last = now
	f.frames++

	if f.elapsed >= 1.0 {
		f.fps = float64(f.frames) / f.elapsed
		f.frames = 0
		f.elapsed = 0
	}
	return f.fps
}
