// Package audio provides the sound-source primitives the simulation core
// drives: looping clips with quantized, smoothly ramped volume for engine
// hum, and one-shot fire sounds with short-window volume stacking. Playback
// goes through the beep mixer; a silent mode keeps headless runs and tests
// off the audio device.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is used for all generated tones
const DefaultSampleRate = beep.SampleRate(44100)

// Engine owns the mixer all clips play into. With silent=true no speaker is
// initialized and clips only track their volume state.
type Engine struct {
	mixer  *beep.Mixer
	silent bool
	mu     sync.Mutex
}

// NewEngine initializes the audio device and returns an engine ready to play
// clips
func NewEngine() (*Engine, error) {
	if err := speaker.Init(DefaultSampleRate, DefaultSampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	e := &Engine{mixer: &beep.Mixer{}}
	speaker.Play(e.mixer)
	return e, nil
}

// NewSilentEngine returns an engine that performs all volume bookkeeping but
// never touches the audio device
func NewSilentEngine() *Engine {
	return &Engine{mixer: &beep.Mixer{}, silent: true}
}

// Clip is a looping sound whose volume moves toward a target in small steps
// each tick, so burn-level changes produce a ramp instead of an audible jump.
type Clip struct {
	engine *Engine
	volume *effects.Volume

	current   float64
	target    float64
	rampPerMs float64
	playing   bool
}

// NewLoopingTone creates a looping sine clip at the given frequency, starting
// silent. rampPerMs is the maximum volume change per millisecond of
// simulation time.
func (e *Engine) NewLoopingTone(freq float64, rampPerMs float64) *Clip {
	c := &Clip{
		engine:    e,
		rampPerMs: rampPerMs,
	}
	c.volume = &effects.Volume{
		Streamer: newSineLoop(freq, DefaultSampleRate),
		Base:     2,
		Silent:   true,
	}
	return c
}

// SetVolume sets the ramp target in [0, 1]
func (c *Clip) SetVolume(target float64) {
	if target < 0 {
		target = 0
	}
	if target > 1 {
		target = 1
	}
	c.target = target
}

// Volume returns the current (ramped) volume
func (c *Clip) Volume() float64 {
	return c.current
}

// Tick advances the ramp by dt milliseconds and pushes the result to the
// mixer
func (c *Clip) Tick(dt float64) {
	step := c.rampPerMs * dt
	switch {
	case c.current < c.target:
		c.current = math.Min(c.current+step, c.target)
	case c.current > c.target:
		c.current = math.Max(c.current-step, c.target)
	}
	c.apply()
}

func (c *Clip) apply() {
	if c.engine.silent {
		return
	}
	speaker.Lock()
	if c.current <= 0 {
		c.volume.Silent = true
	} else {
		c.volume.Silent = false
		// effects.Volume is exponential; log2 maps linear [0,1] onto it
		c.volume.Volume = math.Log2(c.current)
	}
	speaker.Unlock()

	if !c.playing && c.current > 0 {
		c.engine.mu.Lock()
		c.engine.mixer.Add(c.volume)
		c.engine.mu.Unlock()
		c.playing = true
	}
}

// QuantizeVolume maps a continuous level in [0, 1] onto a small number of
// discrete grades. The engine hum switches between grades and the clip ramp
// smooths the steps.
func QuantizeVolume(level float64, grades int) float64 {
	if grades < 1 {
		return 0
	}
	if level <= 0 {
		return 0
	}
	if level > 1 {
		level = 1
	}
	return math.Ceil(level*float64(grades)) / float64(grades)
}

// Stacker merges fire sounds triggered close together: repeats inside the
// stack window raise the volume of the prior shot instead of playing a new
// overlapping clip. A zero Stacker only does the volume bookkeeping; one
// built by NewFireStacker also drives a burst on the mixer.
type Stacker struct {
	StackTime float64 // ms

	engine *Engine
	shot   *burst

	lastPlay float64 // accumulated sim time of last play
	now      float64
	stacked  float64
}

// NewFireStacker creates a fire-sound stacker whose stacked volume drives a
// short percussive tone on the mixer. stackTime is in milliseconds.
func (e *Engine) NewFireStacker(stackTime float64) *Stacker {
	s := &Stacker{StackTime: stackTime, engine: e}
	if !e.silent {
		s.shot = &burst{freq: 220, rate: DefaultSampleRate}
		e.mu.Lock()
		e.mixer.Add(s.shot)
		e.mu.Unlock()
	}
	return s
}

// Tick advances the stacker's notion of simulation time by dt ms
func (s *Stacker) Tick(dt float64) {
	s.now += dt
}

// Play triggers one shot and returns the volume it plays at: base volume
// when the window has passed, accumulated volume when stacking.
func (s *Stacker) Play(volume float64) float64 {
	if s.now-s.lastPlay < s.StackTime && s.stacked > 0 {
		s.stacked += volume
	} else {
		s.stacked = volume
	}
	s.lastPlay = s.now
	if s.stacked > 1 {
		s.stacked = 1
	}
	if s.shot != nil {
		speaker.Lock()
		s.shot.fire(s.stacked)
		speaker.Unlock()
	}
	return s.stacked
}

// burst is a one-shot decaying tone. It streams silence until fired, so it
// stays in the mixer permanently and is retriggered per shot.
type burst struct {
	freq  float64
	rate  beep.SampleRate
	phase float64

	total     int
	remaining int
	volume    float64
}

func (b *burst) fire(volume float64) {
	b.total = b.rate.N(60 * time.Millisecond)
	b.remaining = b.total
	b.volume = volume
}

func (b *burst) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if b.remaining <= 0 {
			samples[i][0], samples[i][1] = 0, 0
			continue
		}
		decay := float64(b.remaining) / float64(b.total)
		val := b.volume * decay * math.Sin(2*math.Pi*b.phase)
		samples[i][0] = val
		samples[i][1] = val
		b.phase += b.freq / float64(b.rate)
		b.phase -= math.Floor(b.phase)
		b.remaining--
	}
	return len(samples), true
}

func (b *burst) Err() error { return nil }

// sineLoop is an endless sine streamer for engine hum
type sineLoop struct {
	freq  float64
	phase float64
	rate  beep.SampleRate
}

func newSineLoop(freq float64, rate beep.SampleRate) beep.Streamer {
	return &sineLoop{freq: freq, rate: rate}
}

func (s *sineLoop) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		val := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = val
		samples[i][1] = val
		s.phase += s.freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
	}
	return len(samples), true
}

func (s *sineLoop) Err() error { return nil }
