package animate

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
)

// Tween is one attribute change on the recorded timeline.
type Tween struct {
	Attr     string        `json:"attr"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Begin    time.Duration `json:"begin"`
	Duration time.Duration `json:"duration"`
	Easing   Easing        `json:"easing"`
}

// End is when the tween settles.
func (t Tween) End() time.Duration { return t.Begin + t.Duration }

// Track is the recorded life of one shape.
type Track struct {
	ID    ShapeID       `json:"id"`
	Shape Shape         `json:"shape"`
	Born  time.Duration `json:"born"`
	// Died is negative while the shape is still on the surface.
	Died   time.Duration `json:"died"`
	Tweens []Tween       `json:"tweens,omitempty"`

	current Attrs
}

// Alive reports whether the shape is on the surface at t.
func (tr *Track) Alive(t time.Duration) bool {
	return t >= tr.Born && (tr.Died < 0 || t < tr.Died)
}

// AttrsAt returns the shape's attributes at t. Numeric attributes are
// interpolated with each tween's easing; others switch when the tween ends.
func (tr *Track) AttrsAt(t time.Duration) Attrs {
	a := tr.Shape.Attrs.Clone()
	for _, tw := range tr.Tweens {
		switch {
		case t < tw.Begin:
		case t >= tw.End():
			a[tw.Attr] = tw.To
		default:
			from, err1 := strconv.ParseFloat(tw.From, 64)
			to, err2 := strconv.ParseFloat(tw.To, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			p := tw.Easing.Ease(float64(t-tw.Begin) / float64(tw.Duration))
			a[tw.Attr] = Num(from + (to-from)*p)
		}
	}
	return a
}

// Toggle is a change of the surface's interactivity.
type Toggle struct {
	At time.Duration `json:"at"`
	On bool          `json:"on"`
}

// Recording is the finished timeline of a [Recorder].
type Recording struct {
	Tracks      []*Track      `json:"tracks"`
	Interactive []Toggle      `json:"interactive"`
	Duration    time.Duration `json:"duration"`
}

// Track returns the track of id.
func (r *Recording) Track(id ShapeID) *Track {
	if int(id) < 0 || int(id) >= len(r.Tracks) {
		return nil
	}
	return r.Tracks[id]
}

// Recorder is a [Host] and [Clock] on virtual time. Transitions complete
// as soon as the animator waits for them, and pauses advance the clock
// without sleeping, so a whole script plays instantly.
type Recorder struct {
	mu          sync.Mutex
	epoch       time.Time
	now         time.Duration
	tracks      []*Track
	interactive []Toggle
	pending     []chan struct{}
	horizon     time.Duration
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{epoch: time.Unix(0, 0)}
}

// Append implements Host.
func (r *Recorder) Append(s Shape) ShapeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ShapeID(len(r.tracks))
	s.Attrs = s.Attrs.Clone()
	r.tracks = append(r.tracks, &Track{ID: id, Shape: s, Born: r.now, Died: -1, current: s.Attrs.Clone()})
	return id
}

// Transition implements Host. The returned channel is closed on the next
// [Recorder.Settle].
func (r *Recorder) Transition(t Transition) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.pending = append(r.pending, ch)
	begin := r.now + t.Delay
	r.horizon = max(r.horizon, begin+t.Duration)
	if int(t.ID) < 0 || int(t.ID) >= len(r.tracks) {
		return ch
	}
	tr := r.tracks[t.ID]
	keys := make([]string, 0, len(t.To))
	for k := range t.To {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		tr.Tweens = append(tr.Tweens, Tween{
			Attr: k, From: tr.current[k], To: t.To[k],
			Begin: begin, Duration: t.Duration, Easing: t.Easing,
		})
		tr.current[k] = t.To[k]
	}
	return ch
}

// Settle advances the clock past every pending transition and completes
// them.
func (r *Recorder) Settle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = max(r.now, r.horizon)
	for _, ch := range r.pending {
		close(ch)
	}
	r.pending = nil
}

// Remove implements Host.
func (r *Recorder) Remove(id ShapeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= 0 && int(id) < len(r.tracks) && r.tracks[id].Died < 0 {
		r.tracks[id].Died = r.now
	}
}

// SetInteractive implements Host.
func (r *Recorder) SetInteractive(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interactive = append(r.interactive, Toggle{At: r.now, On: on})
}

// Now implements Clock.
func (r *Recorder) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch.Add(r.now)
}

// After implements Clock by advancing virtual time.
func (r *Recorder) After(d time.Duration) <-chan time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now += max(d, 0)
	r.horizon = max(r.horizon, r.now)
	ch := make(chan time.Time, 1)
	ch <- r.epoch.Add(r.now)
	return ch
}

// Elapsed is the virtual time played so far.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// Recording snapshots the timeline.
func (r *Recorder) Recording() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := &Recording{Duration: r.now, Interactive: slices.Clone(r.interactive)}
	for _, tr := range r.tracks {
		c := *tr
		c.Tweens = slices.Clone(tr.Tweens)
		c.current = nil
		rec.Tracks = append(rec.Tracks, &c)
	}
	return rec
}

// Record mounts d on a fresh recorder, plays script on it and returns the
// timeline. Tracks 0 and 1 are the canvas and the frame.
func Record(ctx context.Context, d *diagram.Diagram, th styles.Theme, script *Script) (*Recording, error) {
	r := NewRecorder()
	scene := Mount(r, d, th)
	a := New(r, WithClock(r))
	if err := a.Run(ctx, scene, script, nil); err != nil {
		return nil, err
	}
	return r.Recording(), nil
}

// Still returns the recording of d at rest: the mounted static diagram and
// no motion.
func Still(d *diagram.Diagram, th styles.Theme) *Recording {
	r := NewRecorder()
	Mount(r, d, th)
	return r.Recording()
}
