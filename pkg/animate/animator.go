package animate

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/observability"
)

// ErrBusy is returned by [Animator.Run] while another run is in progress.
var ErrBusy = errors.New(errors.ErrCodeBusy, "an animation is already running")

// Settler is implemented by hosts that drive their own clock. The animator
// calls Settle after it has started a batch of transitions and before it
// waits for them.
type Settler interface {
	Settle()
}

// Animator plays scripts on a host, one at a time.
type Animator struct {
	host   Host
	clock  Clock
	logger *log.Logger

	busy  atomic.Bool
	phase atomic.Int32
}

// Option configures an [Animator].
type Option func(*Animator)

// WithClock replaces the wall clock used for pauses.
func WithClock(c Clock) Option { return func(a *Animator) { a.clock = c } }

// WithLogger enables debug logging of phase changes.
func WithLogger(l *log.Logger) Option { return func(a *Animator) { a.logger = l } }

// New returns an animator drawing on host.
func New(host Host, opts ...Option) *Animator {
	a := &Animator{host: host, clock: SystemClock{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Busy reports whether a run is in progress.
func (a *Animator) Busy() bool { return a.busy.Load() }

// Phase returns the phase currently playing.
func (a *Animator) Phase() Phase { return Phase(a.phase.Load()) }

// Run plays script on scene. It returns [ErrBusy] without touching the host
// if a run is already in progress. Input on the host is disabled for the
// duration of the run. done, if not nil, is called after the animator is
// idle again, so it may start the next run.
//
// If ctx is cancelled the run stops after the current batch of transitions
// is issued, spawned shapes are removed and ctx.Err() is returned.
func (a *Animator) Run(ctx context.Context, scene *Scene, script *Script, done func(error)) (err error) {
	if !a.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	runID := uuid.New()
	hooks := observability.Animation()
	start := a.clock.Now()
	p := &player{a: a, scene: scene, spawned: make([]ShapeID, script.Spawned), live: make([]bool, script.Spawned)}

	a.host.SetInteractive(false)
	hooks.OnAnimationStart(ctx, runID.String(), len(script.Stages))
	defer func() {
		if err != nil {
			p.cleanup()
		}
		a.phase.Store(int32(PhaseIdle))
		a.host.SetInteractive(true)
		hooks.OnAnimationComplete(ctx, runID.String(), a.clock.Now().Sub(start), err)
		a.busy.Store(false)
		if done != nil {
			done(err)
		}
	}()

	for _, st := range script.Stages {
		a.phase.Store(int32(st.Phase))
		hooks.OnPhase(ctx, runID.String(), st.Phase.String())
		if a.logger != nil {
			a.logger.Debug("phase", "run", runID, "phase", st.Phase)
		}
		if err := p.play(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// player holds the state of one run.
type player struct {
	a       *Animator
	scene   *Scene
	spawned []ShapeID
	live    []bool
	pending []<-chan struct{}
}

func (p *player) resolve(t Target) (ShapeID, bool) {
	pick := func(ids []ShapeID) (ShapeID, bool) {
		if t.Index < 0 || t.Index >= len(ids) {
			return 0, false
		}
		return ids[t.Index], true
	}
	switch t.Kind {
	case TargetCanvas:
		return p.scene.Canvas, true
	case TargetFrame:
		return p.scene.Frame, true
	case TargetNode:
		return pick(p.scene.Nodes[t.Role])
	case TargetLabel:
		return pick(p.scene.Labels[t.Role])
	case TargetEdge:
		return pick(p.scene.Edges[t.Role])
	case TargetSpawned:
		if t.Index < 0 || t.Index >= len(p.live) || !p.live[t.Index] {
			return 0, false
		}
		return p.spawned[t.Index], true
	}
	return 0, false
}

func (p *player) play(ctx context.Context, st Stage) error {
	host := p.a.host
	for _, act := range st.Actions {
		switch act.Kind {
		case ActSpawn:
			if act.Shape == nil || act.Target.Index < 0 || act.Target.Index >= len(p.spawned) {
				return errors.New(errors.ErrCodeInternal, "%s: bad spawn slot %d", st.Phase, act.Target.Index)
			}
			p.spawned[act.Target.Index] = host.Append(*act.Shape)
			p.live[act.Target.Index] = true
		case ActTween:
			id, ok := p.resolve(act.Target)
			if !ok {
				return errors.New(errors.ErrCodeInternal, "%s: no shape for target %+v", st.Phase, act.Target)
			}
			p.pending = append(p.pending, host.Transition(Transition{
				ID: id, To: act.To, Delay: act.Delay, Duration: act.Duration, Easing: act.Easing,
			}))
		case ActAwait:
			if err := p.await(ctx); err != nil {
				return err
			}
		case ActWait:
			if err := p.await(ctx); err != nil {
				return err
			}
			if err := p.sleep(ctx, act.Duration); err != nil {
				return err
			}
		case ActRemove:
			if id, ok := p.resolve(act.Target); ok {
				host.Remove(id)
				p.live[act.Target.Index] = false
			}
		}
	}
	return p.await(ctx)
}

// await blocks until every pending transition has ended.
func (p *player) await(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	if s, ok := p.a.host.(Settler); ok {
		s.Settle()
	}
	for _, ch := range p.pending {
		select {
		case <-ch:
		case <-ctx.Done():
			p.pending = nil
			return ctx.Err()
		}
	}
	p.pending = p.pending[:0]
	return nil
}

func (p *player) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-p.a.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cleanup removes spawned shapes left behind by an aborted run.
func (p *player) cleanup() {
	for i, live := range p.live {
		if live {
			p.a.host.Remove(p.spawned[i])
			p.live[i] = false
		}
	}
}
