// Package flow drives an experiment session: which trial comes next,
// whether a response is accepted, how it is scored and what is recorded.
//
// A session is a list of [Block]s. Each block shows its trials one at a
// time; after the last trial of a block the participant describes the rule
// in words before the next block starts. The controller owns the only
// mutable session state (current position, listening flag, reaction-time
// clock), so a host never needs globals for it.
package flow

import (
	"context"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

// Defaults matching the list-routine experiment.
const (
	DefaultBlocks        = 10
	DefaultMaxListLen    = 15
	DefaultMaxElement    = 99
	DefaultFeedbackDelay = 3 * time.Second
)

var (
	// ErrNotListening is returned for responses while no trial is open.
	ErrNotListening = errors.New(errors.ErrCodeBusy, "not accepting responses")
	// ErrDescriptionPending is returned by Next until the finished block's
	// rule has been described.
	ErrDescriptionPending = errors.New(errors.ErrCodeInvalidInput, "describe the rule of the finished block first")
	// ErrDone is returned by Next after the last block.
	ErrDone = errors.New(errors.ErrCodeNotFound, "session complete")
)

// Config controls scoring and pacing.
type Config struct {
	Condition  int
	MaxListLen int
	MaxElement int
	// FeedbackDelay is how long a host should keep an incorrect answer on
	// screen before moving on.
	FeedbackDelay time.Duration
	// SkipDescriptions disables the rule description after each block.
	SkipDescriptions bool
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.MaxListLen <= 0 {
		c.MaxListLen = DefaultMaxListLen
	}
	if c.MaxElement <= 0 {
		c.MaxElement = DefaultMaxElement
	}
	if c.FeedbackDelay == 0 {
		c.FeedbackDelay = DefaultFeedbackDelay
	}
	return c
}

// Explainer plays the explanation of a forced-choice trial.
type Explainer interface {
	Explain(ctx context.Context, trial *stimulus.Trial) error
}

// ExplainerFunc adapts a function to [Explainer].
type ExplainerFunc func(ctx context.Context, trial *stimulus.Trial) error

// Explain implements Explainer.
func (f ExplainerFunc) Explain(ctx context.Context, trial *stimulus.Trial) error { return f(ctx, trial) }

// Prompt is what a host shows for one trial.
type Prompt struct {
	Block      int
	BlockTrial int
	TotalTrial int
	// NewBlock is set on the first trial of each block; hosts announce the
	// new rule.
	NewBlock bool
	Task     string
	Input    string
	// Alternatives holds the two choices of a forced-choice trial.
	Alternatives [2]string
	// History lists the block's answered examples, oldest first.
	History []stimulus.Example
}

// Outcome is the scored response.
type Outcome struct {
	Correct  bool
	Expected string
	RT       time.Duration
	// Delay is how long to show feedback before calling Next.
	Delay time.Duration
	// BlockDone is set when the answered trial was the block's last.
	BlockDone bool
}

// Progress counts answered trials.
type Progress struct {
	Block    int
	Blocks   int
	Answered int
	Total    int
	Correct  int
}

// Controller runs one session.
type Controller struct {
	cfg     Config
	blocks  []Block
	sink    telemetry.Sink
	clock   animate.Clock
	explain Explainer
	logger  *log.Logger
	runID   uuid.UUID

	block     int // index of the current block, -1 before the first
	item      int // index of the open or last answered item in the block
	listening bool
	described bool
	started   time.Time
	answered  int
	correct   int
	history   []stimulus.Example
}

// Option configures a [Controller].
type Option func(*Controller)

// WithSink sends records to s.
func WithSink(s telemetry.Sink) Option { return func(c *Controller) { c.sink = s } }

// WithClock replaces the wall clock used for reaction times.
func WithClock(cl animate.Clock) Option { return func(c *Controller) { c.clock = cl } }

// WithExplainer plays an explanation after every forced-choice response.
func WithExplainer(e Explainer) Option { return func(c *Controller) { c.explain = e } }

// WithLogger enables debug logging.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// New returns a controller over blocks, which are played in the given
// order (see [Schedule]).
func New(blocks []Block, cfg Config, opts ...Option) (*Controller, error) {
	if len(blocks) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session has no blocks")
	}
	for i, b := range blocks {
		if len(b.Items) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "block %d (%s) has no trials", i, b.Name)
		}
	}
	c := &Controller{
		cfg:       cfg.WithDefaults(),
		blocks:    blocks,
		sink:      telemetry.Discard,
		clock:     animate.SystemClock{},
		logger:    log.New(io.Discard),
		runID:     uuid.New(),
		block:     -1,
		described: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RunID identifies the session in records.
func (c *Controller) RunID() uuid.UUID { return c.runID }

// Listening reports whether a response would be accepted.
func (c *Controller) Listening() bool { return c.listening }

// NeedsDescription reports whether the finished block awaits its rule
// description.
func (c *Controller) NeedsDescription() bool { return !c.described }

// Done reports whether every block has been answered and described.
func (c *Controller) Done() bool {
	return c.described && !c.listening && c.block == len(c.blocks)-1 &&
		c.item == len(c.blocks[c.block].Items)-1 && c.answered > 0
}

// Progress returns the session counters.
func (c *Controller) Progress() Progress {
	p := Progress{Block: max(c.block, 0), Blocks: len(c.blocks), Answered: c.answered, Correct: c.correct}
	for _, b := range c.blocks {
		p.Total += len(b.Items)
	}
	return p
}

// Current returns the open block.
func (c *Controller) Current() (Block, bool) {
	if c.block < 0 {
		return Block{}, false
	}
	return c.blocks[c.block], true
}

// Next opens the next trial, starts its reaction-time clock and begins
// listening for a response.
func (c *Controller) Next() (Prompt, error) {
	switch {
	case c.listening:
		return Prompt{}, errors.New(errors.ErrCodeBusy, "trial %d is still open", c.answered+1)
	case !c.described:
		return Prompt{}, ErrDescriptionPending
	case c.Done():
		return Prompt{}, ErrDone
	}

	newBlock := c.block < 0 || c.item >= len(c.blocks[c.block].Items)-1
	if newBlock {
		c.block++
		c.item = 0
		c.history = nil
		c.logger.Debug("new block", "block", c.block, "rule", c.blocks[c.block].Name)
	} else {
		c.item++
	}

	it := c.blocks[c.block].Items[c.item]
	p := Prompt{
		Block:      c.block,
		BlockTrial: c.item,
		TotalTrial: c.answered + 1,
		NewBlock:   newBlock,
		History:    slices.Clone(c.history),
	}
	if it.Kind == ItemForcedChoice {
		p.Task = telemetry.TaskForcedChoice
		p.Input = it.Trial.Challenge
		p.Alternatives = it.Trial.Alternatives()
	} else {
		p.Task = telemetry.TaskListPrediction
		p.Input = stimulus.PrettyList(it.Example.I)
	}
	c.started = c.clock.Now()
	c.listening = true
	return p, nil
}

// Respond scores the answer to the open trial and records it. List answers
// that do not parse are rejected without closing the trial. For forced
// choice the response is the index ("0" or "1") of the chosen alternative;
// an explainer, if set, runs before Respond returns.
func (c *Controller) Respond(ctx context.Context, response string) (Outcome, error) {
	if !c.listening {
		return Outcome{}, ErrNotListening
	}
	b := c.blocks[c.block]
	it := b.Items[c.item]
	rec := c.record(b, telemetry.TaskListPrediction)

	var out Outcome
	switch it.Kind {
	case ItemListPrediction:
		xs, ok := stimulus.ParseList(response, c.cfg.MaxListLen, c.cfg.MaxElement)
		if !ok {
			return Outcome{}, errors.New(errors.ErrCodeInvalidInput,
				"enter a list of up to %d numbers between 0 and %d", c.cfg.MaxListLen, c.cfg.MaxElement)
		}
		out.Correct = slices.Equal(xs, it.Example.O)
		out.Expected = stimulus.PrettyList(it.Example.O)
		rec.Input, rec.Output, rec.Response = stimulus.PrettyList(it.Example.I), out.Expected, stimulus.PrettyList(xs)
		c.history = append(c.history, it.Example)
	case ItemForcedChoice:
		choice, err := strconv.Atoi(strings.TrimSpace(response))
		if err != nil || choice < 0 || choice > 1 {
			return Outcome{}, errors.New(errors.ErrCodeInvalidInput, "choice must be 0 or 1, got %q", response)
		}
		alts := it.Trial.Alternatives()
		out.Correct = it.Trial.IsCorrect(choice)
		out.Expected = alts[it.Trial.Target]
		rec.Task = telemetry.TaskForcedChoice
		rec.Input, rec.Output, rec.Response = it.Trial.Challenge, out.Expected, alts[choice]
	}

	out.RT = c.clock.Now().Sub(c.started)
	c.listening = false
	c.answered++
	if out.Correct {
		c.correct++
	} else {
		out.Delay = c.cfg.FeedbackDelay
	}
	out.BlockDone = c.item == len(b.Items)-1
	if out.BlockDone && !c.cfg.SkipDescriptions {
		c.described = false
	}

	rec.BlockTrial, rec.TotalTrial, rec.RT = c.item, c.answered, out.RT
	if out.Correct {
		rec.Accuracy = 1
	}
	if err := c.sink.Record(ctx, rec); err != nil {
		return out, errors.Wrap(errors.ErrCodeInternal, err, "record trial %d", c.answered)
	}
	c.logger.Debug("response", "block", c.block, "trial", c.item, "correct", out.Correct, "rt", out.RT)

	if it.Kind == ItemForcedChoice && c.explain != nil {
		if err := c.explain.Explain(ctx, it.Trial); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Describe records the participant's statement of the finished block's
// rule. Empty text and text that reads as a list are rejected.
func (c *Controller) Describe(ctx context.Context, text string) error {
	if c.described {
		return errors.New(errors.ErrCodeInvalidInput, "no block is waiting for a description")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New(errors.ErrCodeInvalidInput, "please describe the rule")
	}
	if _, ok := stimulus.ParseList(text, c.cfg.MaxListLen, c.cfg.MaxElement); ok {
		return errors.New(errors.ErrCodeInvalidInput, "that looks like a list; describe the rule in words")
	}
	rec := c.record(c.blocks[c.block], telemetry.TaskRuleDescription)
	rec.Response = text
	if err := c.sink.Record(ctx, rec); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "record description for block %d", c.block)
	}
	c.described = true
	return nil
}

func (c *Controller) record(b Block, task string) telemetry.Record {
	return telemetry.Record{
		ID:        uuid.New(),
		RunID:     c.runID,
		Time:      c.clock.Now(),
		Phase:     telemetry.PhaseTest,
		Task:      task,
		Domain:    b.Domain,
		Purpose:   string(b.Purpose),
		Concept:   b.Rule,
		ConceptID: b.Name,
		Condition: c.cfg.Condition,
		Block:     c.block,
	}
}
