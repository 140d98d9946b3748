package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

var (
	reverse = &stimulus.Concept{
		ID: "c001", Purpose: stimulus.PurposeDataset, Concept: "reverse the list",
		Examples: []stimulus.Example{
			{I: []int{1, 2, 3}, O: []int{3, 2, 1}},
			{I: []int{4, 5}, O: []int{5, 4}},
		},
	}
	head = &stimulus.Concept{
		ID: "c005", Purpose: stimulus.PurposeModel, Concept: "(lambda (take 1 $0))",
		Examples: []stimulus.Example{{I: []int{7, 8}, O: []int{7}}},
	}
)

func newSession(t *testing.T, cfg Config, blocks ...Block) (*Controller, *telemetry.MemorySink, *animate.Recorder) {
	t.Helper()
	sink := &telemetry.MemorySink{}
	clock := animate.NewRecorder()
	c, err := New(blocks, cfg, WithSink(sink), WithClock(clock))
	require.NoError(t, err)
	return c, sink, clock
}

func TestListSession(t *testing.T) {
	ctx := context.Background()
	c, sink, clock := newSession(t, Config{Condition: 2}, ConceptBlock(reverse), ConceptBlock(head))

	_, err := c.Respond(ctx, "[1]")
	assert.ErrorIs(t, err, ErrNotListening)

	p, err := c.Next()
	require.NoError(t, err)
	assert.True(t, p.NewBlock)
	assert.Equal(t, "[1,2,3]", p.Input)
	assert.Equal(t, telemetry.TaskListPrediction, p.Task)
	assert.True(t, c.Listening())

	_, err = c.Next()
	assert.True(t, errors.Is(err, errors.ErrCodeBusy), "trial still open")

	_, err = c.Respond(ctx, "three two one")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.True(t, c.Listening(), "unparsable answers keep the trial open")

	<-clock.After(1200 * time.Millisecond)
	out, err := c.Respond(ctx, "3, 2, 1")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 1200*time.Millisecond, out.RT)
	assert.Zero(t, out.Delay)
	assert.False(t, out.BlockDone)
	assert.False(t, c.Listening())

	p, err = c.Next()
	require.NoError(t, err)
	assert.False(t, p.NewBlock)
	assert.Equal(t, 1, p.BlockTrial)
	assert.Equal(t, []stimulus.Example{reverse.Examples[0]}, p.History)

	out, err = c.Respond(ctx, "4 5")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "[5,4]", out.Expected)
	assert.Equal(t, DefaultFeedbackDelay, out.Delay)
	assert.True(t, out.BlockDone)
	assert.True(t, c.NeedsDescription())

	_, err = c.Next()
	assert.ErrorIs(t, err, ErrDescriptionPending)
	assert.Error(t, c.Describe(ctx, "  "))
	assert.Error(t, c.Describe(ctx, "[5, 4]"), "a list is not a description")
	require.NoError(t, c.Describe(ctx, "flip it around"))

	p, err = c.Next()
	require.NoError(t, err)
	assert.True(t, p.NewBlock)
	assert.Equal(t, 1, p.Block)
	assert.Empty(t, p.History)
	_, err = c.Respond(ctx, "7")
	require.NoError(t, err)
	assert.False(t, c.Done())
	require.NoError(t, c.Describe(ctx, "keep the first one"))
	assert.True(t, c.Done())
	_, err = c.Next()
	assert.ErrorIs(t, err, ErrDone)

	assert.Equal(t, Progress{Block: 1, Blocks: 2, Answered: 3, Total: 3, Correct: 2}, c.Progress())

	recs := sink.Records()
	require.Len(t, recs, 5)
	first := recs[0]
	assert.Equal(t, telemetry.PhaseTest, first.Phase)
	assert.Equal(t, "c001", first.ConceptID)
	assert.Equal(t, "dataset", first.Purpose)
	assert.Equal(t, 2, first.Condition)
	assert.Equal(t, "[3,2,1]", first.Response)
	assert.Equal(t, 1, first.Accuracy)
	assert.Equal(t, 1, first.TotalTrial)
	assert.Equal(t, c.RunID(), first.RunID)

	desc := recs[2]
	assert.Equal(t, telemetry.TaskRuleDescription, desc.Task)
	assert.Equal(t, "flip it around", desc.Response)
	assert.Equal(t, 0, desc.Block)
	assert.Equal(t, "model", recs[3].Purpose)
}

func TestSkipDescriptions(t *testing.T) {
	ctx := context.Background()
	c, sink, _ := newSession(t, Config{SkipDescriptions: true}, ConceptBlock(head), ConceptBlock(head))
	for range 2 {
		_, err := c.Next()
		require.NoError(t, err)
		_, err = c.Respond(ctx, "[7]")
		require.NoError(t, err)
	}
	assert.True(t, c.Done())
	assert.Len(t, sink.Records(), 2)
}

func TestForcedChoice(t *testing.T) {
	ctx := context.Background()
	feed := stimulus.Feed{"trees": {
		{Rule: "swap", Challenge: "A2B0C0", Correct: "A2C0B0", Incorrect: "A2B0C0", Target: 1},
		{Rule: "swap", Challenge: "A2D0E0", Correct: "A2E0D0", Incorrect: "A2D0D0"},
	}}
	var explained []string
	sink := &telemetry.MemorySink{}
	c, err := New(FeedBlocks(feed, "trees", 10), Config{}, WithSink(sink),
		WithExplainer(ExplainerFunc(func(_ context.Context, tr *stimulus.Trial) error {
			explained = append(explained, tr.Challenge)
			return nil
		})))
	require.NoError(t, err)

	p, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, telemetry.TaskForcedChoice, p.Task)
	assert.Equal(t, [2]string{"A2B0C0", "A2C0B0"}, p.Alternatives)

	_, err = c.Respond(ctx, "left")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	out, err := c.Respond(ctx, "1")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, []string{"A2B0C0"}, explained)

	_, err = c.Next()
	require.NoError(t, err)
	out, err = c.Respond(ctx, "1")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "A2E0D0", out.Expected)

	recs := sink.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "trees", recs[1].Domain)
	assert.Equal(t, "swap", recs[1].Concept)
	assert.Equal(t, "A2D0D0", recs[1].Response)
	assert.Equal(t, 0, recs[1].Accuracy)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil, Config{})
	assert.Error(t, err)
	_, err = New([]Block{{Name: "c002"}}, Config{})
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	var blocks []Block
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		blocks = append(blocks, Block{Name: name})
	}
	names := func(bs []Block) []string {
		var out []string
		for _, b := range bs {
			out = append(out, b.Name)
		}
		return out
	}

	x, y := Schedule(blocks, 3, 42), Schedule(blocks, 3, 42)
	assert.Equal(t, names(x), names(y), "same seed, same order")
	assert.Len(t, x, 3)
	assert.ElementsMatch(t, names(blocks), names(Schedule(blocks, 0, 7)))
	assert.Equal(t, "a", blocks[0].Name, "input untouched")
}

func TestFeedBlocks(t *testing.T) {
	feed := stimulus.Feed{"lists": {
		{Rule: "r1"}, {Rule: "r2"}, {Rule: "r1"}, {Rule: "r1"},
	}}
	blocks := FeedBlocks(feed, "lists", 2)
	require.Len(t, blocks, 3)
	assert.Equal(t, "r1", blocks[0].Rule)
	assert.Len(t, blocks[0].Items, 2)
	assert.Equal(t, "r2", blocks[1].Rule)
	assert.Len(t, blocks[2].Items, 1)
	assert.Same(t, &feed["lists"][3], blocks[2].Items[0].Trial)

	unlimited := FeedBlocks(feed, "lists", 0)
	require.Len(t, unlimited, 2)
	assert.Len(t, unlimited[0].Items, 3)
	assert.Len(t, unlimited[1].Items, 1)
}
