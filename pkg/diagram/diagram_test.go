package diagram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/layout"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

var treeTrial = &stimulus.Trial{
	Challenge: "A2B0C0",
	Correct:   "A2C0B0",
	Incorrect: "A2B2D0E0C0",
	Target:    1,
}

var stringTrial = &stimulus.Trial{
	Challenge: "abc",
	Correct:   "cab",
	Incorrect: "bcaa",
}

func TestBuildStringRows(t *testing.T) {
	d, err := Build(stringTrial, alignment.KindString, Config{})
	require.NoError(t, err)
	require.Len(t, d.Rows, 3)
	assert.Equal(t, RoleChallenge, d.Rows[0].Role)
	assert.Equal(t, RoleCorrect, d.Rows[1].Role)
	assert.Equal(t, RoleIncorrect, d.Rows[2].Role)
	assert.Equal(t, "cab", d.Output.Encoding)

	inc := d.Row(RoleIncorrect)
	require.Len(t, inc.Elements, 4)
	assert.Len(t, inc.Edges, 3)
	assert.Equal(t, "b", inc.Elements[0].Label)

	// the widest row sets the canvas; narrower rows are centered
	want := layout.SequenceWidth(4, DefaultCellSize, DefaultCellGap) + 2*DefaultPadding
	assert.InDelta(t, want, d.Width, 1e-9)
	ch := d.Row(RoleChallenge)
	assert.InDelta(t, d.Width/2, ch.Frame.X+ch.Frame.W/2, 1e-9)
	assert.Less(t, ch.Elements[0].Y, inc.Elements[0].Y)
}

func TestBuildTargetOrder(t *testing.T) {
	d, err := Build(treeTrial, alignment.KindTree, Config{})
	require.NoError(t, err)
	assert.Equal(t, RoleIncorrect, d.Rows[1].Role)
	assert.Equal(t, RoleCorrect, d.Rows[2].Role)
	assert.Equal(t, "A2B2D0E0C0", d.Rows[1].Encoding)
}

func TestBuildTreeRows(t *testing.T) {
	d, err := Build(treeTrial, alignment.KindTree, Config{})
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)

	out := d.Output
	require.Len(t, out.Elements, 3)
	assert.Equal(t, []Edge{{From: 0, To: 1}, {From: 0, To: 2}}, out.Edges)
	assert.Equal(t, "A", out.Elements[0].Label)
	assert.Equal(t, 4, out.Elements[2].Offset)
	i, ok := out.ElementAt(2)
	require.True(t, ok)
	assert.Equal(t, "C", out.Elements[i].Label)
	_, ok = out.ElementAt(3)
	assert.False(t, ok)

	root := out.Elements[0]
	assert.Less(t, root.Y, out.Elements[1].Y, "tree hangs downward")
	assert.InDelta(t, (out.Elements[1].X+out.Elements[2].X)/2, root.X, 1e-2)
	for _, e := range out.Elements {
		assert.GreaterOrEqual(t, e.Y, out.Frame.Y)
		assert.LessOrEqual(t, e.Y, out.Frame.Y+out.Frame.H)
	}
}

func TestBuildCrossrefElement(t *testing.T) {
	trial := &stimulus.Trial{Challenge: ".2F0B0", Correct: "G1F0", Incorrect: "F1B0"}
	d, err := Build(trial, alignment.KindTree, Config{})
	require.NoError(t, err)

	ch := d.Row(RoleChallenge)
	require.Len(t, ch.Elements, 2)
	root := ch.Elements[0]
	assert.Equal(t, "F", root.Label)
	assert.Equal(t, 2, root.Offset)
	assert.Equal(t, []int{0}, root.Folded)
	for _, off := range []int{0, 2} {
		i, ok := ch.ElementAt(off)
		require.True(t, ok, "offset %d", off)
		assert.Equal(t, 0, i)
	}
	i, ok := ch.ElementAt(4)
	require.True(t, ok)
	assert.Equal(t, "B", ch.Elements[i].Label)
}

func TestBuildExpansion(t *testing.T) {
	d, err := Build(treeTrial, alignment.KindTree, Config{})
	require.NoError(t, err)
	assert.Greater(t, d.Output.Frame.Y, d.Height, "output row is hidden below the static canvas")
	assert.LessOrEqual(t, d.Output.Frame.Y+d.Output.Frame.H, d.ExpandedHeight())
	f := d.Frame()
	assert.InDelta(t, d.Height-DefaultPadding, f.H, 1e-9)
}

func TestBuildApproximateLayout(t *testing.T) {
	cfg := Config{Layout: layout.Config{MaxIterations: 1}}
	d, err := Build(treeTrial, alignment.KindTree, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Warnings)
}

func TestBuildRejects(t *testing.T) {
	_, err := Build(&stimulus.Trial{Challenge: "A2B0", Correct: "B0", Incorrect: "C0"}, alignment.KindTree, Config{})
	assert.Error(t, err)
	_, err = Build(&stimulus.Trial{Challenge: "ab", Correct: "", Incorrect: "c"}, alignment.KindString, Config{})
	assert.Error(t, err)
}

func TestDiagramJSON(t *testing.T) {
	d, err := Build(treeTrial, alignment.KindTree, Config{})
	require.NoError(t, err)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"incorrect"`)

	var back Diagram
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, alignment.KindTree, back.Kind)
	assert.Equal(t, RoleIncorrect, back.Rows[1].Role)
	assert.Equal(t, d.Frame(), back.Frame())
	assert.Equal(t, d.Output.Elements, back.Output.Elements)

	var r Role
	assert.Error(t, r.UnmarshalText([]byte("bogus")))
}
