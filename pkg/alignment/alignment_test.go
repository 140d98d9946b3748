package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

func iv(s, e int) Interval { return Interval{Start: s, End: e} }

// swap exchanges the two children of a binary tree; the root is context.
var swap = Alignment{
	{String: "A2", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(0, 2)}, Context: 1},
	{String: "C0", Input: []Interval{iv(4, 6)}, Output: []Interval{iv(2, 4)}, Context: 2},
	{String: "B0", Input: []Interval{iv(2, 4)}, Output: []Interval{iv(4, 6)}, Context: 3},
}

// rotate moves the last character of "abc" to the front.
var rotate = Alignment{
	{String: "ab", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(1, 3)}, Context: 2},
	{String: "c", Input: []Interval{iv(2, 3)}, Output: []Interval{iv(0, 1)}, Context: 2},
}

func TestParse(t *testing.T) {
	a, err := Parse([]byte(`[{"string":"B0","input":[[0,2]],"output":[[2,4]],"context":2}]`))
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.Equal(t, "B0", a[0].String)
	assert.Equal(t, []Interval{iv(0, 2)}, a[0].Input)
	assert.Equal(t, []Interval{iv(2, 4)}, a[0].Output)
	assert.False(t, a[0].IsContext())

	_, err = Parse([]byte(`[{"string":"B0","input":[[0,2,4]],"output":[],"context":2}]`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment))

	_, err = Parse([]byte(`{`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"tree": KindTree, "Trees": KindTree, "string": KindString, "lists": KindString} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("graph")
	assert.Error(t, err)
	assert.Equal(t, 2, KindTree.Unit())
	assert.Equal(t, 1, KindString.Unit())
}

func TestOrders(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1}, swap.Orders())
	assert.Equal(t, 2, swap.ChangedGroups())
}

func TestValidate(t *testing.T) {
	total, err := Validate(swap, KindTree)
	require.NoError(t, err)
	assert.Equal(t, 6, total)

	total, err = Validate(rotate, KindString)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		a    Alignment
		kind Kind
	}{
		{"empty", Alignment{}, KindTree},
		{"gap at start", Alignment{{String: "B0", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(2, 4)}, Context: 2}}, KindTree},
		{"gap in middle", Alignment{
			{String: "B0", Output: []Interval{iv(0, 2)}, Context: 2},
			{String: "C0", Output: []Interval{iv(4, 6)}, Context: 2},
		}, KindTree},
		{"overlap", Alignment{
			{String: "ab", Output: []Interval{iv(0, 2)}, Context: 2},
			{String: "bc", Output: []Interval{iv(1, 3)}, Context: 2},
		}, KindString},
		{"misaligned", Alignment{{String: "B0", Output: []Interval{iv(1, 3)}, Context: 2}}, KindTree},
		{"odd string", Alignment{{String: "B", Output: []Interval{iv(0, 1)}, Context: 2}}, KindTree},
		{"length mismatch", Alignment{{String: "abc", Output: []Interval{iv(0, 2)}, Context: 2}}, KindString},
		{"negative", Alignment{{String: "a", Input: []Interval{iv(-1, 0)}, Output: []Interval{iv(0, 1)}, Context: 2}}, KindString},
		{"empty interval", Alignment{{String: "", Output: []Interval{iv(0, 0)}, Context: 2}}, KindString},
		{"negative context tag", Alignment{{String: "a", Output: []Interval{iv(0, 1)}, Context: -3}}, KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.a, tt.kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment), "got %v", err)
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(swap, KindTree, "A2B0C0", "A2C0B0"))
	assert.NoError(t, Check(rotate, KindString, "abc", "cab"))

	assert.Error(t, Check(swap, KindTree, "A2B0C0", "A2C0B0D0"), "output too long")
	assert.Error(t, Check(swap, KindTree, "A2B0C0", "A2B0C0"), "wrong output substring")
	assert.Error(t, Check(swap, KindTree, "A2B0", "A2C0B0"), "input too short")
	assert.Error(t, Check(rotate, KindString, "xbc", "cab"), "wrong input substring")
}

func TestFlattenedOutput(t *testing.T) {
	got, err := FlattenedOutput(swap, KindTree)
	require.NoError(t, err)
	assert.Equal(t, "A2C0B0", got)

	got, err = FlattenedOutput(rotate, KindString)
	require.NoError(t, err)
	assert.Equal(t, "cab", got)
	assert.Len(t, got, 3)
}

func TestTreeMembership(t *testing.T) {
	out, err := term.Codec{}.Decode("A2C0B0")
	require.NoError(t, err)
	members, err := TreeMembership(swap, SideOutput, out)
	require.NoError(t, err)
	assert.Equal(t, []Member{
		{Unit: 0, Group: 0, Context: true, Order: 0},
		{Unit: 1, Group: 1, Order: 0},
		{Unit: 2, Group: 2, Order: 1},
	}, members)

	in, err := term.Codec{}.Decode("A2B0C0")
	require.NoError(t, err)
	members, err = TreeMembership(swap, SideInput, in)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, []int{members[0].Group, members[1].Group, members[2].Group})
}

func TestTreeMembershipCrossref(t *testing.T) {
	// .2F0B0 folds to F(B); the folded root shows F, so it belongs to F's
	// group and not to the combinator's.
	a := Alignment{
		{String: ".2", Input: []Interval{iv(0, 2)}, Context: 2},
		{String: "F0", Input: []Interval{iv(2, 4)}, Output: []Interval{iv(2, 4)}, Context: 3},
	}
	in, err := term.Decode(".2F0B0")
	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(2, 4), iv(4, 6)}, TreeSpans(in))

	members, err := TreeMembership(a, SideInput, in)
	require.NoError(t, err)
	assert.Equal(t, 1, members[0].Group)
	assert.False(t, members[1].Aligned())
}

func TestMembershipInputLenient(t *testing.T) {
	// "x" is deleted: no group covers input position 1.
	a := Alignment{
		{String: "a", Input: []Interval{iv(0, 1)}, Output: []Interval{iv(0, 1)}, Context: 2},
		{String: "b", Input: []Interval{iv(2, 3)}, Output: []Interval{iv(1, 2)}, Context: 2},
	}
	members, err := StringMembership(a, SideInput, "axb")
	require.NoError(t, err)
	assert.False(t, members[1].Aligned())
	assert.Equal(t, -1, members[1].Order)
	assert.Equal(t, 1, members[2].Order)
}

func TestMembershipOutputStrict(t *testing.T) {
	_, err := StringMembership(rotate, SideOutput, "cabd")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment), "uncovered unit")

	overlap := Alignment{
		{String: "ab", Output: []Interval{iv(0, 2)}, Context: 2},
		{String: "bc", Output: []Interval{iv(1, 3)}, Context: 2},
	}
	_, err = StringMembership(overlap, SideOutput, "abc")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment), "doubly covered unit")
}

func TestSpanners(t *testing.T) {
	in, err := term.Codec{}.Decode("A2B1D0C0")
	require.NoError(t, err)
	// B and its child D move together; A and C are context.
	a := Alignment{
		{String: "A2", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(0, 2)}, Context: 1},
		{String: "B1D0", Input: []Interval{iv(2, 6)}, Output: []Interval{iv(4, 8)}, Context: 2},
		{String: "C0", Input: []Interval{iv(6, 8)}, Output: []Interval{iv(2, 4)}, Context: 1},
	}
	links, err := Spanners(a, SideInput, in)
	require.NoError(t, err)
	assert.Equal(t, []Spanner{
		{Parent: 0, Child: 1, Linked: false},
		{Parent: 0, Child: 3, Linked: true},
		{Parent: 1, Child: 2, Linked: true},
	}, links)
}

func TestSequenceSpanners(t *testing.T) {
	links, err := SequenceSpanners(rotate, SideOutput, "cab")
	require.NoError(t, err)
	assert.Equal(t, []Spanner{
		{Parent: 0, Child: 1, Linked: false},
		{Parent: 1, Child: 2, Linked: true},
	}, links)
}

func TestProvenanceInsertion(t *testing.T) {
	a := Alignment{{String: "A0", Output: []Interval{iv(0, 2)}, Context: 2}}
	elems, err := Provenance(a, KindTree)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, StatusNew, elems[0].Status)
	assert.Equal(t, 0, elems[0].Dest)
	assert.Equal(t, -1, elems[0].Source)
}

func TestProvenanceCopy(t *testing.T) {
	a := Alignment{{String: "B0", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(2, 4)}, Context: 2}}
	elems, err := Provenance(a, KindTree)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, StatusOld, elems[0].Status)
	assert.Equal(t, 0, elems[0].Source)
	assert.Equal(t, 2, elems[0].Dest)
}

func TestProvenanceMultiUnit(t *testing.T) {
	elems, err := Provenance(rotate, KindString)
	require.NoError(t, err)
	assert.Equal(t, []Element{
		{Dest: 0, Source: 2, Status: StatusOld, Group: 1, Order: 1},
		{Dest: 1, Source: 0, Status: StatusOld, Group: 0, Order: 0},
		{Dest: 2, Source: 1, Status: StatusOld, Group: 0, Order: 0},
	}, elems)

	steps := ByOrder(elems)
	require.Len(t, steps, 2)
	assert.Len(t, steps[0], 2)
	assert.Len(t, steps[1], 1)
}

func TestProvenanceRejectsOverlap(t *testing.T) {
	a := Alignment{
		{String: "B0", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(2, 4)}, Context: 2},
		{String: "B0", Input: []Interval{iv(0, 2)}, Output: []Interval{iv(2, 4)}, Context: 2},
	}
	_, err := Provenance(a, KindTree)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment))
}

func TestAnalyzeTree(t *testing.T) {
	an, err := Analyze(swap, KindTree, "A2B0C0", "A2C0B0", term.DefaultCodec)
	require.NoError(t, err)
	assert.Equal(t, "A2C0B0", an.Flattened)
	assert.Equal(t, "A(B,C)", an.InputTree.String())
	assert.Equal(t, "A(C,B)", an.OutputTree.String())
	assert.Len(t, an.InputMembers, 3)
	assert.Len(t, an.OutputMembers, 3)
	assert.Len(t, an.InputLinks, 2)
	for _, l := range an.InputLinks {
		assert.False(t, l.Linked)
	}
	assert.Equal(t, 2, an.Steps())

	e, ok := an.Source(4)
	require.True(t, ok)
	assert.Equal(t, 2, e.Source)
	_, ok = an.Source(5)
	assert.False(t, ok)
}

func TestAnalyzeString(t *testing.T) {
	an, err := Analyze(rotate, KindString, "abc", "cab", term.Codec{})
	require.NoError(t, err)
	assert.Nil(t, an.InputTree)
	assert.Len(t, an.InputLinks, 2)
	assert.True(t, an.InputLinks[0].Linked)
	assert.False(t, an.InputLinks[1].Linked)
}

func TestAnalyzeRejects(t *testing.T) {
	_, err := Analyze(swap, KindTree, "A2B0C0", "A2C0B0", term.Codec{})
	require.NoError(t, err)

	_, err = Analyze(swap, KindTree, "A2B0C0", "A2C0", term.Codec{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlignment))
}
