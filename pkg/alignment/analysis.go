package alignment

import (
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Analysis bundles everything the animator needs to know about one
// input/output pair.
type Analysis struct {
	Kind      Kind      `json:"kind"`
	Alignment Alignment `json:"alignment"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Flattened string    `json:"flattened"`

	// InputTree and OutputTree are set for tree stimuli only.
	InputTree  *term.Term `json:"-"`
	OutputTree *term.Term `json:"-"`

	// InputMembers and OutputMembers are indexed by pre-order node (trees)
	// or position (strings).
	InputMembers  []Member  `json:"input_members"`
	OutputMembers []Member  `json:"output_members"`
	InputLinks    []Spanner `json:"input_links"`
	OutputLinks   []Spanner `json:"output_links"`
	Provenance    []Element `json:"provenance"`
}

// Analyze checks a against the concrete encodings and derives membership,
// edge links and provenance for both sides. Tree encodings are decoded
// with codec.
func Analyze(a Alignment, kind Kind, input, output string, codec term.Codec) (*Analysis, error) {
	if err := Check(a, kind, input, output); err != nil {
		return nil, err
	}
	flat, err := FlattenedOutput(a, kind)
	if err != nil {
		return nil, err
	}
	prov, err := Provenance(a, kind)
	if err != nil {
		return nil, err
	}
	an := &Analysis{
		Kind:       kind,
		Alignment:  a,
		Input:      input,
		Output:     output,
		Flattened:  flat,
		Provenance: prov,
	}
	if kind == KindString {
		err = an.analyzeStrings()
	} else {
		err = an.analyzeTrees(codec)
	}
	if err != nil {
		return nil, err
	}
	return an, nil
}

func (an *Analysis) analyzeStrings() error {
	var err error
	if an.InputMembers, err = StringMembership(an.Alignment, SideInput, an.Input); err != nil {
		return err
	}
	if an.OutputMembers, err = StringMembership(an.Alignment, SideOutput, an.Output); err != nil {
		return err
	}
	if an.InputLinks, err = SequenceSpanners(an.Alignment, SideInput, an.Input); err != nil {
		return err
	}
	an.OutputLinks, err = SequenceSpanners(an.Alignment, SideOutput, an.Output)
	return err
}

func (an *Analysis) analyzeTrees(codec term.Codec) error {
	var err error
	if an.InputTree, err = codec.Decode(an.Input); err != nil {
		return err
	}
	if an.OutputTree, err = codec.Decode(an.Output); err != nil {
		return err
	}
	if an.InputMembers, err = TreeMembership(an.Alignment, SideInput, an.InputTree); err != nil {
		return err
	}
	if an.OutputMembers, err = TreeMembership(an.Alignment, SideOutput, an.OutputTree); err != nil {
		return err
	}
	if an.InputLinks, err = Spanners(an.Alignment, SideInput, an.InputTree); err != nil {
		return err
	}
	an.OutputLinks, err = Spanners(an.Alignment, SideOutput, an.OutputTree)
	return err
}

// Source returns the provenance element whose destination is dest.
func (an *Analysis) Source(dest int) (Element, bool) {
	for _, e := range an.Provenance {
		if e.Dest == dest {
			return e, true
		}
	}
	return Element{}, false
}

// Steps returns the number of staggered reveal steps.
func (an *Analysis) Steps() int {
	return len(ByOrder(an.Provenance))
}
