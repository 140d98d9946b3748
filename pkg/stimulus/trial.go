package stimulus

import (
	"encoding/json"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Pair is one worked input/output example shown with a trial.
type Pair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Trial is one forced-choice stimulus. The alignment relates Challenge
// (input side) to Correct (output side). Target is the display slot (0 or
// 1) of the correct alternative.
type Trial struct {
	Rule      string              `json:"rule"`
	Score     float64             `json:"score"`
	Stimulus  Pair                `json:"stimulus"`
	Challenge string              `json:"challenge"`
	Correct   string              `json:"correct"`
	Incorrect string              `json:"incorrect"`
	Target    int                 `json:"target"`
	Alignment alignment.Alignment `json:"alignment"`
}

// Alternatives returns the two answers in display order.
func (t *Trial) Alternatives() [2]string {
	if t.Target == 1 {
		return [2]string{t.Incorrect, t.Correct}
	}
	return [2]string{t.Correct, t.Incorrect}
}

// IsCorrect reports whether choosing display slot choice is right.
func (t *Trial) IsCorrect(choice int) bool { return choice == t.Target }

// Validate checks the trial is presentable as kind. Tree encodings must
// decode with codec and a present alignment must match the challenge and
// correct encodings.
func (t *Trial) Validate(kind alignment.Kind, codec term.Codec) error {
	if t.Challenge == "" || t.Correct == "" || t.Incorrect == "" {
		return errors.New(errors.ErrCodeInvalidInput, "trial needs challenge, correct and incorrect")
	}
	if t.Target != 0 && t.Target != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "target must be 0 or 1, got %d", t.Target)
	}
	if kind == alignment.KindTree {
		for _, enc := range []string{t.Challenge, t.Correct, t.Incorrect} {
			if _, err := codec.Decode(enc); err != nil {
				return err
			}
		}
	}
	if len(t.Alignment) == 0 {
		return nil
	}
	return alignment.Check(t.Alignment, kind, t.Challenge, t.Correct)
}

// Analyze runs the alignment analyzer on the challenge and correct answer.
func (t *Trial) Analyze(kind alignment.Kind, codec term.Codec) (*alignment.Analysis, error) {
	if len(t.Alignment) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidAlignment, "trial has no alignment")
	}
	return alignment.Analyze(t.Alignment, kind, t.Challenge, t.Correct, codec)
}

// Hash identifies the trial's content for cache keys.
func (t *Trial) Hash() string {
	data, _ := json.Marshal(t)
	return cache.Hash(data)
}
