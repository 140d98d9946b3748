package sink

import (
	"encoding/json"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/diagram"
)

type jsonOutput struct {
	Diagram  *diagram.Diagram    `json:"diagram"`
	Analysis *alignment.Analysis `json:"analysis,omitempty"`
	Script   *animate.Script     `json:"script,omitempty"`
	Duration float64             `json:"duration_ms,omitempty"`
}

// RenderJSON writes the placed diagram with its analysis and script, if
// any, for hosts that draw and animate on their own.
func RenderJSON(d *diagram.Diagram, an *alignment.Analysis, s *animate.Script) ([]byte, error) {
	out := jsonOutput{Diagram: d, Analysis: an, Script: s}
	if s != nil {
		out.Duration = float64(s.Duration().Milliseconds())
	}
	return json.MarshalIndent(out, "", "  ")
}
