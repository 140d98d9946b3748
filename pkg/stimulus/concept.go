package stimulus

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/ruleviz/pkg/errors"
)

// Purpose distinguishes human-authored concepts from model-generated ones.
type Purpose string

const (
	PurposeDataset Purpose = "dataset"
	PurposeModel   Purpose = "model"
)

// modelOffset is the first numeric id that refers to a model concept.
const modelOffset = 150

// Example is one list-routine input/output pair.
type Example struct {
	I []int `json:"i"`
	O []int `json:"o"`
}

// Concept is one block of list-routine trials.
type Concept struct {
	ID       string    `json:"id"`
	Purpose  Purpose   `json:"purpose"`
	Concept  string    `json:"concept"`
	Examples []Example `json:"examples"`
}

// ConceptRef maps a numeric concept id to its file reference and purpose.
// Ids above 150 name model concepts, renumbered from 1.
func ConceptRef(id int) (string, Purpose, error) {
	if err := errors.ValidateConceptID(id); err != nil {
		return "", "", err
	}
	if id > modelOffset {
		return fmt.Sprintf("c%03d", id-modelOffset), PurposeModel, nil
	}
	return fmt.Sprintf("c%03d", id), PurposeDataset, nil
}

// ConceptPath returns the path of concept id relative to a source root.
func ConceptPath(id int) (string, error) {
	ref, purpose, err := ConceptRef(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s_1.json", purpose, ref), nil
}

type datasetDoc struct {
	Concept  string    `json:"concept"`
	Examples []Example `json:"examples"`
}

type modelDoc struct {
	Program string    `json:"program"`
	Data    []Example `json:"data"`
}

// ParseConcept decodes the concept document for id. Dataset documents
// carry {concept, examples}; model documents carry {program, data}.
func ParseConcept(data []byte, id int) (*Concept, error) {
	ref, purpose, err := ConceptRef(id)
	if err != nil {
		return nil, err
	}
	c := &Concept{ID: ref, Purpose: purpose}
	if purpose == PurposeModel {
		var doc modelDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode model concept %s", ref)
		}
		c.Concept, c.Examples = doc.Program, doc.Data
	} else {
		var doc datasetDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dataset concept %s", ref)
		}
		c.Concept, c.Examples = doc.Concept, doc.Examples
	}
	if len(c.Examples) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "concept %s has no examples", ref)
	}
	return c, nil
}
