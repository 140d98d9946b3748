// Package telemetry records participant responses.
//
// A [Record] is emitted once per answered trial (and once per free-text
// rule description). Sinks are append-only and safe for concurrent use.
package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase and task labels used in records. The task labels match the trial
// tables of the browser experiment so exports can be analysed together.
const (
	PhaseTest = "TEST"

	TaskListPrediction  = "[(i,o)]->i->o"
	TaskRuleDescription = "[(i,o)]->spec"
	TaskForcedChoice    = "challenge->{a,b}"
)

// Record is one row of trial data.
type Record struct {
	ID         uuid.UUID     `json:"id"`
	RunID      uuid.UUID     `json:"run_id"`
	Time       time.Time     `json:"time"`
	Phase      string        `json:"phase"`
	Task       string        `json:"task"`
	Domain     string        `json:"domain,omitempty"`
	Purpose    string        `json:"purpose,omitempty"`
	Concept    string        `json:"concept,omitempty"`
	ConceptID  string        `json:"concept_id,omitempty"`
	Condition  int           `json:"condition"`
	Block      int           `json:"block"`
	BlockTrial int           `json:"block_trial"`
	TotalTrial int           `json:"total_trial"`
	Input      string        `json:"input,omitempty"`
	Output     string        `json:"output,omitempty"`
	Response   string        `json:"response"`
	Accuracy   int           `json:"accuracy"`
	RT         time.Duration `json:"rt"`
}

// Sink receives records.
type Sink interface {
	Record(ctx context.Context, r Record) error
}

// WriterSink writes records as JSON lines.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink returns a sink writing one JSON object per line to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// Record implements [Sink].
func (s *WriterSink) Record(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(r)
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// Record implements [Sink].
func (s *MemorySink) Record(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

// Records returns a copy of everything recorded so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// MultiSink fans records out to every sink and returns the first error.
type MultiSink []Sink

// Record implements [Sink].
func (m MultiSink) Record(ctx context.Context, r Record) error {
	var first error
	for _, s := range m {
		if err := s.Record(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(context.Context, Record) error { return nil }
