package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ruleviz/pkg/flow"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

func TestPlaySession(t *testing.T) {
	feed := testFeed()
	sink := &telemetry.MemorySink{}
	ctrl, err := flow.New(flow.FeedBlocks(feed, "trees", 11), flow.Config{}, flow.WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	// An out-of-range choice, the right choice, a list where words are
	// expected and finally the description.
	in := strings.NewReader("2\n1\n1 2\nswap the leaves\n")
	var out bytes.Buffer
	if err := playSession(t.Context(), ctrl, in, &out, false); err != nil {
		t.Fatalf("playSession: %v\n%s", err, out.String())
	}
	if !ctrl.Done() {
		t.Fatal("session should be done")
	}

	text := out.String()
	for _, want := range []string{"Rule 1 of 1", "A2B0C0", "0) A2B2D0E0C0", "1) A2C0B0", "choice must be 0 or 1", "describe the rule in words"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	recs := sink.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Task != telemetry.TaskForcedChoice || recs[0].Accuracy != 1 || recs[0].Response != "A2C0B0" {
		t.Errorf("unexpected trial record %+v", recs[0])
	}
	if recs[1].Task != telemetry.TaskRuleDescription || recs[1].Response != "swap the leaves" {
		t.Errorf("unexpected description record %+v", recs[1])
	}
}

func TestPlaySessionListPrediction(t *testing.T) {
	block := flow.ConceptBlock(&stimulus.Concept{
		ID:      "c001",
		Concept: "reverse",
		Examples: []stimulus.Example{
			{I: []int{1, 2, 3}, O: []int{3, 2, 1}},
			{I: []int{4, 5}, O: []int{5, 4}},
		},
	})
	ctrl, err := flow.New([]flow.Block{block}, flow.Config{SkipDescriptions: true})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	in := strings.NewReader("three two one\n3 2 1\n[4, 5]\n")
	if err := playSession(t.Context(), ctrl, in, &out, false); err != nil {
		t.Fatalf("playSession: %v", err)
	}
	p := ctrl.Progress()
	if p.Answered != 2 || p.Correct != 1 {
		t.Errorf("progress = %+v, want 2 answered 1 correct", p)
	}
	if !strings.Contains(out.String(), "expected [5,4]") {
		t.Errorf("missing feedback for the wrong answer:\n%s", out.String())
	}
	// The second prompt shows the first example as history.
	if !strings.Contains(out.String(), stimulus.PrettyList([]int{3, 2, 1})) {
		t.Errorf("missing history:\n%s", out.String())
	}
}

func TestPlaySessionEOF(t *testing.T) {
	ctrl, err := flow.New(flow.FeedBlocks(testFeed(), "trees", 11), flow.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := playSession(t.Context(), ctrl, strings.NewReader(""), &bytes.Buffer{}, false); err == nil {
		t.Fatal("expected error when input ends mid-session")
	}
}

func TestSessionCommand(t *testing.T) {
	dir := filepath.Dir(writeFeed(t))
	outDir := t.TempDir()
	csvPath := filepath.Join(outDir, "run.csv")
	jsonl := filepath.Join(outDir, "run.jsonl")

	_, err := execute(t, "0\nswap\n", "session", "-s", dir, "-d", "trees",
		"--no-delay", "--csv", csvPath, "--records", jsonl)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header and 2 records", len(rows))
	}
	if rows[1][16] != "0" {
		t.Errorf("choice 0 should be scored incorrect, accuracy = %s", rows[1][16])
	}

	lines, err := os.ReadFile(jsonl)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(lines), "\n"); n != 2 {
		t.Errorf("records file has %d lines, want 2", n)
	}
}

func TestSessionCommandNeedsBlocks(t *testing.T) {
	dir := filepath.Dir(writeFeed(t))
	if _, err := execute(t, "", "session", "-s", dir); err == nil {
		t.Fatal("expected error without --domain or --concept")
	}
	if _, err := execute(t, "", "session", "-s", dir, "-d", "missing"); err == nil {
		t.Fatal("expected error for an unknown domain")
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"swap":             "swap",
		"Swap the leaves!": "swap-the-leaves",
		"  f(x) = x + 1 ":  "f-x-x-1",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
