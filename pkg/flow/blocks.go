package flow

import (
	"math/rand/v2"

	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// ItemKind is the task an item asks for.
type ItemKind int

const (
	// ItemListPrediction shows an input list and asks for the output list.
	ItemListPrediction ItemKind = iota
	// ItemForcedChoice shows a challenge and asks which of two
	// alternatives the rule produces.
	ItemForcedChoice
)

// Item is one trial of a block.
type Item struct {
	Kind    ItemKind
	Example stimulus.Example
	Trial   *stimulus.Trial
}

// Block is one rule: the trials a participant sees before describing it.
type Block struct {
	// Name identifies the rule in records (concept ref or domain).
	Name    string
	Purpose stimulus.Purpose
	Domain  string
	// Rule is the hidden rule text, recorded but never shown.
	Rule  string
	Items []Item
}

// ConceptBlock turns a list-routine concept into a block of prediction
// items in document order.
func ConceptBlock(c *stimulus.Concept) Block {
	b := Block{Name: c.ID, Purpose: c.Purpose, Rule: c.Concept}
	for _, ex := range c.Examples {
		b.Items = append(b.Items, Item{Kind: ItemListPrediction, Example: ex})
	}
	return b
}

// FeedBlocks groups the forced-choice trials of one domain into blocks of
// up to perBlock trials, grouped by rule. perBlock <= 0 puts all trials of
// a rule into one block.
func FeedBlocks(feed stimulus.Feed, domain string, perBlock int) []Block {
	var blocks []Block
	byRule := make(map[string]int)
	for i := range feed[domain] {
		t := &feed[domain][i]
		bi, ok := byRule[t.Rule]
		if !ok || (perBlock > 0 && len(blocks[bi].Items) >= perBlock) {
			bi = len(blocks)
			byRule[t.Rule] = bi
			blocks = append(blocks, Block{Name: domain, Domain: domain, Rule: t.Rule})
		}
		blocks[bi].Items = append(blocks[bi].Items, Item{Kind: ItemForcedChoice, Trial: t})
	}
	return blocks
}

// Schedule shuffles blocks with seed and keeps the first n. n <= 0 keeps
// all of them.
func Schedule(blocks []Block, n int, seed uint64) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
