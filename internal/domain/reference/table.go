// Package reference holds the table of measured drug/target affinities that
// answers a prediction before any estimator is consulted.
package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Record is one measured (drug, target, affinity) triple.
type Record struct {
	Drug     string  `json:"drug"`
	Target   string  `json:"target"`
	Affinity float64 `json:"affinity"`
}

// Source produces raw records, possibly with duplicates.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Rule decides which value survives when a (drug, target) pair repeats.
//
// Affinities are assumed to be on a negative-log scale (pKd, pIC50), where a
// larger value is a stronger binder. Tables holding raw Kd or IC50 in nM
// invert that ordering and should be harmonized with RuleMin.
type Rule string

const (
	// RuleMax keeps the largest value, i.e. the strongest binder on a pKd or
	// pIC50 scale. It is the BindingDB harmonization default.
	RuleMax Rule = "max"
	// RuleMin keeps the smallest value, i.e. the strongest binder when the
	// table holds raw Kd or IC50 concentrations.
	RuleMin Rule = "min"
	// RuleFirst keeps the first value in input order.
	RuleFirst Rule = "first"
)

// ParseRule maps a config string to a Rule.
func ParseRule(s string) (Rule, error) {
	switch r := Rule(strings.ToLower(strings.TrimSpace(s))); r {
	case RuleMax, RuleMin, RuleFirst:
		return r, nil
	case "":
		return RuleMax, nil
	default:
		return "", errors.New(errors.ErrCodeValidation, "unknown harmonization rule").
			WithDetail(fmt.Sprintf("got %q; expected max|min|first", s))
	}
}

// Harmonize collapses records sharing an exact (drug, target) pair into one,
// using rule. The output keeps the order of first appearance.
func Harmonize(records []Record, rule Rule) []Record {
	type key struct{ drug, target string }
	pos := make(map[key]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := key{r.Drug, r.Target}
		i, ok := pos[k]
		if !ok {
			pos[k] = len(out)
			out = append(out, r)
			continue
		}
		switch rule {
		case RuleMin:
			if r.Affinity < out[i].Affinity {
				out[i].Affinity = r.Affinity
			}
		case RuleFirst:
		default:
			if r.Affinity > out[i].Affinity {
				out[i].Affinity = r.Affinity
			}
		}
	}
	return out
}

// Table is an immutable, indexed set of harmonized records. It is safe for
// concurrent reads.
type Table struct {
	records []Record
	index   map[string]int
}

// NewTable indexes records. The drug key is matched case-insensitively and the
// target exactly; when several records match, the first in table order wins.
func NewTable(records []Record) *Table {
	t := &Table{
		records: append([]Record(nil), records...),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range t.records {
		k := lookupKey(r.Drug, r.Target)
		if _, dup := t.index[k]; !dup {
			t.index[k] = i
		}
	}
	return t
}

// Empty returns a table with no records.
func Empty() *Table { return NewTable(nil) }

func lookupKey(drug, target string) string {
	return strings.ToLower(drug) + "\x00" + target
}

// Lookup returns the stored affinity for (drug, target). A miss is not an error.
func (t *Table) Lookup(drug, target string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[lookupKey(drug, target)]
	if !ok {
		return 0, false
	}
	return t.records[i].Affinity, true
}

// Len returns the number of stored records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the stored records in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	return append([]Record(nil), t.records...)
}

// Build loads records from src, harmonizes them and returns the table.
func Build(ctx context.Context, src Source, rule Rule) (*Table, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewTable(Harmonize(raw, rule)), nil
}

// StaticSource serves a fixed slice of records.
type StaticSource []Record

// Load implements Source.
func (s StaticSource) Load(context.Context) ([]Record, error) {
	return append([]Record(nil), s...), nil
}
