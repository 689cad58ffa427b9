package reference

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

const seqA = "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ"

func TestHarmonize_Rules(t *testing.T) {
	raw := []Record{
		{"CCO", seqA, 5.0},
		{"CCN", seqA, 4.0},
		{"CCO", seqA, 7.5},
		{"CCO", seqA, 6.0},
	}

	cases := []struct {
		rule Rule
		want float64
	}{
		{RuleMax, 7.5},
		{RuleMin, 5.0},
		{RuleFirst, 5.0},
	}
	for _, tc := range cases {
		t.Run(string(tc.rule), func(t *testing.T) {
			out := Harmonize(raw, tc.rule)
			require.Len(t, out, 2)
			assert.Equal(t, "CCO", out[0].Drug)
			assert.Equal(t, tc.want, out[0].Affinity)
			assert.Equal(t, "CCN", out[1].Drug)
			assert.Equal(t, 4.0, out[1].Affinity)
		})
	}
	assert.Equal(t, 5.0, raw[0].Affinity, "input must not be modified")
}

func TestHarmonize_ExactPairOnly(t *testing.T) {
	out := Harmonize([]Record{
		{"CCO", seqA, 1},
		{"cco", seqA, 2},
		{"CCO", seqA + "A", 3},
	}, RuleMax)
	assert.Len(t, out, 3)
}

func TestTable_Lookup(t *testing.T) {
	tbl := NewTable([]Record{
		{"CC(=O)Oc1ccccc1C(=O)O", seqA, 6.5},
		{"CCO", seqA, 5.25},
	})

	y, ok := tbl.Lookup("CCO", seqA)
	require.True(t, ok)
	assert.Equal(t, 5.25, y)

	y, ok = tbl.Lookup("cc(=o)oC1CCCCC1c(=o)o", seqA)
	require.True(t, ok, "drug match is case-insensitive")
	assert.Equal(t, 6.5, y)

	_, ok = tbl.Lookup("CCO", "mktayiakqrqisfvkshfsrqleerlglievq")
	assert.False(t, ok, "target match is exact")

	_, ok = tbl.Lookup("OCC", seqA)
	assert.False(t, ok, "lookup uses the raw string, not the canonical one")

	_, ok = tbl.Lookup("CCO", "")
	assert.False(t, ok)
}

func TestTable_FirstMatchWins(t *testing.T) {
	tbl := NewTable([]Record{
		{"CCO", seqA, 1.0},
		{"cco", seqA, 2.0},
	})
	y, ok := tbl.Lookup("Cco", seqA)
	require.True(t, ok)
	assert.Equal(t, 1.0, y)
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_RecordsAreCopied(t *testing.T) {
	src := []Record{{"CCO", seqA, 1.0}}
	tbl := NewTable(src)
	src[0].Affinity = 99

	recs := tbl.Records()
	recs[0].Affinity = 42

	y, _ := tbl.Lookup("CCO", seqA)
	assert.Equal(t, 1.0, y)
}

func TestTable_NilAndEmpty(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Lookup("CCO", seqA)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Records())

	assert.Equal(t, 0, Empty().Len())
}

func TestParseRule(t *testing.T) {
	for in, want := range map[string]Rule{"": RuleMax, "max": RuleMax, "MIN": RuleMin, " first ": RuleFirst} {
		got, err := ParseRule(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"mean", "maximum", "avg"} {
		_, err := ParseRule(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), bad)
	}
}

func TestHarmonize_RawConcentrationsNeedMin(t *testing.T) {
	// Kd in nM: 10 binds fifty times tighter than 500.
	raw := []Record{
		{"CCO", seqA, 500},
		{"CCO", seqA, 10},
	}
	assert.Equal(t, 500.0, Harmonize(raw, RuleMax)[0].Affinity)
	assert.Equal(t, 10.0, Harmonize(raw, RuleMin)[0].Affinity)
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]Record, error) {
	return nil, fmt.Errorf("dataset unavailable")
}

func TestBuild(t *testing.T) {
	tbl, err := Build(context.Background(), StaticSource{
		{"CCO", seqA, 3},
		{"CCO", seqA, 4},
	}, RuleMax)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	y, _ := tbl.Lookup("CCO", seqA)
	assert.Equal(t, 4.0, y)

	_, err = Build(context.Background(), failingSource{}, RuleMax)
	assert.EqualError(t, err, "dataset unavailable")
}

func TestTable_ConcurrentReads(t *testing.T) {
	tbl := NewTable([]Record{{"CCO", seqA, 1.5}})
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 1000; j++ {
				if y, ok := tbl.Lookup("CCO", seqA); !ok || y != 1.5 {
					t.Errorf("unexpected lookup result %v %v", y, ok)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
