package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

const tdcSample = "Drug_ID\tDrug\tTarget_ID\tTarget\tY\n" +
	"1\tCCO\tP1\tMKTAYIAK\t5.5\n" +
	"2\tc1ccccc1\tP1\tMKTAYIAK\t6.25\n" +
	"1\tCCO\tP1\tMKTAYIAK\t7\n"

func TestRead_TSV(t *testing.T) {
	recs, err := Read(context.Background(), strings.NewReader(tdcSample), '\t')
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, reference.Record{Drug: "CCO", Target: "MKTAYIAK", Affinity: 5.5}, recs[0])
	assert.Equal(t, 6.25, recs[1].Affinity)

	h := reference.Harmonize(recs, reference.RuleMax)
	require.Len(t, h, 2)
	assert.Equal(t, 7.0, h[0].Affinity)
}

func TestRead_CSVColumnOrderAndCase(t *testing.T) {
	in := "y,target,drug\n1.5,MKT,CCO\n"
	recs, err := Read(context.Background(), strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "CCO", recs[0].Drug)
	assert.Equal(t, "MKT", recs[0].Target)
	assert.Equal(t, 1.5, recs[0].Affinity)
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{"empty", "", "empty"},
		{"missing column", "Drug,Target\nCCO,MKT\n", "missing column(s) Y"},
		{"bad number", "Drug,Target,Y\nCCO,MKT,abc\n", "line 2"},
		{"short row", "Drug,Target,Y\nCCO\n", "line 2 has 1 fields"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tc.in), ',')
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeReferenceLoadFailed))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestFileSource_InfersDelimiter(t *testing.T) {
	dir := t.TempDir()
	tsv := filepath.Join(dir, "bindingdb.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte(tdcSample), 0o600))

	recs, err := NewFileSource(tsv, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	csvPath := filepath.Join(dir, "bindingdb.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Drug,Target,Y\nCCO,MKT,2\n"), 0o600))
	recs, err = NewFileSource(csvPath, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	semi := filepath.Join(dir, "bindingdb.txt")
	require.NoError(t, os.WriteFile(semi, []byte("Drug;Target;Y\nCCO;MKT;2\n"), 0o600))
	recs, err = NewFileSource(semi, ";", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.tsv"), "", nil).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReferenceLoadFailed))
}

func TestBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.tsv")
	require.NoError(t, os.WriteFile(path, []byte(tdcSample), 0o600))

	tbl, err := reference.Build(context.Background(), NewFileSource(path, "", nil), reference.RuleMin)
	require.NoError(t, err)
	y, ok := tbl.Lookup("cco", "MKTAYIAK")
	require.True(t, ok)
	assert.Equal(t, 5.5, y)
}
