// Package dataset reads reference measurements from delimited text files in
// the harmonized TDC/BindingDB layout (Drug_ID, Drug, Target_ID, Target, Y).
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Column names looked up in the header row, case-insensitively.
const (
	ColumnDrug   = "Drug"
	ColumnTarget = "Target"
	ColumnY      = "Y"
)

// FileSource loads records from a CSV or TSV file.
type FileSource struct {
	path string
	// comma is the field delimiter; zero means infer from the extension.
	comma  rune
	logger logging.Logger
}

// NewFileSource returns a source reading path. An empty delimiter selects tab
// for .tsv/.tab files and comma otherwise.
func NewFileSource(path, delimiter string, logger logging.Logger) *FileSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var comma rune
	if delimiter != "" {
		comma = []rune(delimiter)[0]
	}
	return &FileSource{path: path, comma: comma, logger: logger}
}

// Load implements reference.Source.
func (s *FileSource) Load(ctx context.Context) ([]reference.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "open reference file")
	}
	defer f.Close()

	comma := s.comma
	if comma == 0 {
		comma = inferDelimiter(s.path)
	}
	recs, err := Read(ctx, f, comma)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reference file loaded",
		logging.String("path", s.path),
		logging.Int("records", len(recs)))
	return recs, nil
}

func inferDelimiter(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// Read parses delimited records from r. The header must name Drug, Target and
// Y columns; other columns are ignored. Rows with an empty or non-numeric Y
// are rejected with the 1-based line number.
func Read(ctx context.Context, r io.Reader, comma rune) ([]reference.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	if comma == '\t' {
		cr.LazyQuotes = true
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeReferenceLoadFailed, "reference file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "read reference header")
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var out []reference.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "read reference row")
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(row) <= cols.max() {
			return nil, errors.New(errors.ErrCodeReferenceLoadFailed,
				fmt.Sprintf("line %d has %d fields, need at least %d", line, len(row), cols.max()+1))
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(row[cols.y]), 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeReferenceLoadFailed,
				fmt.Sprintf("line %d: affinity %q is not a number", line, row[cols.y]))
		}
		out = append(out, reference.Record{
			Drug:     row[cols.drug],
			Target:   row[cols.target],
			Affinity: y,
		})
	}
	return out, nil
}

type columns struct {
	drug, target, y int
}

func (c columns) max() int {
	m := c.drug
	if c.target > m {
		m = c.target
	}
	if c.y > m {
		m = c.y
	}
	return m
}

func locateColumns(header []string) (columns, error) {
	c := columns{drug: -1, target: -1, y: -1}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case strings.EqualFold(h, ColumnDrug):
			c.drug = i
		case strings.EqualFold(h, ColumnTarget):
			c.target = i
		case strings.EqualFold(h, ColumnY):
			c.y = i
		}
	}
	var missing []string
	if c.drug < 0 {
		missing = append(missing, ColumnDrug)
	}
	if c.target < 0 {
		missing = append(missing, ColumnTarget)
	}
	if c.y < 0 {
		missing = append(missing, ColumnY)
	}
	if len(missing) > 0 {
		return c, errors.New(errors.ErrCodeReferenceLoadFailed,
			"reference header is missing column(s) "+strings.Join(missing, ", "))
	}
	return c, nil
}
