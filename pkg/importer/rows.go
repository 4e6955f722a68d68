package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// ErrNoRows is returned for a file or sheet without any candidate row
var ErrNoRows = errors.New("no candidate rows found")

// MissingColumnsError lists the required columns a header lacks
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowError points at the cell that could not be read. Line is 1-based and counts the header.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %q: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options controls how rows are turned into candidates
type Options struct {
	// Pool is used for rows of files without Campus/Curso/Turno columns. Files that carry
	// those columns put each row in its own pool and Pool is ignored.
	Pool model.PoolKey
}

// ParseRows turns a header and its data rows into candidates. Blank rows are skipped.
func ParseRows(header []string, rows [][]string, opts Options) ([]model.Candidate, error) {
	idx := indexHeader(header)

	if missing := idx.missing(requiredColumns); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	perRowPool := len(idx.missing(poolColumns)) == 0
	if !perRowPool && (opts.Pool.Unit == "" || opts.Pool.Program == "" || opts.Pool.Shift == "") {
		return nil, &MissingColumnsError{Columns: idx.missing(poolColumns)}
	}

	var candidates []model.Candidate
	for i, row := range rows {
		line := i + 2
		if blank(row) {
			continue
		}

		c, err := parseRow(idx, row, line)
		if err != nil {
			return nil, err
		}

		if perRowPool {
			c.Pool = model.PoolKey{
				Unit:    idx.get(row, ColumnUnit),
				Program: idx.get(row, ColumnProgram),
				Shift:   idx.get(row, ColumnShift),
			}
		} else {
			c.Pool = opts.Pool
		}

		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, ErrNoRows
	}
	return candidates, nil
}

func parseRow(idx columnIndex, row []string, line int) (model.Candidate, error) {
	c := model.Candidate{
		ExternalID: idx.get(row, ColumnExternalID),
		Name:       idx.get(row, ColumnName),
		Email:      idx.get(row, ColumnEmail),
	}

	if c.ExternalID == "" {
		return c, &RowError{Line: line, Column: ColumnExternalID, Err: errors.New("value is required")}
	}

	score, err := parseScore(idx.get(row, ColumnScore))
	if err != nil {
		return c, &RowError{Line: line, Column: ColumnScore, Err: err}
	}
	c.Score = score

	declared, err := quota.ParseCode(idx.get(row, ColumnQuota))
	if err != nil {
		return c, &RowError{Line: line, Column: ColumnQuota, Err: err}
	}
	c.Declared = declared

	if raw := idx.get(row, ColumnOption); raw != "" {
		option, err := strconv.Atoi(raw)
		if err != nil || option < 0 {
			return c, &RowError{Line: line, Column: ColumnOption, Err: fmt.Errorf("invalid choice rank %q", raw)}
		}
		c.Option = option
	}

	return c, nil
}

// parseScore accepts both "85.5" and the decimal comma form "85,5"
func parseScore(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("value is required")
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("invalid score %q", raw)
	}
	return score, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
