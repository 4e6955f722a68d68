package sheetsclient

import (
	"fmt"
	"strconv"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/importer"
)

// ListCandidates reads a tab laid out like the candidate CSV and parses it into candidates
func (c *Client) ListCandidates(spreadsheetID, tab string, opts importer.Options) ([]model.Candidate, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	header, rows := splitValues(values)
	candidates, err := importer.ParseRows(header, rows, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse candidates: %w", err)
	}

	return candidates, nil
}

// splitValues converts the API's loosely typed cells into the header and data rows the
// importer expects
func splitValues(raw [][]interface{}) (header []string, rows [][]string) {
	if len(raw) == 0 {
		return nil, nil
	}

	header = cellStrings(raw[0])
	rows = make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		rows = append(rows, cellStrings(row))
	}
	return header, rows
}

func cellStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		case float64:
			// Unformatted numbers come back as float64; keep the shortest exact form
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
