package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column headers used by the admission office spreadsheets
const (
	ColumnExternalID = "CPF"
	ColumnScore      = "Nota Final"
	ColumnQuota      = "Cota do candidato"
	ColumnUnit       = "Campus"
	ColumnProgram    = "Curso"
	ColumnShift      = "Turno"
	ColumnOption     = "Opção"
	ColumnName       = "Nome"
	ColumnEmail      = "Email"
)

var requiredColumns = []string{ColumnExternalID, ColumnScore, ColumnQuota}

var poolColumns = []string{ColumnUnit, ColumnProgram, ColumnShift}

// headerKey folds a header for matching: case, surrounding space and accents are ignored,
// so "opcao", "OPÇÃO" and " Opção " all find the same column
func headerKey(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = h
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// columnIndex maps folded header names to their position
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		key := headerKey(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func (c columnIndex) has(column string) bool {
	_, ok := c[headerKey(column)]
	return ok
}

// get returns the trimmed cell of column in row, or "" when the column or cell is missing
func (c columnIndex) get(row []string, column string) string {
	i, ok := c[headerKey(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columnIndex) missing(columns []string) []string {
	var out []string
	for _, col := range columns {
		if !c.has(col) {
			out = append(out, col)
		}
	}
	return out
}
