package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// ReadCSV reads candidates from a CSV export. Files saved by spreadsheet tools come in
// several flavours, so the encoding (UTF-8 with or without BOM, UTF-16 with BOM, or
// Windows-1252) and the delimiter (comma, semicolon or tab) are detected.
func ReadCSV(r io.Reader, opts Options) ([]model.Candidate, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	text, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	return ParseRows(records[0], records[1:], opts)
}

// decode returns the content as UTF-8 without a byte order mark
func decode(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) || hasUTF16BOM(raw) {
		// BOMOverride switches to UTF-16 when it sees its BOM and strips a UTF-8 BOM
		text, _, err := transform.Bytes(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), raw)
		return text, err
	}

	// Not Unicode: legacy Excel exports on Windows
	text, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	return text, err
}

func hasUTF16BOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF})
}

// detectDelimiter picks the most frequent candidate delimiter on the header line
func detectDelimiter(text []byte) rune {
	header := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

var callHeader = []string{
	ColumnExternalID, ColumnName, ColumnEmail, ColumnUnit, ColumnProgram, ColumnShift,
	ColumnScore, ColumnQuota, "Vaga selecionada", "Chamada", "Status",
}

// CallRecords renders candidates as rows under callHeader, header first
func CallRecords(candidates []*model.Candidate) [][]string {
	records := [][]string{callHeader}
	for _, c := range candidates {
		assigned, round := "", ""
		if c.Assigned != nil {
			assigned = c.Assigned.String()
		}
		if c.Round != nil {
			round = strconv.Itoa(*c.Round)
		}
		records = append(records, []string{
			c.ExternalID, c.Name, c.Email, c.Pool.Unit, c.Pool.Program, c.Pool.Shift,
			formatScore(c.Score), c.Declared.String(), assigned, round, string(c.Status),
		})
	}
	return records
}

// WriteCall writes a call list (or a full round report) as UTF-8 CSV
func WriteCall(w io.Writer, candidates []*model.Candidate) error {
	return writeAll(w, CallRecords(candidates))
}

// ClassificationRecords renders the classification report: one rank column per quota,
// empty where the candidate is not part of that quota's list
func ClassificationRecords(candidates []*model.Candidate) [][]string {
	header := []string{ColumnExternalID, ColumnName, ColumnScore, ColumnQuota, "Status"}
	for _, code := range quota.Codes {
		header = append(header, "Classificação "+code.String())
	}

	records := [][]string{header}
	for _, c := range candidates {
		row := []string{c.ExternalID, c.Name, formatScore(c.Score), c.Declared.String(), string(c.Status)}
		for _, code := range quota.Codes {
			if pos, ok := c.Classification[code]; ok {
				row = append(row, strconv.Itoa(pos))
			} else {
				row = append(row, "")
			}
		}
		records = append(records, row)
	}
	return records
}

// WriteClassification writes the classification report as UTF-8 CSV
func WriteClassification(w io.Writer, candidates []*model.Candidate) error {
	return writeAll(w, ClassificationRecords(candidates))
}

func writeAll(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
