package csvparser

import (
	"fmt"
	"strings"

	"fjacquet/pricelist-import/internal/parser"
)

const byteOrderMark = "\uFEFF"

// splitLines cuts the payload into physical lines. A trailing \r is dropped
// from each line and a leading byte order mark is ignored.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// toRecords splits every line into cells.
func toRecords(lines []string, delim, quote rune) []parser.Record {
	records := make([]parser.Record, 0, len(lines))
	for i, line := range lines {
		rec := parser.Record{Line: i + 1}
		if strings.TrimSpace(line) == "" {
			rec.Blank = true
		} else {
			rec.Cells, rec.Warnings = splitLine(line, delim, quote)
		}
		records = append(records, rec)
	}
	return records
}

// splitLine splits one line on delim. A field starting with quote runs to the
// matching closing quote, a doubled quote inside it is a literal quote, and any
// text between the closing quote and the next delimiter is kept. A field whose
// opening quote is never closed on the line is taken literally up to the next
// delimiter and reported as a warning.
func splitLine(line string, delim, quote rune) ([]string, []string) {
	runes := []rune(line)
	n := len(runes)

	var (
		cells    []string
		warnings []string
	)
	i := 0
	for {
		if i < n && runes[i] == quote {
			value, next, ok := readQuoted(runes, i, delim, quote)
			if !ok {
				next = indexRune(runes, i+1, delim)
				value = string(runes[i:next])
				warnings = append(warnings, fmt.Sprintf("unterminated quote in column %d, kept as literal text", len(cells)+1))
			}
			cells = append(cells, value)
			i = next
		} else {
			end := indexRune(runes, i, delim)
			cells = append(cells, string(runes[i:end]))
			i = end
		}
		if i >= n {
			break
		}
		i++ // delimiter
	}
	return cells, warnings
}

// readQuoted reads a quoted field starting at runes[start]. It returns the
// unquoted value and the index of the delimiter (or line end) that ends it.
func readQuoted(runes []rune, start int, delim, quote rune) (string, int, bool) {
	var sb strings.Builder
	n := len(runes)
	for j := start + 1; j < n; j++ {
		if runes[j] != quote {
			sb.WriteRune(runes[j])
			continue
		}
		if j+1 < n && runes[j+1] == quote {
			sb.WriteRune(quote)
			j++
			continue
		}
		end := indexRune(runes, j+1, delim)
		sb.WriteString(string(runes[j+1 : end]))
		return sb.String(), end, true
	}
	return "", 0, false
}

func indexRune(runes []rune, from int, r rune) int {
	for k := from; k < len(runes); k++ {
		if runes[k] == r {
			return k
		}
	}
	return len(runes)
}
