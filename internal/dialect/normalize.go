package dialect

import (
	"regexp"
	"strings"
	"unicode"

	"ticket-dash/internal/ticket"
)

var customFieldWrapper = regexp.MustCompile(`^custom\s*field\s*\((.+)\)$`)

// ColumnMap resolves canonical fields to column positions of one CSV header.
type ColumnMap struct {
	// Headers is the header row as read, used to key Ticket.Raw.
	Headers []string
	// Comments lists every comment-like column in header order.
	Comments []int

	columns map[Field][]int
}

// Normalize maps a header row onto the canonical fields of a dialect.
//
// Matching ignores case, whitespace and punctuation ("Component/s" == "components")
// and sees through Jira's "Custom field (Name)" wrapper. For each field the first
// alias present in the header wins; if that alias occurs in several columns
// (Jira repeats Sprint or Labels) all of them are kept, in header order, so the
// builder can coalesce them. Any column whose name contains "comment" is a
// comment column regardless of dialect.
func Normalize(header []string, d ticket.Dialect) ColumnMap {
	plain := make([]string, len(header))
	unwrapped := make([]string, len(header))
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		plain[i] = squash(lower)
		unwrapped[i] = plain[i]
		if m := customFieldWrapper.FindStringSubmatch(lower); m != nil {
			unwrapped[i] = squash(m[1])
		}
	}

	cm := ColumnMap{
		Headers: append([]string(nil), header...),
		columns: make(map[Field][]int),
	}

	for _, entry := range aliasesFor(d) {
		for _, alias := range entry.aliases {
			want := squash(alias)
			var idx []int
			for i := range header {
				if plain[i] == want || unwrapped[i] == want {
					idx = append(idx, i)
				}
			}
			if len(idx) > 0 {
				cm.columns[entry.field] = idx
				break
			}
		}
	}

	for i := range header {
		if isCommentColumn(plain[i], d) {
			cm.Comments = append(cm.Comments, i)
		}
	}

	return cm
}

// Width is the number of columns every data row must have.
func (m ColumnMap) Width() int {
	return len(m.Headers)
}

// Index returns the primary column of a field.
func (m ColumnMap) Index(f Field) (int, bool) {
	idx := m.columns[f]
	if len(idx) == 0 {
		return 0, false
	}
	return idx[0], true
}

// Columns returns every column mapped to a field, primary first.
func (m ColumnMap) Columns(f Field) []int {
	return m.columns[f]
}

// Mapped lists the fields found in the header, in alias-table order.
func (m ColumnMap) Mapped(d ticket.Dialect) []Field {
	var out []Field
	for _, entry := range aliasesFor(d) {
		if len(m.columns[entry.field]) > 0 {
			out = append(out, entry.field)
		}
	}
	return out
}

// Unmapped lists the dialect's fields that are absent from the header.
func (m ColumnMap) Unmapped(d ticket.Dialect) []Field {
	var out []Field
	for _, entry := range aliasesFor(d) {
		if len(m.columns[entry.field]) == 0 {
			out = append(out, entry.field)
		}
	}
	return out
}

func isCommentColumn(name string, d ticket.Dialect) bool {
	if strings.Contains(name, "comment") {
		return true
	}
	return d == ticket.ServiceNow && (strings.Contains(name, "worknotes") || name == "actionstaken")
}

// squash lowercases and drops everything but letters and digits.
func squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
