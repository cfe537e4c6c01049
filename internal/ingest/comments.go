package ingest

import (
	"regexp"
	"strings"
	"time"

	"ticket-dash/internal/ticket"
)

const maxCommentPreview = 200

var (
	// Jira: "05/Mar/24 10:15 AM some text"
	jiraCommentDate = regexp.MustCompile(`^(\d{1,2}/[A-Za-z]{3}/\d{2,4}\s+\d{1,2}:\d{2}(?:\s*[AaPp][Mm])?)`)
	// ServiceNow work notes: "2024-03-05 10:15:00 - Jane Doe (Work notes)\ntext"
	workNoteHeader = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s*-\s*.*`)
)

// latestComment scans the comment cells of one row and returns the newest dated
// comment. When no cell carries a date, the first non-empty text is returned undated.
func latestComment(row []string, columns []int) (*time.Time, string) {
	var latest *time.Time
	text := ""
	for _, i := range columns {
		val := strings.TrimSpace(row[i])
		if val == "" {
			continue
		}
		at, body := parseComment(val)
		switch {
		case at != nil && (latest == nil || at.After(*latest)):
			latest, text = at, body
		case at == nil && latest == nil && text == "":
			text = body
		}
	}
	return latest, preview(text)
}

func parseComment(val string) (*time.Time, string) {
	// Jira's "date;author id;body" export layout.
	if parts := strings.SplitN(val, ";", 3); len(parts) == 3 {
		if at := ticket.ParseDatePtr(parts[0]); at != nil {
			return at, strings.TrimSpace(parts[2])
		}
	}

	if m := jiraCommentDate.FindStringSubmatch(val); m != nil {
		if at := ticket.ParseDatePtr(m[1]); at != nil {
			body := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(val[len(m[0]):]), ";"))
			return at, body
		}
	}

	if loc := workNoteHeader.FindStringSubmatchIndex(val); loc != nil {
		if at := ticket.ParseDatePtr(val[loc[2]:loc[3]]); at != nil {
			body := strings.TrimSpace(val[loc[1]:])
			if body == "" {
				body = val
			}
			return at, body
		}
	}

	return nil, val
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCommentPreview {
		return string(r[:maxCommentPreview]) + "..."
	}
	return s
}
