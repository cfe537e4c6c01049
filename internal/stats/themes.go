package stats

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ticket-dash/internal/ticket"
)

const (
	maxThemes        = 25
	minThemeTickets  = 3
	maxThemeExamples = 3
	exampleLen       = 100
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a an the to of for in on is it and or be as at by was are has had
		not but from with this that i we they you my our do so if no up out can all been have will its
		did get got need needs needed please hi hello thanks thank would could should re fw fwd per via
		ie eg etc also just about their them there these those when what which who how very some any
		more other into over only than then each after before between same being both does done going
		make may new now one two use way`) {
		stopWords[w] = true
	}
}

func tokenize(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 1 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// ClusterThemes finds phrases of two or three significant words shared by at
// least three ticket summaries. A trigram hides the bigrams it contains. At most
// limit themes are returned, most frequent first.
func ClusterThemes(tickets []ticket.Ticket, limit int) []Theme {
	counts := make(map[string]int)
	examples := make(map[string][]string)

	for _, t := range tickets {
		summary := strings.TrimSpace(t.Summary)
		if summary == "" {
			continue
		}
		words := tokenize(summary)
		seen := make(map[string]bool)
		for _, n := range []int{3, 2} {
			for i := 0; i+n <= len(words); i++ {
				gram := strings.Join(words[i:i+n], " ")
				if seen[gram] {
					continue
				}
				seen[gram] = true
				counts[gram]++
				if len(examples[gram]) < maxThemeExamples {
					examples[gram] = append(examples[gram], truncateRunes(summary, exampleLen))
				}
			}
		}
	}

	var candidates []string
	for gram, n := range counts {
		if n >= minThemeTickets {
			candidates = append(candidates, gram)
		}
	}
	slices.SortFunc(candidates, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.Count(b, " "), strings.Count(a, " ")); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	title := cases.Title(language.English)
	covered := make(map[string]bool)
	out := []Theme{}
	for _, gram := range candidates {
		if len(out) >= limit {
			break
		}
		words := strings.Fields(gram)
		if len(words) == 2 && covered[gram] {
			continue
		}
		if len(words) == 3 {
			covered[words[0]+" "+words[1]] = true
			covered[words[1]+" "+words[2]] = true
		}
		out = append(out, Theme{Theme: title.String(gram), Count: counts[gram], Examples: examples[gram]})
	}
	return out
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
