// Package format turns free-text model output into labeled sections
// and presentational step cards. Both transforms are pure and total:
// malformed input degrades, it never errors.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/avereyes/promptdesk/internal/domain"
)

// stepMarker matches a leading ordinal (digit + period/paren), dash,
// or bullet that starts a new card.
var stepMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*(.*)$`)

// warningWord matches the cautionary token as a whole word, any case.
var warningWord = regexp.MustCompile(`(?i)\bwarning\b`)

// SplitLabeledSections scans text for boundary lines of the form
// "optional ordinal + exact label + optional colon" standing alone on
// a line (case-insensitive after trimming) and maps each label to the
// text between its boundary and the next one. Text before the first
// recognized label is discarded. If no label matches, the entire
// trimmed input is returned under fallback.
func SplitLabeledSections(text string, labels []string, fallback string) map[string]string {
	matchers := make([]*regexp.Regexp, len(labels))
	for i, label := range labels {
		matchers[i] = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?` + regexp.QuoteMeta(label) + `\s*:?$`)
	}

	sections := make(map[string]string)
	current := ""
	var buf []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		matched := false
		for i, m := range matchers {
			if m.MatchString(trimmed) {
				flush()
				current = labels[i]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	if len(sections) == 0 {
		return map[string]string{fallback: strings.TrimSpace(text)}
	}
	return sections
}

// StepsToCards converts numbered or bulleted plain text into ordered
// cards. Cards are renumbered sequentially from 1 regardless of the
// markers in the source text. Lines without a marker continue the
// previous card; card text is HTML-escaped, and a card is flagged
// when any of its lines contains "warning" as a whole word.
func StepsToCards(text string) []domain.Card {
	var cards []domain.Card

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		body := trimmed
		startsCard := false
		if m := stepMarker.FindStringSubmatch(trimmed); m != nil {
			body = m[1]
			startsCard = true
		}

		if startsCard || len(cards) == 0 {
			cards = append(cards, domain.Card{
				Number:  len(cards) + 1,
				Text:    html.EscapeString(body),
				Flagged: warningWord.MatchString(body),
			})
			continue
		}

		last := &cards[len(cards)-1]
		last.Text += "\n" + html.EscapeString(body)
		if warningWord.MatchString(body) {
			last.Flagged = true
		}
	}

	return cards
}
