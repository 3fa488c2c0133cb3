// Package extract finds short action phrases in message bodies.
//
// The matching is a best-effort heuristic: ordered trigger patterns are
// applied sentence by sentence. Callers depend only on the Extractor
// interface so a model-based implementation can replace it.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

const (
	// MaxItems caps the number of action items returned by Scan
	MaxItems = 10

	minCandidateRunes = 8
	maxCandidateRunes = 200
)

// Extractor turns free text into candidate action phrases
type Extractor interface {
	Extract(text string) []string
}

type trigger struct {
	pattern *regexp.Regexp
	// fromMatch keeps the sentence from the match onwards instead of all of it
	fromMatch bool
}

const weekdays = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri`

var (
	triggers = []trigger{
		{regexp.MustCompile(`(?i)\b(please|kindly|could you|can you|would you)\b`), true},
		{regexp.MustCompile(`(?i)\b(action items?|action required|to-?do)\b`), true},
		{regexp.MustCompile(`(?i)\b(urgent|asap|as soon as possible)\b`), false},
		{regexp.MustCompile(`(?i)\b(deadline|due)\b`), false},
		{regexp.MustCompile(`(?i)(\breminder\b|\bremember to\b|\bdon'?t forget\b)`), true},
		{regexp.MustCompile(`(?i)\bfollow[- ]?up\b`), true},
		{regexp.MustCompile(`(?i)\b(need to|needs to|have to|has to|must|should)\b`), false},
		{regexp.MustCompile(`(?i)\b(by|before|until)\s+(` + weekdays + `|today|tonight|tomorrow|eod|eow|end of (the )?(day|week|month)|next week|\d{1,2}(st|nd|rd|th)?\b|\d{1,2}/\d{1,2})`), false},
	}

	subjectKeywords = regexp.MustCompile(`(?i)\b(action|urgent|asap|deadline|reminder|follow[- ]up|to-?do|important|request)\b`)

	sentenceBreak = regexp.MustCompile(`[.!?]+(\s+|$)|\n+`)
	quotePrefix   = regexp.MustCompile(`(?m)^[ \t]*(>[ \t]?)+`)
)

// PatternExtractor is the regex trigger implementation of Extractor
type PatternExtractor struct{}

// NewPatternExtractor creates a new pattern extractor
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract returns at most one candidate per sentence, in text order,
// without case-insensitive duplicates
func (PatternExtractor) Extract(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, sentence := range sentences(text) {
		candidate, ok := match(sentence)
		if !ok {
			continue
		}
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}

	return out
}

func match(sentence string) (string, bool) {
	for _, t := range triggers {
		loc := t.pattern.FindStringIndex(sentence)
		if loc == nil {
			continue
		}

		candidate := sentence
		if t.fromMatch {
			candidate = sentence[loc[0]:]
		}
		candidate = strings.Trim(candidate, " \t,;:-")

		n := utf8.RuneCountInString(candidate)
		if n < minCandidateRunes || n > maxCandidateRunes {
			return "", false
		}
		return candidate, true
	}
	return "", false
}

func sentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = quotePrefix.ReplaceAllString(text, "")

	var out []string
	for _, part := range sentenceBreak.Split(text, -1) {
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SubjectFlagged reports whether a subject line carries an action keyword
func SubjectFlagged(subject string) bool {
	return subjectKeywords.MatchString(subject)
}

// Scan extracts action items from messages in order. Subjects carrying an
// action keyword come first for their message, then body candidates.
// Duplicates are dropped case-insensitively keeping the first occurrence,
// and the result is capped at MaxItems. When nothing matches, message
// subjects are returned as review items instead.
func Scan(ex Extractor, msgs []domain.MailMessage) []domain.ActionItem {
	items := make([]domain.ActionItem, 0, MaxItems)
	seen := map[string]struct{}{}

	add := func(msg domain.MailMessage, action, kind string) bool {
		key := strings.ToLower(strings.TrimSpace(action))
		if key == "" {
			return len(items) < MaxItems
		}
		if _, dup := seen[key]; dup {
			return len(items) < MaxItems
		}
		seen[key] = struct{}{}
		items = append(items, domain.ActionItem{
			From:      msg.From,
			Subject:   msg.Subject,
			Action:    strings.TrimSpace(action),
			Date:      msg.Date,
			MessageID: msg.ID,
			Kind:      kind,
		})
		return len(items) < MaxItems
	}

scan:
	for _, msg := range msgs {
		if SubjectFlagged(msg.Subject) {
			if !add(msg, msg.Subject, domain.ActionItemAction) {
				break
			}
		}
		for _, candidate := range ex.Extract(textutil.Plain(msg.Body)) {
			if !add(msg, candidate, domain.ActionItemAction) {
				break scan
			}
		}
	}

	if len(items) > 0 {
		return items
	}

	for _, msg := range msgs {
		if !add(msg, msg.Subject, domain.ActionItemReview) {
			break
		}
	}
	return items
}
