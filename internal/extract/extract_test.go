package extract

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func TestPatternExtractor_Triggers(t *testing.T) {
	ex := NewPatternExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "request phrasing keeps the sentence from the match",
			text: "Hi team, please send the report by Friday. Thanks!",
			want: []string{"please send the report by Friday"},
		},
		{
			name: "obligation keeps the whole sentence",
			text: "We need to migrate the billing tables.",
			want: []string{"We need to migrate the billing tables"},
		},
		{
			name: "date relative",
			text: "The vendor contract renewal is expected before Monday.",
			want: []string{"The vendor contract renewal is expected before Monday"},
		},
		{
			name: "reminder",
			text: "Also, don't forget the offsite booking",
			want: []string{"don't forget the offsite booking"},
		},
		{
			name: "one candidate per sentence in order",
			text: "Could you review the PR?\nURGENT: production alerts are firing\nLunch was great.",
			want: []string{"Could you review the PR", "URGENT: production alerts are firing"},
		},
		{
			name: "too short candidates are dropped",
			text: "Can you?",
			want: nil,
		},
		{
			name: "quoted replies are unwrapped",
			text: "> > Can you share the slides with legal",
			want: []string{"Can you share the slides with legal"},
		},
		{
			name: "nothing actionable",
			text: "The weather was nice. We had coffee.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(tt.text))
		})
	}
}

func TestPatternExtractor_TooLong(t *testing.T) {
	long := "Please "
	for i := 0; i < 50; i++ {
		long += "word "
	}
	assert.Empty(t, NewPatternExtractor().Extract(long))
}

func TestScan_DedupKeepsFirstOccurrence(t *testing.T) {
	first := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	msgs := []domain.MailMessage{
		{ID: "m1", From: "ana@example.com", Subject: "Quarterly numbers", Date: first, Body: "Hi, please send the report by Friday."},
		{ID: "m2", From: "bo@example.com", Subject: "Re: Quarterly numbers", Date: first.Add(time.Hour), Body: "PLEASE SEND THE REPORT BY FRIDAY."},
	}

	items := Scan(NewPatternExtractor(), msgs)
	require.Len(t, items, 1)
	assert.Equal(t, "please send the report by Friday", items[0].Action)
	assert.Equal(t, "m1", items[0].MessageID)
	assert.Equal(t, "ana@example.com", items[0].From)
	assert.Equal(t, first, items[0].Date)
	assert.Equal(t, domain.ActionItemAction, items[0].Kind)
}

func TestScan_SubjectFirst(t *testing.T) {
	msgs := []domain.MailMessage{
		{ID: "m1", Subject: "URGENT: contract signature", Body: "<p>Could you sign the contract today?</p>"},
	}

	items := Scan(NewPatternExtractor(), msgs)
	require.Len(t, items, 2)
	assert.Equal(t, "URGENT: contract signature", items[0].Action)
	assert.Equal(t, "Could you sign the contract today", items[1].Action)
}

func TestScan_Cap(t *testing.T) {
	var msgs []domain.MailMessage
	for i := 0; i < 15; i++ {
		msgs = append(msgs, domain.MailMessage{
			ID:   fmt.Sprintf("m%d", i),
			Body: fmt.Sprintf("Please review document number %d", i),
		})
	}

	items := Scan(NewPatternExtractor(), msgs)
	assert.Len(t, items, MaxItems)
	assert.Equal(t, "m9", items[MaxItems-1].MessageID)
}

func TestScan_FallbackToSubjects(t *testing.T) {
	msgs := []domain.MailMessage{
		{ID: "m1", Subject: "Weekly digest", Body: "Nothing to see here."},
		{ID: "m2", Subject: "weekly digest", Body: "Same again."},
		{ID: "m3", Subject: "Team photos", Body: ""},
	}

	items := Scan(NewPatternExtractor(), msgs)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ActionItemReview, items[0].Kind)
	assert.Equal(t, "Weekly digest", items[0].Action)
	assert.Equal(t, "Team photos", items[1].Action)
}

type fixedExtractor []string

func (f fixedExtractor) Extract(string) []string { return f }

func TestScan_UsesInjectedExtractor(t *testing.T) {
	items := Scan(fixedExtractor{"call the bank"}, []domain.MailMessage{{ID: "m1", Body: "anything"}})
	require.Len(t, items, 1)
	assert.Equal(t, "call the bank", items[0].Action)
}

func TestSubjectFlagged(t *testing.T) {
	assert.True(t, SubjectFlagged("Follow-up on invoice"))
	assert.True(t, SubjectFlagged("TODO for Monday"))
	assert.False(t, SubjectFlagged("Lunch photos"))
}
