package notionsync

import (
	"strconv"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-journal/internal/domain"
)

// Property names of the journal database.
const (
	PropJournalID = "Journal ID"
	PropUser      = "User"
	PropCreated   = "Created"
	PropNote      = "Note"
	PropIncome    = "Income"
	PropExpenses  = "Expenses"
	PropAdvice    = "Advice"
	PropSummary   = "Budget Summary"
)

// maxRichTextLen is the Notion limit for a single rich text object.
const maxRichTextLen = 2000

// JournalToNotionProperties converts a journal record to Notion page properties.
// Long texts are split into consecutive rich text objects.
func JournalToNotionProperties(rec domain.JournalRecord, username string) notionapi.Properties {
	props := notionapi.Properties{
		PropJournalID: notionapi.TitleProperty{
			Title: []notionapi.RichText{textObject(JournalKey(rec.ID))},
		},
		PropNote:     notionapi.RichTextProperty{RichText: richText(rec.Note)},
		PropIncome:   notionapi.RichTextProperty{RichText: richText(rec.ExtractedIncome)},
		PropExpenses: notionapi.RichTextProperty{RichText: richText(rec.ExtractedExpenses)},
		PropAdvice:   notionapi.RichTextProperty{RichText: richText(rec.Advice)},
		PropSummary:  notionapi.RichTextProperty{RichText: richText(rec.BudgetSummary)},
	}

	if username != "" {
		props[PropUser] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: username},
		}
	}

	if !rec.CreatedAt.IsZero() {
		created := notionapi.Date(rec.CreatedAt.UTC().Truncate(time.Second))
		props[PropCreated] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &created},
		}
	}

	return props
}

// JournalKey is the value of the Journal ID property for a record.
func JournalKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func textObject(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func richText(s string) []notionapi.RichText {
	if s == "" {
		return []notionapi.RichText{}
	}
	runes := []rune(s)
	var out []notionapi.RichText
	for len(runes) > 0 {
		n := len(runes)
		if n > maxRichTextLen {
			n = maxRichTextLen
		}
		out = append(out, textObject(string(runes[:n])))
		runes = runes[n:]
	}
	return out
}

// extractJournalID extracts the journal ID from a Notion page's properties.
// Returns empty string if not found.
func extractJournalID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropJournalID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
