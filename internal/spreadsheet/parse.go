package spreadsheet

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one labelled amount parsed from model text.
type Entry struct {
	Label  string
	Amount decimal.Decimal
}

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)
)

// NormalizeAmount turns free text into a single amount. Thousands
// separators are removed and every number in the text is considered:
// none yields 0, one yields its value and several yield the floor of
// their mean, so a range like "500-700" becomes 600.
func NormalizeAmount(text string) decimal.Decimal {
	matches := numberPattern.FindAllString(strings.ReplaceAll(text, ",", ""), -1)
	switch len(matches) {
	case 0:
		return decimal.Zero
	case 1:
		return mustDecimal(matches[0])
	}

	sum := decimal.Zero
	for _, m := range matches {
		sum = sum.Add(mustDecimal(m))
	}
	return sum.Div(decimal.NewFromInt(int64(len(matches)))).Floor()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		// numberPattern only matches valid decimals.
		return decimal.Zero
	}
	return d
}

// ParseEntries reads "label: amount" lines. The first non-blank line is a
// heading and is discarded, blank lines are skipped and list markers are
// stripped from labels. A line without a colon uses the whole line as the
// label and takes its amount from the same text.
func ParseEntries(text string) []Entry {
	var entries []Entry
	headerSeen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		label, amount := line, line
		if idx := strings.Index(line, ":"); idx != -1 {
			label, amount = line[:idx], line[idx+1:]
		}

		entries = append(entries, Entry{
			Label:  cleanLabel(label),
			Amount: NormalizeAmount(amount),
		})
	}
	return entries
}

func cleanLabel(label string) string {
	label = strings.TrimSpace(label)
	label = bulletPattern.ReplaceAllString(label, "")
	return strings.TrimSpace(strings.Trim(label, "*_"))
}

// Total sums the amounts of entries.
func Total(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
