package telegram

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/sentiment"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "[", `\[`, "`", "\\`")

// BuildDigest lists the negative records of a run, most negative first,
// at most limit entries (limit <= 0 lists all). It returns "" when there is
// nothing to report.
func BuildDigest(records []domain.OutputRecord, limit int) string {
	var negative []domain.OutputRecord
	for _, rec := range records {
		if rec.Sentiment.Label == domain.SentimentNegative {
			negative = append(negative, rec)
		}
	}
	if len(negative) == 0 {
		return ""
	}

	slices.SortStableFunc(negative, func(a, b domain.OutputRecord) int {
		return cmp.Compare(a.Sentiment.Score, b.Sentiment.Score)
	})
	total := len(negative)
	if limit > 0 && len(negative) > limit {
		negative = negative[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Negative risk news: %d*\n\n", total)
	for _, rec := range negative {
		fmt.Fprintf(&b, "- %s\n%s | %s | %s\n%s\n\n",
			markdownEscaper.Replace(rec.Title),
			markdownEscaper.Replace(rec.SearchTerm),
			markdownEscaper.Replace(rec.Source),
			sentiment.FormatPolarity(rec.Sentiment.Score),
			rec.Link,
		)
	}
	if hidden := total - len(negative); hidden > 0 {
		fmt.Fprintf(&b, "...and %d more\n", hidden)
	}
	return b.String()
}
