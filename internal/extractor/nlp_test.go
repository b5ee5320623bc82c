package extractor

import (
	"strings"
	"testing"

	textrank "github.com/DavidBelicza/TextRank/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const riskStory = `Port workers began a strike on Monday that threatens the regional supply chain.
Shipping companies warned that the supply chain disruption could last for weeks.
The union said talks with port operators had collapsed after a dispute over wages.
Retailers are already reporting delays for holiday inventory arriving by sea.
Analysts expect freight rates to climb while the strike continues.
Government officials urged both sides to return to negotiations quickly.
Some manufacturers have started rerouting cargo through other ports.`

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	got, err := splitSentences("First one. Second one! Third?\nFourth line without stop\n\nVersion 2.5 is out.")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"First one.",
		"Second one!",
		"Third?",
		"Fourth line without stop",
		"Version 2.5 is out.",
	}, got)
}

func TestSplitSentencesKeepsAbbreviationsAndDecimals(t *testing.T) {
	t.Parallel()

	got, err := splitSentences("The U.S. economy shrank 4.5 percent in March. Prices rose.")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The U.S. economy shrank 4.5 percent in March.",
		"Prices rose.",
	}, got)
}

func TestFoldAndSplitWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cafe resume, deja-vu", fold("Café RÉSUMÉ, déjà-vu"))
	assert.Equal(t, []string{"cafe", "resume", "2024", "b", "c"}, splitWords("cafe resume, 2024 b-c"))
}

func TestIsCandidate(t *testing.T) {
	t.Parallel()

	lang := textrank.NewDefaultLanguage()
	assert.True(t, isCandidate("strike", lang))
	assert.False(t, isCandidate("the", lang))
	assert.False(t, isCandidate("2024", lang))
	assert.False(t, isCandidate("x", lang))
}

func TestTitleKeywordsKeepOrder(t *testing.T) {
	t.Parallel()

	got := titleKeywords("Port strike: the port of Köln", textrank.NewDefaultLanguage(), 10)
	assert.Equal(t, []string{"port", "strike", "koln"}, got)

	got = titleKeywords("Port strike hits supply chain", textrank.NewDefaultLanguage(), 2)
	assert.Equal(t, []string{"port", "strike"}, got)
}

func TestAnalyzeSummarizesAndExtractsKeywords(t *testing.T) {
	t.Parallel()

	summary, keywords, err := analyze("Port strike hits supply chain", riskStory, 3, 10)
	require.NoError(t, err)

	lines := strings.Split(summary, "\n")
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, riskStory, line)
	}
	assert.Contains(t, keywords, "supply")
	assert.Contains(t, keywords, "strike")
	assert.NotContains(t, keywords, "the")
}

func TestAnalyzeKeepsSentenceOrder(t *testing.T) {
	t.Parallel()

	summary, _, err := analyze("", riskStory, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, riskStory, summary)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	s1, k1, err := analyze("Port strike", riskStory, 5, 10)
	require.NoError(t, err)
	s2, k2, err := analyze("Port strike", riskStory, 5, 10)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, k1, k2)
}

func TestAnalyzeWithoutWords(t *testing.T) {
	t.Parallel()

	_, _, err := analyze("", "   ", 5, 10)
	assert.ErrorIs(t, err, errNothingToAnalyze)

	_, _, err = analyze("", "the and of. 12 34!", 5, 10)
	assert.ErrorIs(t, err, errNothingToAnalyze)
}
