// Package sentiment labels article text as positive, neutral or negative.
package sentiment

import (
	"math"
	"strconv"

	"github.com/jonreiter/govader"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
)

// Threshold bounds the neutral band; both ends belong to the outer labels.
const Threshold = 0.05

// Classifier maps text to a label using a compound-score capability.
type Classifier struct {
	scorer ports.SentimentScorer
}

var _ ports.SentimentClassifier = (*Classifier)(nil)

// NewClassifier wires a scorer; nil uses VADER.
func NewClassifier(scorer ports.SentimentScorer) *Classifier {
	if scorer == nil {
		scorer = NewVaderScorer()
	}
	return &Classifier{scorer: scorer}
}

// Classify scores text and buckets the score.
func (c *Classifier) Classify(text string) domain.SentimentResult {
	score := clamp(c.scorer.Score(text))
	return domain.SentimentResult{Label: Label(score), Score: score}
}

// Label buckets a compound score. The three comparisons are kept literally:
// -0.05 is negative, 0.05 is positive.
func Label(score float64) domain.SentimentLabel {
	var label domain.SentimentLabel
	if score <= -Threshold {
		label = domain.SentimentNegative
	} else if -Threshold < score && score < Threshold {
		label = domain.SentimentNeutral
	} else if score >= Threshold {
		label = domain.SentimentPositive
	}
	return label
}

// FormatPolarity renders a score the way the POLARITY column expects.
func FormatPolarity(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}

// VaderScorer is the lexicon and rule based VADER compound score.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var _ ports.SentimentScorer = (*VaderScorer)(nil)

// NewVaderScorer loads the VADER lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound score rounded to four decimals.
func (v *VaderScorer) Score(text string) float64 {
	compound := v.analyzer.PolarityScores(text).Compound
	return math.Round(compound*1e4) / 1e4
}
