package extractor

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	textrank "github.com/DavidBelicza/TextRank/v2"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var errNothingToAnalyze = errors.New("no words to analyze")

var loadSegmenter = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// segmentMu serializes the shared punkt tokenizer across workers.
var segmentMu sync.Mutex

// analyze builds a summary of the best sentences and the merged title/body
// keywords.
func analyze(title, text string, maxSentences, keywordCount int) (string, []string, error) {
	lang := textrank.NewDefaultLanguage()

	body, err := splitSentences(text)
	if err != nil {
		return "", nil, err
	}
	if !hasCandidates(body, lang) {
		return "", nil, errNothingToAnalyze
	}

	ranked := rankWords(body, lang)
	if len(ranked) == 0 {
		return "", nil, errNothingToAnalyze
	}

	weights := make(map[string]float64, len(ranked))
	bodyKeywords := make([]string, 0, min(keywordCount, len(ranked)))
	for i, w := range ranked {
		weights[w.word] = w.weight
		if i < keywordCount {
			bodyKeywords = append(bodyKeywords, w.word)
		}
	}

	keywords := mergeKeywords(titleKeywords(title, lang, keywordCount), bodyKeywords)
	return summarize(body, weights, maxSentences), keywords, nil
}

// splitSentences segments each paragraph line with the punkt model, so
// abbreviations and decimals stay inside their sentence.
func splitSentences(text string) ([]string, error) {
	tok, err := loadSegmenter()
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}

	segmentMu.Lock()
	defer segmentMu.Unlock()

	var out []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		for _, s := range tok.Tokenize(para) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// lineRule hands TextRank the sentence boundaries found by the segmenter:
// only line breaks end a sentence.
type lineRule struct{}

func (lineRule) IsWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func (lineRule) IsSentenceSeparator(r rune) bool {
	return r == '\n'
}

type rankedWord struct {
	word   string
	weight float64
	qty    int
}

// rankWords runs TextRank over the sentences and returns keyword candidates
// by descending weight. Ties fall back to frequency, then the word itself.
func rankWords(body []string, lang stopWords) []rankedWord {
	var b strings.Builder
	for _, s := range body {
		b.WriteString(fold(s))
		b.WriteByte('\n')
	}

	tr := textrank.NewTextRank()
	tr.Populate(b.String(), textrank.NewDefaultLanguage(), lineRule{})
	tr.Ranking(textrank.NewDefaultAlgorithm())

	var out []rankedWord
	for _, w := range textrank.FindSingleWords(tr) {
		if !isCandidate(w.Word, lang) {
			continue
		}
		out = append(out, rankedWord{word: w.Word, weight: float64(w.Weight), qty: w.Qty})
	}
	slices.SortStableFunc(out, func(a, b rankedWord) int {
		if c := cmp.Compare(b.weight, a.weight); c != 0 {
			return c
		}
		if c := cmp.Compare(b.qty, a.qty); c != 0 {
			return c
		}
		return strings.Compare(a.word, b.word)
	})
	return out
}

// summarize keeps the maxSentences sentences with the highest mean word
// weight, in their original order.
func summarize(body []string, weights map[string]float64, maxSentences int) string {
	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, 0, len(body))
	for i, s := range body {
		words := splitWords(fold(s))
		if len(words) == 0 {
			continue
		}
		total := 0.0
		for _, w := range words {
			total += weights[w]
		}
		ranked = append(ranked, scored{index: i, score: total / float64(len(words))})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
	ranked = ranked[:min(maxSentences, len(ranked))]
	slices.SortFunc(ranked, func(a, b scored) int { return cmp.Compare(a.index, b.index) })

	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = body[s.index]
	}
	return strings.Join(out, "\n")
}

// titleKeywords are the title's candidate words in reading order.
func titleKeywords(title string, lang stopWords, n int) []string {
	var out []string
	for _, w := range splitWords(fold(title)) {
		if len(out) == n {
			break
		}
		if isCandidate(w, lang) && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

type stopWords interface {
	IsStopWord(word string) bool
}

func hasCandidates(body []string, lang stopWords) bool {
	for _, s := range body {
		for _, w := range splitWords(fold(s)) {
			if isCandidate(w, lang) {
				return true
			}
		}
	}
	return false
}

// isCandidate drops single characters, pure numbers and stop words.
func isCandidate(w string, lang stopWords) bool {
	if len([]rune(w)) < 2 || isNumber(w) {
		return false
	}
	return !lang.IsStopWord(w)
}

// foldMarks is rebuilt per call: chained transformers keep internal state.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// fold lower-cases and strips diacritics.
func fold(text string) string {
	lower := strings.ToLower(text)
	folded, _, err := transform.String(foldMarks(), lower)
	if err != nil {
		return lower
	}
	return folded
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, lineRule{}.IsWordSeparator)
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
