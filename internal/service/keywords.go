package service

import (
	"menuengine/internal/config"
	"menuengine/internal/model"
	"strings"
)

// ReviewKeywords are vocabulary entries found in review text, in vocabulary order
type ReviewKeywords struct {
	Foods      []string `json:"foods"`
	Sentiments []string `json:"sentiments"`
}

// Empty reports whether nothing was found
func (k ReviewKeywords) Empty() bool {
	return len(k.Foods) == 0 && len(k.Sentiments) == 0
}

type vocabEntry struct {
	word       string
	normalized string
}

// KeywordExtractor finds known food and sentiment words in review snippets
type KeywordExtractor struct {
	foods      []vocabEntry
	sentiments []vocabEntry
}

// NewKeywordExtractor builds an extractor over the catalogue vocabulary
func NewKeywordExtractor(vocab config.VocabularyConfig) *KeywordExtractor {
	return &KeywordExtractor{
		foods:      buildVocab(vocab.Foods),
		sentiments: buildVocab(vocab.Sentiments),
	}
}

func buildVocab(words []string) []vocabEntry {
	out := make([]vocabEntry, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		n := normalizeText(w)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, vocabEntry{word: strings.TrimSpace(w), normalized: n})
	}
	return out
}

// Extract scans all snippets. Each word is reported once.
func (e *KeywordExtractor) Extract(reviews []model.ReviewSnippet) ReviewKeywords {
	var kw ReviewKeywords
	if e == nil || len(reviews) == 0 {
		return kw
	}

	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if t := normalizeText(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return kw
	}

	kw.Foods = matchVocab(e.foods, texts)
	kw.Sentiments = matchVocab(e.sentiments, texts)
	return kw
}

func matchVocab(vocab []vocabEntry, texts []string) []string {
	var found []string
	for _, v := range vocab {
		for _, t := range texts {
			if strings.Contains(t, v.normalized) {
				found = append(found, v.word)
				break
			}
		}
	}
	return found
}
