// Package analyzer counts words and characters in submitted text and serves
// the counts over HTTP.
package analyzer

import (
	"strings"
	"unicode/utf8"
)

// Stats summarizes a piece of text.
type Stats struct {
	WordCount       int `json:"wordCount"`
	CharacterCount  int `json:"characterCount"`
	UniqueWordCount int `json:"uniqueWordCount"`
}

// AnalyzeTextStats counts the whitespace-separated words of text, the
// case-insensitive distinct words and the characters of the untrimmed text.
func AnalyzeTextStats(text string) Stats {
	words := strings.Fields(text)

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	return Stats{
		WordCount:       len(words),
		CharacterCount:  utf8.RuneCountInString(text),
		UniqueWordCount: len(unique),
	}
}
