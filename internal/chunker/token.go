package chunker

import "strings"

// EstimateTokens gives a rough token count from the word count, at about
// 1.33 tokens per English word. A non-empty text is at least one token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
