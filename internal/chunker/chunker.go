package chunker

import (
	"regexp"
	"strings"
)

// DefaultCharBudget is the chunk size used when no budget is
// configured.
const DefaultCharBudget = 1000

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*|[^.!?]+$`)

// SplitSentences splits text into sentence-like units on terminal
// punctuation. Text with no terminal punctuation comes back as a
// single sentence.
func SplitSentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Split groups consecutive sentences into chunks bounded by a
// character budget. When a chunk closes, the next one re-includes the
// closing chunk's final sentence so context survives the boundary.
// A body within budget yields exactly one chunk; an empty body yields
// none. A single sentence longer than the budget becomes its own
// oversized chunk rather than being cut mid-sentence.
func Split(body string, budget int) []string {
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	sentences := SplitSentences(body)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		addLen := len(sentence)
		if len(current) > 0 {
			addLen++ // joining space
		}
		if len(current) > 0 && currentLen+addLen > budget {
			chunks = append(chunks, strings.Join(current, " "))
			overlap := current[len(current)-1]
			current = []string{overlap}
			currentLen = len(overlap)
			addLen = len(sentence) + 1
		}
		current = append(current, sentence)
		currentLen += addLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
