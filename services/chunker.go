package services

import (
	"regexp"
	"strings"
)

var (
	nonASCIIRegex   = regexp.MustCompile(`[^\x00-\x7F]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// CleanText normalizes extracted document text: every run of non-ASCII
// characters becomes a single space, whitespace runs collapse to one space,
// and the result is trimmed. Idempotent.
func CleanText(text string) string {
	text = nonASCIIRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunker splits normalized text into size-bounded chunks with a character
// overlap between consecutive chunks.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 250
	}
	if overlap < 0 || overlap >= size {
		overlap = 50
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split greedily accumulates whole words up to the size budget and starts each
// new chunk with a word-suffix of the previous one within the overlap budget.
// Output is deterministic and every chunk stays within the budget unless a
// single word already exceeds it.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range words {
		add := len(word)
		if currentLen > 0 {
			add++ // joining space
		}

		if currentLen > 0 && currentLen+add > c.size {
			chunks = append(chunks, strings.Join(current, " "))

			current = overlapSuffix(current, c.overlap)
			currentLen = joinedLen(current)
			add = len(word)
			if currentLen > 0 {
				add++
			}
			// A word too big for size-overlap gets a chunk of its own
			if currentLen > 0 && currentLen+add > c.size {
				current = nil
				currentLen = 0
				add = len(word)
			}
		}

		current = append(current, word)
		currentLen += add
	}

	return append(chunks, strings.Join(current, " "))
}

// overlapSuffix returns the trailing words of a chunk whose joined length
// fits in the overlap budget.
func overlapSuffix(words []string, budget int) []string {
	n := 0
	total := 0
	for i := len(words) - 1; i >= 0; i-- {
		add := len(words[i])
		if n > 0 {
			add++
		}
		if total+add > budget {
			break
		}
		total += add
		n++
	}
	if n == 0 {
		return nil
	}
	suffix := make([]string, n)
	copy(suffix, words[len(words)-n:])
	return suffix
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	total := len(words) - 1
	for _, w := range words {
		total += len(w)
	}
	return total
}
