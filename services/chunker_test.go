package services

import (
	"fmt"
	"strings"
	"testing"
)

func TestCleanTextReplacesNonASCII(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"héllo wörld", "h llo w rld"},
		{"plain ascii", "plain ascii"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"  padded  ", "padded"},
		{"रुपये 500 cover", "500 cover"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"The policy covers hospitalization up to $50,000.",
		"  mixed \t whitespace \n and ünïcode  ",
		"",
	}
	for _, in := range inputs {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Errorf("CleanText not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%04d", i)
	}
	return strings.Join(words, " ")
}

func TestSplitBoundsChunkSize(t *testing.T) {
	chunker := NewChunker(250, 50)
	chunks := chunker.Split(numberedWords(500))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 250 {
			t.Errorf("chunk %d has %d chars, want <= 250", i, len(chunk))
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	chunker := NewChunker(250, 50)
	text := numberedWords(300)
	first := chunker.Split(text)
	second := chunker.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitOverlapReconstructsInput(t *testing.T) {
	chunker := NewChunker(250, 50)
	text := numberedWords(400)
	chunks := chunker.Split(text)

	reconstructed := chunks[0]
	for _, chunk := range chunks[1:] {
		// The next chunk starts with an exact suffix of what we have so far
		overlap := 0
		for k := len(chunk); k > 0; k-- {
			if k <= len(reconstructed) && strings.HasSuffix(reconstructed, chunk[:k]) {
				overlap = k
				break
			}
		}
		if overlap == 0 {
			reconstructed += " " + chunk
		} else {
			reconstructed += chunk[overlap:]
		}
	}

	if reconstructed != text {
		t.Errorf("reconstruction differs from input:\ngot  %q\nwant %q", reconstructed, text)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunker := NewChunker(250, 50)
	text := "The policy covers hospitalization up to $50,000."
	chunks := chunker.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want %q", chunks[0], text)
	}
}

func TestSplitEmptyText(t *testing.T) {
	chunker := NewChunker(250, 50)
	if chunks := chunker.Split(""); chunks != nil {
		t.Errorf("expected nil chunks for empty text, got %v", chunks)
	}
	if chunks := chunker.Split("   "); chunks != nil {
		t.Errorf("expected nil chunks for blank text, got %v", chunks)
	}
}

func TestSplitOversizedWord(t *testing.T) {
	chunker := NewChunker(250, 50)
	long := strings.Repeat("x", 300)
	chunks := chunker.Split("start " + long + " end")
	joined := strings.Join(chunks, " ")
	for _, want := range []string{"start", long, "end"} {
		if !strings.Contains(joined, want) {
			t.Errorf("chunks lost content %q", want[:10])
		}
	}
}
