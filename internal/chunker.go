package internal

import (
	"strings"
)

// DefaultChunkSize is the number of words per chunk used by the analyze flow
const DefaultChunkSize = 600

// Chunk is one contiguous window of words submitted to the analyzer
type Chunk struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// WordCount returns the number of words in the chunk
func (c Chunk) WordCount() int {
	return len(strings.Fields(c.Text))
}

// IsBlank reports whether the chunk carries no words
func (c Chunk) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// ChunkText splits text on whitespace runs and groups the words into windows
// of size words. The last window holds the remainder. Empty or
// whitespace-only input yields no chunks.
func ChunkText(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return []Chunk{}
	}

	chunks := make([]Chunk, 0, CountChunks(len(words), size))
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})
	}

	return chunks
}

// CountChunks returns ceil(wordCount/size)
func CountChunks(wordCount, size int) int {
	if wordCount <= 0 {
		return 0
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	return (wordCount + size - 1) / size
}

// WordCount returns the number of whitespace-separated words in text
func WordCount(text string) int {
	return len(strings.Fields(text))
}
