package guidelines

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/pkoukk/tiktoken-go"
)

const defaultChunkTokens = 256

// Chunker splits guideline prose into embedding-sized pieces along sentence
// boundaries so a chunk never cuts a contraindication in half.
type Chunker struct {
	maxTokens int
	encoder   *tiktoken.Tiktoken
}

func NewChunker(maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = defaultChunkTokens
	}
	// the encoding is fetched lazily and may be unavailable offline;
	// CountTokens falls back to an estimate in that case
	encoder, _ := tiktoken.GetEncoding("cl100k_base")
	return &Chunker{maxTokens: maxTokens, encoder: encoder}
}

// Chunk returns the text split into sentence-aligned pieces, each at most
// maxTokens long. A single sentence longer than the budget becomes its own
// chunk.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	segments := sentences.SegmentAll([]byte(text))
	var (
		chunks  []string
		builder strings.Builder
		tokens  int
	)
	flush := func() {
		if chunk := strings.TrimSpace(builder.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		builder.Reset()
		tokens = 0
	}
	for _, segment := range segments {
		sentence := string(segment)
		count := c.CountTokens(sentence)
		if tokens > 0 && tokens+count > c.maxTokens {
			flush()
		}
		builder.WriteString(sentence)
		tokens += count
	}
	flush()
	return chunks
}

// CountTokens reports the token length of a text under the cl100k encoding,
// or a rune-based estimate when the encoding could not be loaded.
func (c *Chunker) CountTokens(text string) int {
	if c.encoder == nil {
		return utf8.RuneCountInString(text)/4 + 1
	}
	return len(c.encoder.Encode(text, nil, nil))
}
