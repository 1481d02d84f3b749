package document

import (
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target size for each chunk in characters
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared between
	// consecutive chunks so no sentence is lost on a boundary
	DefaultChunkOverlap = 200

	// pageSeparator joins page texts before chunking
	pageSeparator = "\n\n"
)

// Chunker splits document text into overlapping chunks for embedding.
// Chunking is deterministic and does no I/O.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewChunker() *Chunker {
	return &Chunker{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// Chunk is a single span of source text. StartPos/EndPos index into the
// text passed to ChunkText; spans of consecutive chunks overlap, and
// together they cover every character of the input.
type Chunk struct {
	Content  string
	StartPos int
	EndPos   int
	Index    int
	Page     int // 1-based page the span starts on; 0 when unknown
}

// ChunkPages concatenates page texts and splits them, tagging each chunk
// with the page its span starts on.
func (c *Chunker) ChunkPages(pages []Page) []Chunk {
	var builder strings.Builder
	pageStarts := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			builder.WriteString(pageSeparator)
		}
		pageStarts[i] = builder.Len()
		builder.WriteString(p.Text)
	}

	chunks := c.ChunkText(builder.String())
	for i := range chunks {
		chunks[i].Page = pageForOffset(pages, pageStarts, chunks[i].StartPos)
	}
	return chunks
}

// ChunkText splits content into overlapping chunks, preferring paragraph,
// sentence, and word boundaries over hard cuts. Empty input yields no
// chunks; input no longer than ChunkSize yields exactly one chunk equal
// to the input.
func (c *Chunker) ChunkText(content string) []Chunk {
	if len(content) == 0 {
		return nil
	}

	if len(content) <= c.ChunkSize {
		return []Chunk{
			{
				Content:  content,
				StartPos: 0,
				EndPos:   len(content),
				Index:    0,
			},
		}
	}

	chunks := []Chunk{}
	position := 0
	chunkIndex := 0

	for position < len(content) {
		endPos := position + c.ChunkSize
		if endPos > len(content) {
			endPos = len(content)
		}

		// Prefer a structural boundary near the target end
		if endPos < len(content) {
			endPos = c.findBreakPoint(content, position, endPos)
		}

		chunks = append(chunks, Chunk{
			Content:  content[position:endPos],
			StartPos: position,
			EndPos:   endPos,
			Index:    chunkIndex,
		})
		chunkIndex++

		if endPos == len(content) {
			break
		}

		position = endPos - c.ChunkOverlap
		if position <= chunks[len(chunks)-1].StartPos {
			// Ensure forward progress
			position = chunks[len(chunks)-1].StartPos + 1
		}
	}

	return chunks
}

// findBreakPoint attempts to find a natural break point near the target end position
func (c *Chunker) findBreakPoint(content string, start, targetEnd int) int {
	// Search window: look backwards up to 20% of chunk size
	searchStart := targetEnd - (c.ChunkSize / 5)
	if searchStart < start {
		searchStart = start
	}

	// Priority 1: paragraph break
	if pos := c.findLastOccurrence(content, searchStart, targetEnd, "\n\n"); pos != -1 {
		return pos + 2
	}

	// Priority 2: single newline
	if pos := c.findLastOccurrence(content, searchStart, targetEnd, "\n"); pos != -1 {
		return pos + 1
	}

	// Priority 3: sentence end
	if pos := c.findLastSentenceEnd(content, searchStart, targetEnd); pos != -1 {
		return pos
	}

	// Priority 4: word boundary
	if pos := c.findLastOccurrence(content, searchStart, targetEnd, " "); pos != -1 {
		return pos + 1
	}

	// Priority 5: any whitespace
	for i := targetEnd - 1; i >= searchStart; i-- {
		if unicode.IsSpace(rune(content[i])) {
			return i + 1
		}
	}

	// No good break point found, hard cut
	return targetEnd
}

func (c *Chunker) findLastOccurrence(content string, start, end int, substr string) int {
	lastIdx := strings.LastIndex(content[start:end], substr)
	if lastIdx != -1 {
		return start + lastIdx
	}
	return -1
}

func (c *Chunker) findLastSentenceEnd(content string, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if content[i] == '.' || content[i] == '!' || content[i] == '?' {
			if i+1 < len(content) {
				next := content[i+1]
				if unicode.IsSpace(rune(next)) {
					return i + 1
				}
			} else {
				return i + 1
			}
		}
	}
	return -1
}

// pageForOffset returns the 1-based page number whose text contains offset
func pageForOffset(pages []Page, pageStarts []int, offset int) int {
	page := 0
	for i := range pages {
		if pageStarts[i] > offset {
			break
		}
		page = pages[i].Number
	}
	return page
}
