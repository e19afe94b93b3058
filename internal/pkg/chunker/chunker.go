// Package chunker splits document text into overlapping pieces sized for embedding.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const paragraphSeparator = "\n\n"

var paragraphSplitter = regexp.MustCompile(`\n\s*\n`)

// Chunker packs paragraphs into chunks of at most size runes. Consecutive chunks
// share up to overlap runes of trailing paragraphs; paragraphs longer than size
// are cut into fixed windows.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split returns the chunks of text in document order; blank text yields none
func (c *Chunker) Split(text string) []string {
	var pieces []string
	for _, p := range paragraphSplitter.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) > c.size {
			pieces = append(pieces, c.window(p)...)
			continue
		}
		pieces = append(pieces, p)
	}

	return c.merge(pieces)
}

func (c *Chunker) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
	)

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)

		if len(current) > 0 && joinedLen(current)+len(paragraphSeparator)+pieceLen > c.size {
			chunks = append(chunks, strings.Join(current, paragraphSeparator))

			// keep a tail no longer than overlap that still leaves room for piece
			for len(current) > 0 {
				tail := joinedLen(current)
				if tail <= c.overlap && tail+len(paragraphSeparator)+pieceLen <= c.size {
					break
				}
				current = current[1:]
			}
		}

		current = append(current, piece)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, paragraphSeparator))
	}

	return chunks
}

// window cuts s into size-rune windows advancing by size-overlap
func (c *Chunker) window(s string) []string {
	runes := []rune(s)
	step := c.size - c.overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+c.size, len(runes))
		if w := strings.TrimSpace(string(runes[start:end])); w != "" {
			out = append(out, w)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func joinedLen(parts []string) int {
	n := 0
	for i, p := range parts {
		if i > 0 {
			n += len(paragraphSeparator)
		}
		n += utf8.RuneCountInString(p)
	}
	return n
}
