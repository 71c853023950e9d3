// Package chunker splits extracted text into overlapping, boundary-aware
// spans sized to fit comfortably within an embedding model's token window.
// It generalizes a simple fixed-window chunker (no boundary search, no
// overlap snapping) into a full break-point-preference algorithm.
package chunker

import (
	"regexp"
	"strings"
)

// Options bounds the chunking pass. All sizes are in characters.
type Options struct {
	ChunkSize    int // default 1500
	ChunkOverlap int // default 200
	MinChunkSize int // default 100
}

// DefaultOptions returns the standard chunk size, overlap, and minimum size.
func DefaultOptions() Options {
	return Options{ChunkSize: 1500, ChunkOverlap: 200, MinChunkSize: 100}
}

func (o Options) resolve() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1500
	}
	if o.ChunkOverlap <= 0 {
		o.ChunkOverlap = 200
	}
	if o.MinChunkSize <= 0 {
		o.MinChunkSize = 100
	}
	return o
}

// TextChunk is a bounded span of extracted text.
type TextChunk struct {
	Index       int
	Text        string
	StartOffset int
	EndOffset   int
}

// sentenceEnd matches sentence punctuation, its trailing whitespace, and the
// capital letter that opens the next sentence. Go's regexp has no lookahead,
// so the capital is consumed and callers break one byte before the match end.
var sentenceEnd = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// Chunk splits text using a boundary-aware algorithm: a tentative
// window end, a break-point search inside the trailing 30% of the window
// preferring paragraph > line > sentence > period-space > word boundary,
// emission gated on a minimum trimmed length, and overlap-adjusted
// advancement snapped to the next natural break within 100 characters.
func Chunk(text string, opts Options) []TextChunk {
	opts = opts.resolve()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	length := len(text)
	if len(trimmed) < opts.MinChunkSize {
		return []TextChunk{{Index: 0, Text: trimmed, StartOffset: 0, EndOffset: length}}
	}

	var chunks []TextChunk
	cursor := 0

	for cursor < length {
		tentativeEnd := cursor + opts.ChunkSize
		if tentativeEnd > length {
			tentativeEnd = length
		}

		endPosition := tentativeEnd
		if tentativeEnd < length {
			windowStart := tentativeEnd - int(0.3*float64(opts.ChunkSize))
			if windowStart < cursor {
				windowStart = cursor
			}
			if bp, ok := findBreakPoint(text, windowStart, tentativeEnd); ok {
				endPosition = bp
			}
		}

		chunkText := text[cursor:endPosition]
		if trimmedLen := len(strings.TrimSpace(chunkText)); trimmedLen >= opts.MinChunkSize {
			chunks = append(chunks, TextChunk{
				Index:       len(chunks),
				Text:        strings.TrimSpace(chunkText),
				StartOffset: cursor,
				EndOffset:   endPosition,
			})
		}

		if endPosition >= length {
			break
		}

		nextCursor := endPosition - opts.ChunkOverlap
		if nextCursor < cursor+1 {
			nextCursor = cursor + 1
		}
		cursor = snapForward(text, nextCursor, length)
	}

	return chunks
}

// findBreakPoint searches [windowStart, windowEnd] for the best break point,
// preferring in order: paragraph break, line break, sentence end, period+
// space, word boundary. Returns the position immediately after the matched
// separator, or false if nothing in the window qualifies.
func findBreakPoint(text string, windowStart, windowEnd int) (int, bool) {
	if windowStart >= windowEnd || windowStart < 0 || windowEnd > len(text) {
		return 0, false
	}
	window := text[windowStart:windowEnd]

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return windowStart + idx + 2, true
	}
	if idx := strings.LastIndex(window, "\n"); idx >= 0 {
		return windowStart + idx + 1, true
	}
	if loc := lastMatch(sentenceEnd, window); loc != nil {
		return windowStart + loc[1] - 1, true
	}
	if idx := strings.LastIndex(window, ". "); idx >= 0 {
		return windowStart + idx + 2, true
	}
	if idx := strings.LastIndex(window, " "); idx >= 0 {
		return windowStart + idx + 1, true
	}
	return 0, false
}

// lastMatch returns the last regexp match location in s, or nil if none.
func lastMatch(re *regexp.Regexp, s string) []int {
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1]
}

// snapForward looks within the next 100 characters after cursor for the
// nearest sentence/paragraph/line start, advancing cursor to that point
// when one is found; otherwise cursor is left unchanged.
func snapForward(text string, cursor, length int) int {
	limit := cursor + 100
	if limit > length {
		limit = length
	}
	if cursor >= limit {
		return cursor
	}
	window := text[cursor:limit]

	if idx := strings.Index(window, "\n\n"); idx >= 0 {
		return cursor + idx + 2
	}
	if idx := strings.Index(window, "\n"); idx >= 0 {
		return cursor + idx + 1
	}
	if loc := sentenceEnd.FindStringIndex(window); loc != nil {
		return cursor + loc[1] - 1
	}
	return cursor
}

// EstimateTokens approximates token count for logging/metrics, ceil(len/4).
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
