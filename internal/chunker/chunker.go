// Package chunker splits normalized document text into an ordered sequence
// of overlapping, boundary-aware chunks. The splitter tries the most
// structurally significant separator first (paragraph break) and falls back
// through line breaks, sentence endings, and word boundaries down to
// character-level packing, so a chunk ends at the most meaningful boundary
// that still fits the size budget.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the prioritized separator hierarchy, ordered from most
// to least structurally significant. The empty string is the character-level
// last resort. Separators stay attached to the piece they terminate.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// Chunk is a single unit of retrievable text. ChunkID is 1-based and assigned
// in final emission order; ChunkSize is the character (rune) length of Text
// after trimming, so ChunkSize == utf8.RuneCountInString(Text) always holds.
type Chunk struct {
	ChunkID   int    `json:"chunk_id"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	ChunkSize int    `json:"chunk_size"`
}

// Splitter produces overlapping chunks from text. Construct with New; the
// zero value is not usable.
type Splitter struct {
	// chunkSize is the maximum chunk length in characters (runes).
	chunkSize int
	// overlap is the number of trailing characters of a closed chunk that
	// seed the next chunk.
	overlap int
	// separators is the prioritized separator list.
	separators []string
}

// Option customises a Splitter.
type Option func(*Splitter)

// WithSeparators overrides the default separator hierarchy. An empty string
// entry enables character-level fallback; without one, pieces that cannot be
// split below chunkSize are emitted as over-length atomic chunks.
func WithSeparators(seps []string) Option {
	return func(s *Splitter) { s.separators = seps }
}

// New constructs a Splitter. chunkSize must be positive and overlap must be
// non-negative and strictly smaller than chunkSize; anything else is a
// configuration error.
func New(chunkSize, overlap int, opts ...Option) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, chunk size %d)", overlap, chunkSize)
	}
	s := &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split divides text into chunks tagged with source. Re-running Split on
// identical input yields an identical sequence. Empty or whitespace-only
// input yields an empty sequence, not an error.
func (s *Splitter) Split(text, source string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := s.splitPieces(text, s.separators)
	packed := s.pack(pieces)

	chunks := make([]Chunk, 0, len(packed))
	for _, c := range packed {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			ChunkID:   len(chunks) + 1,
			Text:      trimmed,
			Source:    source,
			ChunkSize: utf8.RuneCountInString(trimmed),
		})
	}
	return chunks
}

// splitPieces recursively cuts text into pieces no longer than chunkSize,
// trying each separator in priority order. A piece that no remaining
// separator can reduce is returned as-is (atomic overflow).
func (s *Splitter) splitPieces(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	// Pick the highest-priority separator present in the text. The empty
	// string always matches.
	idx := -1
	for i, sep := range seps {
		if sep == "" || strings.Contains(text, sep) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return []string{text}
	}

	parts := cutKeepSeparator(text, seps[idx])
	rest := seps[idx+1:]

	var out []string
	for _, p := range parts {
		if utf8.RuneCountInString(p) > s.chunkSize {
			out = append(out, s.splitPieces(p, rest)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// cutKeepSeparator splits text on sep, keeping the separator attached to the
// preceding piece so concatenating the pieces reconstructs text exactly.
// An empty separator yields one piece per rune.
func cutKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, sep)
	// SplitAfter leaves a trailing empty piece when text ends with sep.
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pack greedily accumulates pieces into chunks of at most chunkSize
// characters. When a chunk closes, the next one is seeded with the last
// overlap characters of its content, shrunk if needed so the next piece
// still fits. A single piece longer than chunkSize is emitted whole.
func (s *Splitter) pack(pieces []string) []string {
	var chunks []string
	var buf []rune
	seedLen := 0 // leading runes of buf carried over from the previous chunk

	for _, piece := range pieces {
		pr := []rune(piece)

		if len(buf) > 0 && len(buf)+len(pr) > s.chunkSize {
			if len(buf) > seedLen {
				chunks = append(chunks, string(buf))
				buf = overlapTail(buf, s.overlap, s.chunkSize-len(pr))
				seedLen = len(buf)
			} else {
				// Seed-only buffer: never emit pure overlap, just shrink it.
				buf = overlapTail(buf, len(buf), s.chunkSize-len(pr))
				seedLen = len(buf)
			}
		}

		if len(buf) == 0 && len(pr) > s.chunkSize {
			// Atomic overflow: emit whole rather than truncate or drop.
			chunks = append(chunks, string(pr))
			buf = overlapTail(pr, s.overlap, s.overlap)
			seedLen = len(buf)
			continue
		}

		buf = append(buf, pr...)
	}

	if len(buf) > seedLen {
		chunks = append(chunks, string(buf))
	}
	return chunks
}

// overlapTail returns a copy of the last min(overlap, room, len(src)) runes
// of src, or nil when no overlap fits.
func overlapTail(src []rune, overlap, room int) []rune {
	k := overlap
	if room < k {
		k = room
	}
	if len(src) < k {
		k = len(src)
	}
	if k <= 0 {
		return nil
	}
	tail := make([]rune, k)
	copy(tail, src[len(src)-k:])
	return tail
}
