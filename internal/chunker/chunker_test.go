package chunker

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func mustSplitter(t *testing.T, size, overlap int, opts ...Option) *Splitter {
	t.Helper()
	s, err := New(size, overlap, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", size, overlap, err)
	}
	return s
}

func TestNew_ConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 100, 20, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative size", -1, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d): err = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 100, 10)

	for _, input := range []string{"", "   ", "\n\n\t  \n"} {
		if got := s.Split(input, "doc"); len(got) != 0 {
			t.Errorf("Split(%q): want empty sequence, got %d chunks", input, len(got))
		}
	}
}

func TestSplit_SentenceBoundaryScenario(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 20, 5)

	chunks := s.Split("Sentence one. Sentence two. Sentence three.", "doc")

	want := []string{
		"Sentence one.",
		"one. Sentence two.",
		"two. Sentence three.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("want %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk[%d].Text = %q, want %q", i, chunks[i].Text, w)
		}
	}
	// The second chunk starts with the overlapping tail of the first.
	if !strings.HasPrefix(chunks[1].Text, "one.") {
		t.Errorf("chunk[1] should begin with the tail of chunk[0], got %q", chunks[1].Text)
	}
}

func TestSplit_ParagraphsBeforeSentences(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 30, 0)

	chunks := s.Split("First paragraph here.\n\nSecond paragraph here.", "doc")

	if len(chunks) != 2 {
		t.Fatalf("want 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != "First paragraph here." {
		t.Errorf("chunk[0] = %q, want paragraph-bounded text", chunks[0].Text)
	}
	if chunks[1].Text != "Second paragraph here." {
		t.Errorf("chunk[1] = %q, want paragraph-bounded text", chunks[1].Text)
	}
}

func TestSplit_CharacterLevelFallback(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 4, 1)

	chunks := s.Split("abcdefghij", "doc")

	want := []string{"abcd", "defg", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("want %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i].Text, w)
		}
	}
}

func TestSplit_AtomicOverflow(t *testing.T) {
	t.Parallel()
	// Only a word separator available: the long token cannot be reduced
	// below the budget and must be emitted whole.
	s := mustSplitter(t, 5, 1, WithSeparators([]string{" "}))

	chunks := s.Split("aaaaaaaaaa bb", "doc")

	if len(chunks) != 2 {
		t.Fatalf("want 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != "aaaaaaaaaa" {
		t.Errorf("chunk[0] = %q, want over-length token kept whole", chunks[0].Text)
	}
	if chunks[0].ChunkSize <= 5 {
		t.Errorf("chunk[0].ChunkSize = %d, want over-length", chunks[0].ChunkSize)
	}
	if chunks[1].Text != "bb" {
		t.Errorf("chunk[1] = %q, want %q", chunks[1].Text, "bb")
	}
}

func TestSplit_Idempotent(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 40, 8)
	input := "one two three. four five six! seven eight?\nnine ten.\n\neleven twelve thirteen fourteen fifteen."

	first := s.Split(input, "doc")
	second := s.Split(input, "doc")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Split is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSplit_Invariants(t *testing.T) {
	t.Parallel()

	const size, overlap = 50, 10
	s := mustSplitter(t, size, overlap)
	input := "the quick brown fox jumps over the lazy dog. pack my box with five dozen liquor jugs! " +
		"how vexingly quick daft zebras jump?\n\nsphinx of black quartz, judge my vow. " +
		"the five boxing wizards jump quickly."

	chunks := s.Split(input, "corpus.txt")
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	prevStart := -1
	for i, c := range chunks {
		if c.ChunkID != i+1 {
			t.Errorf("chunk[%d].ChunkID = %d, want %d", i, c.ChunkID, i+1)
		}
		if c.Source != "corpus.txt" {
			t.Errorf("chunk[%d].Source = %q", i, c.Source)
		}
		if c.ChunkSize != utf8.RuneCountInString(c.Text) {
			t.Errorf("chunk[%d].ChunkSize = %d, want %d", i, c.ChunkSize, utf8.RuneCountInString(c.Text))
		}
		if c.ChunkSize > size {
			t.Errorf("chunk[%d] exceeds size budget: %d > %d", i, c.ChunkSize, size)
		}
		if c.Text != strings.TrimSpace(c.Text) {
			t.Errorf("chunk[%d] not trimmed: %q", i, c.Text)
		}

		// Every chunk is a contiguous span of the input, and spans appear
		// in order — together these show splitting loses no content.
		start := strings.Index(input, c.Text)
		if start == -1 {
			t.Errorf("chunk[%d] %q is not a substring of the input", i, c.Text)
			continue
		}
		if start <= prevStart {
			t.Errorf("chunk[%d] starts at %d, not after previous chunk at %d", i, start, prevStart)
		}
		prevStart = start
	}

	// The last chunk reaches the end of the input.
	if !strings.HasSuffix(strings.TrimSpace(input), chunks[len(chunks)-1].Text) {
		t.Errorf("last chunk %q does not end the input", chunks[len(chunks)-1].Text)
	}

	// Adjacent chunks share a non-empty overlap of at most `overlap` chars.
	for i := 0; i < len(chunks)-1; i++ {
		if !chunksOverlap(chunks[i].Text, chunks[i+1].Text, overlap) {
			t.Errorf("chunks %d and %d share no overlap:\n%q\n%q", i, i+1, chunks[i].Text, chunks[i+1].Text)
		}
	}
}

// chunksOverlap reports whether some non-empty prefix of next, at most
// overlap runes long, occurs in prev.
func chunksOverlap(prev, next string, overlap int) bool {
	runes := []rune(next)
	max := overlap
	if len(runes) < max {
		max = len(runes)
	}
	for k := max; k >= 1; k-- {
		if strings.Contains(prev, string(runes[:k])) {
			return true
		}
	}
	return false
}

func TestWriteReadFile_RoundTrip(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 25, 5)
	chunks := s.Split("alpha beta gamma. delta epsilon zeta. eta theta iota.", "greek.txt")

	path := filepath.Join(t.TempDir(), "chunks.json")
	if err := WriteFile(path, chunks); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(chunks, got) {
		t.Errorf("round trip mismatch:\nwrote: %+v\nread:  %+v", chunks, got)
	}
}
