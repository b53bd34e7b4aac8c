package chunker

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile serializes chunks to path as an ordered JSON list of objects with
// keys chunk_id, text, source, and chunk_size. The file is written atomically
// enough for a single-writer pipeline (truncate and rewrite).
func WriteFile(path string, chunks []Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("chunker: marshal chunks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chunker: write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a chunk file previously produced by WriteFile.
func ReadFile(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chunker: read %s: %w", path, err)
	}
	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("chunker: parse %s: %w", path, err)
	}
	return chunks, nil
}
