package history

import (
	"encoding/json"
	"fmt"
	"io"
)

// Export writes the persisted list as indented JSON.
func (s *Store) Export(w io.Writer) error {
	entries := s.Load()
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("history: export: %w", err)
	}
	return nil
}

// Import merges entries from an export into the store, deduplicating by URL
// against both the existing list and the import itself. Invalid records are
// skipped. Returns how many entries were added.
func (s *Store) Import(r io.Reader) (int, error) {
	var incoming []Entry
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return 0, fmt.Errorf("history: import decode: %w", err)
	}

	entries := s.Load()
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.URL] = true
	}

	added := 0
	for _, e := range incoming {
		if !e.Valid() || known[e.URL] {
			continue
		}
		known[e.URL] = true
		entries = append(entries, e)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.Save(entries); err != nil {
		return 0, err
	}
	return added, nil
}
