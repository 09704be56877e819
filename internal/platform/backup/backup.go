// Package backup exports clinic data to a single JSON snapshot and restores
// it. Each entity participates through a Source registered at wiring time,
// so this package stays independent of the domain packages.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is stamped into every snapshot. Import only checks presence
// of the entity arrays, so older snapshots with the same shape restore fine.
const SchemaVersion = "1.0.0"

// Source adapts one entity collection for export and import. List returns
// every record; Import upserts the decoded records and reports how many
// were written.
type Source struct {
	Name   string
	List   func(ctx context.Context) (interface{}, error)
	Import func(ctx context.Context, data json.RawMessage) (int, error)
}

// Manager assembles snapshots from its registered sources.
type Manager struct {
	sources []Source
}

func NewManager(sources ...Source) *Manager {
	return &Manager{sources: sources}
}

// Export serializes every source into one JSON document.
func (m *Manager) Export(ctx context.Context) ([]byte, error) {
	doc := make(map[string]interface{}, len(m.sources)+2)
	doc["schema_version"] = SchemaVersion
	doc["exported_at"] = time.Now().UTC()
	for _, src := range m.sources {
		items, err := src.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", src.Name, err)
		}
		doc[src.Name] = items
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import restores a snapshot. The document must carry an array for every
// registered source or the whole restore is rejected before any write.
// Returns the number of records written per source.
func (m *Manager) Import(ctx context.Context, data []byte) (map[string]int, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}
	for _, src := range m.sources {
		raw, ok := doc[src.Name]
		if !ok {
			return nil, fmt.Errorf("invalid backup: missing %s", src.Name)
		}
		var probe []json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("invalid backup: %s is not an array", src.Name)
		}
	}
	counts := make(map[string]int, len(m.sources))
	for _, src := range m.sources {
		n, err := src.Import(ctx, doc[src.Name])
		if err != nil {
			return counts, fmt.Errorf("importing %s: %w", src.Name, err)
		}
		counts[src.Name] = n
	}
	return counts, nil
}
