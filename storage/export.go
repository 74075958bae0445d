package storage

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"sdo-api/models"
)

const exportBatchSize = 500

// ExportJSONL schreibt alle Dokumente als gzip-komprimierte JSON-Zeilen nach w
// und gibt die Anzahl der geschriebenen Dokumente zurück.
func (s *Store) ExportJSONL(ctx context.Context, w io.Writer) (int, error) {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)

	count := 0
	err := s.Each(ctx, exportBatchSize, func(batch []models.Document) error {
		for i := range batch {
			if err := enc.Encode(&batch[i]); err != nil {
				return fmt.Errorf("encoding document %d: %w", batch[i].ID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		_ = gz.Close()
		return 0, err
	}
	if err := gz.Close(); err != nil {
		return 0, err
	}
	return count, nil
}
