package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sdo-api/metrics"
	"sdo-api/models"
	"sdo-api/providers"
)

// DocumentSaver ist die Schreibseite des Katalogs.
type DocumentSaver interface {
	SaveDocuments(ctx context.Context, docs []models.Document) (int, error)
}

// IngestService holt Dokumente von den Providern und schreibt sie in den Katalog.
type IngestService struct {
	Store     DocumentSaver
	Providers []providers.Provider
	Logger    *zap.Logger
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(store DocumentSaver, logger *zap.Logger, providers ...providers.Provider) *IngestService {
	return &IngestService{Store: store, Providers: providers, Logger: logger}
}

// Run führt die Suche bei allen Providern aus und speichert die de-duplizierten Treffer.
// Ein fehlschlagender Provider bricht den Lauf nur ab, wenn keiner Ergebnisse liefert.
func (s *IngestService) Run(ctx context.Context, q providers.Query) (int, error) {
	log := s.Logger.With(zap.String("query", q.Q))
	log.Info("Starte Ingestion.")

	seen := make(map[int64]struct{})
	var docs []models.Document
	var errs []error
	for _, p := range s.Providers {
		found, err := p.Search(ctx, q)
		if err != nil {
			log.Error("Provider-Suche fehlgeschlagen", zap.String("provider", p.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		log.Info("Provider hat Ergebnisse geliefert", zap.String("provider", p.Name()), zap.Int("count", len(found)))

		for _, d := range found {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			docs = append(docs, d)
		}
	}
	if len(docs) == 0 && len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	saved, err := s.Store.SaveDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	metrics.IngestedDocuments.Add(float64(saved))
	log.Info("Ingestion abgeschlossen", zap.Int("documents", len(docs)), zap.Int("rows_affected", saved))
	return saved, nil
}
