package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sdo-api/apperr"
	"sdo-api/config"
	"sdo-api/models"
	"sdo-api/storage"
)

// ListParams steuert ListDocuments. Year nil oder 0 filtert nicht.
type ListParams struct {
	Skip  int
	Limit int
	Year  *int
	Sort  string
}

// SearchParams steuert SearchDocuments.
type SearchParams struct {
	Query string
	Skip  int
	Limit int
	Sort  string
}

// CatalogService beantwortet alle lesenden Katalog-Anfragen.
type CatalogService struct {
	Catalog storage.Catalog
	Links   LinkBases
	Logger  *zap.Logger
}

// NewCatalogService erstellt eine neue Instanz des CatalogService.
func NewCatalogService(cfg *config.Config, catalog storage.Catalog, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		Catalog: catalog,
		Links: LinkBases{
			Gateway:  cfg.ADSGatewayBase,
			Abstract: cfg.ADSAbsBase,
			API:      cfg.ADSAPIBase,
		},
		Logger: logger,
	}
}

// ListDocuments liefert eine Seite von Dokumenten, optional nach Jahr gefiltert.
func (s *CatalogService) ListDocuments(ctx context.Context, p ListParams) ([]models.DocumentPublic, error) {
	q := storage.Query{Offset: p.Skip, Limit: p.Limit, Sort: p.Sort}
	if p.Year != nil && *p.Year != 0 {
		q.YearPrefix = strconv.Itoa(*p.Year)
	}
	return s.find(ctx, q)
}

// SearchDocuments sucht einen Teilstring in Titel oder Abstract.
func (s *CatalogService) SearchDocuments(ctx context.Context, p SearchParams) ([]models.DocumentPublic, error) {
	if p.Query == "" {
		return nil, apperr.BadRequest("query parameter q is required")
	}
	return s.find(ctx, storage.Query{Text: p.Query, Offset: p.Skip, Limit: p.Limit, Sort: p.Sort})
}

func (s *CatalogService) find(ctx context.Context, q storage.Query) ([]models.DocumentPublic, error) {
	if q.Offset < 0 {
		return nil, apperr.BadRequest("skip must be greater than or equal to 0")
	}
	if q.Limit < 1 || q.Limit > config.MaxPageSize {
		return nil, apperr.BadRequest(fmt.Sprintf("limit must be between 1 and %d", config.MaxPageSize))
	}
	if !storage.ValidSort(q.Sort) {
		return nil, apperr.BadRequest(fmt.Sprintf("unsupported sort %q (allowed: %s)", q.Sort, strings.Join(storage.SortKeys(), ", ")))
	}

	docs, err := s.Catalog.Find(ctx, q)
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return models.ToPublicList(docs, s.Links.Abstract), nil
}

// GetDocument lädt ein einzelnes Dokument in öffentlicher Sicht.
func (s *CatalogService) GetDocument(ctx context.Context, id int64) (models.DocumentPublic, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return models.DocumentPublic{}, err
	}
	return models.ToPublic(*doc, s.Links.Abstract), nil
}

// GetADSLinks liefert alle abgeleiteten Links; ohne Bibcode gibt es keine.
func (s *CatalogService) GetADSLinks(ctx context.Context, id int64) (models.ADSLinks, error) {
	doc, err := s.LoadWithBibcode(ctx, id)
	if err != nil {
		return models.ADSLinks{}, err
	}
	return BuildADSLinks(s.Links, doc.ID, *doc.Bibcode), nil
}

// LoadWithBibcode lädt ein Dokument und verlangt einen Bibcode.
func (s *CatalogService) LoadWithBibcode(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasBibcode() {
		return nil, apperr.NotFound("No bibcode available for this document")
	}
	return doc, nil
}

func (s *CatalogService) load(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.Catalog.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Document not found")
	}
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return doc, nil
}

// GetStats zählt die Dokumente und bestimmt die Spanne der Publikationsjahre.
func (s *CatalogService) GetStats(ctx context.Context) (models.Stats, error) {
	total, err := s.Catalog.CountAll(ctx)
	if err != nil {
		return models.Stats{}, apperr.Internal("database error", err)
	}
	dates, err := s.Catalog.AllPublicationDates(ctx)
	if err != nil {
		return models.Stats{}, apperr.Internal("database error", err)
	}
	return models.Stats{TotalDocuments: total, YearRange: YearRangeOf(dates)}, nil
}

// YearRangeOf wertet die ersten vier Zeichen jedes Datums als Jahr aus.
// Leere Daten und Präfixe, die keine vierstellige Zahl sind, werden übersprungen.
func YearRangeOf(dates []string) *models.YearRange {
	var yr *models.YearRange
	for _, d := range dates {
		year, ok := leadingYear(d)
		if !ok {
			continue
		}
		if yr == nil {
			yr = &models.YearRange{Min: year, Max: year}
			continue
		}
		yr.Min = min(yr.Min, year)
		yr.Max = max(yr.Max, year)
	}
	return yr
}

func leadingYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0, false
		}
		year = year*10 + int(c-'0')
	}
	return year, true
}
