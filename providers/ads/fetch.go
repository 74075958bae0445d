package ads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sdo-api/config"
	"sdo-api/models"
	"sdo-api/providers"
)

const DefaultRows = 2000

// ErrMissingAPIKey wird zurückgegeben, wenn NASA_ADS_API_KEY nicht gesetzt ist.
var ErrMissingAPIKey = errors.New("NASA_ADS_API_KEY is not set")

// Fetcher implementiert das Provider-Interface für die NASA ADS Search API.
type Fetcher struct {
	BaseURL string
	APIKey  string
	Rows    int
	Client  *http.Client
	Logger  *zap.Logger
}

// NewFetcher erstellt einen neuen ADS Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(cfg.ADSAPIBase, "/"),
		APIKey:  cfg.ADSAPIKey,
		Rows:    DefaultRows,
		Client:  &http.Client{Timeout: 60 * time.Second},
		Logger:  logger,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "ads"
}

var _ providers.Provider = (*Fetcher)(nil)

// Search blättert mit start/rows durch die Treffer, bis alle geladen sind
// oder q.MaxRecords erreicht ist.
func (f *Fetcher) Search(ctx context.Context, q providers.Query) ([]models.Document, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	log := f.Logger.With(zap.String("query", q.Q))
	log.Info("Starte Suche auf NASA ADS.")

	rows := f.Rows
	if rows <= 0 {
		rows = DefaultRows
	}

	docs := []models.Document{}
	skipped := 0
	for start := 0; ; {
		want := rows
		if q.MaxRecords > 0 && q.MaxRecords-len(docs) < want {
			want = q.MaxRecords - len(docs)
		}
		if want <= 0 {
			break
		}

		page, err := f.fetchPage(ctx, q, start, want)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Response.Docs {
			doc, ok := mapRecordToModel(rec)
			if !ok {
				skipped++
				continue
			}
			docs = append(docs, doc)
		}

		start += len(page.Response.Docs)
		if len(page.Response.Docs) < want || start >= page.Response.NumFound {
			break
		}
	}

	if skipped > 0 {
		log.Warn("Treffer ohne numerische ID übersprungen", zap.Int("skipped", skipped))
	}
	log.Info("Suche auf NASA ADS abgeschlossen", zap.Int("found_documents", len(docs)))
	return docs, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, q providers.Query, start, rows int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", q.Q)
	if q.FilterQuery != "" {
		params.Set("fq", q.FilterQuery)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	params.Set("fl", strings.Join(Fields, ","))
	params.Set("rows", strconv.Itoa(rows))
	params.Set("start", strconv.Itoa(start))

	searchURL := f.BaseURL + "/search/query?" + params.Encode()
	f.Logger.Debug("Rufe ADS API auf", zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ads search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ads search returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding ads response: %w", err)
	}
	return &page, nil
}

// mapRecordToModel konvertiert einen ADS-Treffer in ein Katalog-Dokument.
// Treffer ohne ganzzahlige ID werden verworfen.
func mapRecordToModel(rec Record) (models.Document, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(rec.ID), 10, 64)
	if err != nil {
		return models.Document{}, false
	}

	doc := models.Document{
		ID:              id,
		Title:           first(rec.Title),
		Abstract:        rec.Abstract,
		Authors:         strings.Join(rec.Author, ", "),
		PublicationDate: rec.PubDate,
		CitationCount:   rec.CitationCount,
	}
	if doc.PublicationDate == "" {
		doc.PublicationDate = rec.Year
	}
	if doi := first(rec.DOI); doi != "" {
		doc.DOI = &doi
	}
	if rec.Bibcode != "" {
		bibcode := rec.Bibcode
		doc.Bibcode = &bibcode
	}
	return doc, true
}
