// Package mock stellt einen In-Memory-Katalog für Tests bereit.
package mock

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"sdo-api/models"
	"sdo-api/storage"
)

// Catalog implementiert storage.Catalog im Speicher. Err wird, falls gesetzt,
// von jeder Methode zurückgegeben.
type Catalog struct {
	mu   sync.RWMutex
	docs []models.Document

	Err error
}

var _ storage.Catalog = (*Catalog)(nil)

// NewCatalog legt einen Katalog mit den gegebenen Dokumenten in Einfügereihenfolge an.
func NewCatalog(docs ...models.Document) *Catalog {
	return &Catalog{docs: append([]models.Document(nil), docs...)}
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (c *Catalog) Find(ctx context.Context, q storage.Query) ([]models.Document, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := []models.Document{}
	for _, d := range c.docs {
		if q.YearPrefix != "" && !strings.HasPrefix(d.PublicationDate, q.YearPrefix) {
			continue
		}
		if q.Text != "" && !strings.Contains(d.Title, q.Text) && !strings.Contains(d.Abstract, q.Text) {
			continue
		}
		matched = append(matched, d)
	}

	switch q.Sort {
	case "", "id":
	case "-id":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	case "publication_date":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].PublicationDate < matched[j].PublicationDate })
	case "-publication_date":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].PublicationDate > matched[j].PublicationDate })
	case "citation_count":
		sort.SliceStable(matched, func(i, j int) bool { return citations(matched[i]) < citations(matched[j]) })
	case "-citation_count":
		sort.SliceStable(matched, func(i, j int) bool { return citations(matched[i]) > citations(matched[j]) })
	default:
		return nil, errors.New("unknown sort key")
	}

	if q.Offset >= len(matched) {
		return []models.Document{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (c *Catalog) CountAll(ctx context.Context) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (c *Catalog) AllPublicationDates(ctx context.Context) ([]string, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	dates := make([]string, 0, len(c.docs))
	for _, d := range c.docs {
		dates = append(dates, d.PublicationDate)
	}
	return dates, nil
}

func citations(d models.Document) int {
	if d.CitationCount == nil {
		return -1
	}
	return *d.CitationCount
}
