package providers

import (
	"context"

	"sdo-api/models"
)

// Query beschreibt eine Suche bei einem bibliografischen Dienst.
type Query struct {
	Q           string
	FilterQuery string
	Sort        string
	// MaxRecords begrenzt die Gesamtzahl der Treffer; 0 bedeutet unbegrenzt.
	MaxRecords int
}

// Provider ist das Interface, das jeder Such-Provider (z.B. NASA ADS) implementieren muss.
type Provider interface {
	// Search führt die Suche aus und gibt die Treffer als Katalog-Dokumente zurück.
	Search(ctx context.Context, q Query) ([]models.Document, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "ads").
	Name() string
}
