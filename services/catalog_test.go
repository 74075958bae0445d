package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sdo-api/apperr"
	"sdo-api/config"
	"sdo-api/mock"
	"sdo-api/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func testConfig() *config.Config {
	return &config.Config{
		ADSGatewayBase:  "https://ui.adsabs.harvard.edu/link_gateway",
		ADSAbsBase:      "https://ui.adsabs.harvard.edu/abs",
		ADSAPIBase:      "https://api.adsabs.harvard.edu/v1",
		PDFMaxBytes:     1 << 20,
		PDFFetchTimeout: 0,
	}
}

func fixtures() []models.Document {
	return []models.Document{
		{ID: 10, Title: "SDO/AIA coronal loops", Abstract: "Loops.", Authors: "Doe, J.", PublicationDate: "2011-03-00", Bibcode: strPtr("2011ApJ...10D"), CitationCount: intPtr(3)},
		{ID: 11, Title: "Sunspot evolution", Abstract: "Magnetograms from SDO/HMI.", Authors: "Roe, R.", PublicationDate: "2012-05-00", DOI: strPtr("10.1000/xyz")},
		{ID: 12, Title: "Flares", Abstract: "an sdo study in lower case", Authors: "Poe, E.", PublicationDate: "2014-01-00", Bibcode: strPtr("2014SoPh..12P")},
		{ID: 13, Title: "Undated note", Abstract: "No date.", Authors: "Moe, M.", PublicationDate: ""},
		{ID: 14, Title: "Malformed date", Abstract: "Bad.", Authors: "Zoe, Z.", PublicationDate: "n.d."},
	}
}

func newCatalogService(docs ...models.Document) *CatalogService {
	return NewCatalogService(testConfig(), mock.NewCatalog(docs...), zap.NewNop())
}

func TestListDocumentsPagination(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	for skip := 0; skip <= 6; skip++ {
		for limit := 1; limit <= 6; limit++ {
			t.Run(fmt.Sprintf("skip=%d,limit=%d", skip, limit), func(t *testing.T) {
				docs, err := svc.ListDocuments(ctx, ListParams{Skip: skip, Limit: limit})
				require.NoError(t, err)
				assert.LessOrEqual(t, len(docs), limit)
				if skip < 5 {
					assert.Equal(t, fixtures()[skip].ID, docs[0].ID)
				} else {
					assert.Empty(t, docs)
				}
			})
		}
	}
}

func TestListDocumentsValidation(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	tests := []struct {
		name   string
		params ListParams
	}{
		{"negative skip", ListParams{Skip: -1, Limit: 10}},
		{"zero limit", ListParams{Limit: 0}},
		{"limit above maximum", ListParams{Limit: config.MaxPageSize + 1}},
		{"unknown sort", ListParams{Limit: 10, Sort: "title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListDocuments(ctx, tt.params)
			assert.True(t, apperr.Is(err, apperr.KindBadRequest), "got %v", err)
		})
	}
}

func TestListDocumentsByYear(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	year := 2012
	docs, err := svc.ListDocuments(ctx, ListParams{Limit: 100, Year: &year})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(11), docs[0].ID)

	zero := 0
	docs, err = svc.ListDocuments(ctx, ListParams{Limit: 100, Year: &zero})
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	none := 1990
	docs, err = svc.ListDocuments(ctx, ListParams{Limit: 100, Year: &none})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestGetDocument(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	first, err := svc.GetDocument(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, first.ADSURL)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/abs/2011ApJ...10D/abstract", *first.ADSURL)

	second, err := svc.GetDocument(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	noBibcode, err := svc.GetDocument(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, noBibcode.ADSURL)

	_, err = svc.GetDocument(ctx, 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetDocumentStorageFailure(t *testing.T) {
	catalog := mock.NewCatalog(fixtures()...)
	catalog.Err = errors.New("connection reset")
	svc := NewCatalogService(testConfig(), catalog, zap.NewNop())

	_, err := svc.GetDocument(context.Background(), 10)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestSearchDocuments(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	docs, err := svc.SearchDocuments(ctx, SearchParams{Query: "SDO", Limit: 100})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.True(t, containsEither(d, "SDO"), "document %d does not contain SDO", d.ID)
	}

	docs, err = svc.SearchDocuments(ctx, SearchParams{Query: "SDO", Skip: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(11), docs[0].ID)

	_, err = svc.SearchDocuments(ctx, SearchParams{Query: "", Limit: 100})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func containsEither(d models.DocumentPublic, s string) bool {
	return strings.Contains(d.Title, s) || strings.Contains(d.Abstract, s)
}

func TestGetADSLinks(t *testing.T) {
	svc := newCatalogService(fixtures()...)
	ctx := context.Background()

	links, err := svc.GetADSLinks(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/abs/2014SoPh..12P/abstract", links.ADSPage)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/link_gateway/2014SoPh..12P/EPRINT_PDF", links.PDFSources.Arxiv)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/link_gateway/2014SoPh..12P/PUB_PDF", links.PDFSources.Publisher)
	assert.Equal(t, "/documents/12/download-pdf", links.Download.Auto)
	assert.Equal(t, "/documents/12/download-pdf/arxiv", links.Download.Arxiv)
	assert.Equal(t, "/documents/12/download-pdf/publisher", links.Download.Publisher)
	assert.Equal(t, "https://api.adsabs.harvard.edu/v1/export/bibtex/2014SoPh..12P", links.CitationExport.BibTeXAPI)
	assert.Equal(t, "https://ui.adsabs.harvard.edu/abs/2014SoPh..12P/similar", links.Related.Similar)

	_, err = svc.GetADSLinks(ctx, 11)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "bibcode")

	_, err = svc.GetADSLinks(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()

	stats, err := newCatalogService().GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalDocuments)
	assert.Nil(t, stats.YearRange)

	stats, err = newCatalogService(fixtures()...).GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalDocuments)
	require.NotNil(t, stats.YearRange)
	assert.Equal(t, models.YearRange{Min: 2011, Max: 2014}, *stats.YearRange)
}

func TestYearRangeOf(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  *models.YearRange
	}{
		{"empty", nil, nil},
		{"only invalid", []string{"", "n.d.", "20", "19x9-01"}, nil},
		{"single", []string{"2010-00-00"}, &models.YearRange{Min: 2010, Max: 2010}},
		{"bare years", []string{"2015", "2010", "2024"}, &models.YearRange{Min: 2010, Max: 2024}},
		{"mixed", []string{"", "2013-04-00", "abcd", "2011"}, &models.YearRange{Min: 2011, Max: 2013}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearRangeOf(tt.dates))
		})
	}
}
