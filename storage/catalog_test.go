package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sdo-api/config"
	"sdo-api/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "catalog.db"),
	}
	store, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	docs := []models.Document{
		{ID: 1, Title: "SDO/AIA observations of coronal loops", Abstract: "We study loops.", Authors: "Doe, J.", PublicationDate: "2011-03-00", Bibcode: strPtr("2011ApJ...1A"), CitationCount: intPtr(12)},
		{ID: 2, Title: "Helioseismology results", Abstract: "Data from SDO/HMI are used.", Authors: "Roe, R.", PublicationDate: "2012-01-00", CitationCount: intPtr(40)},
		{ID: 3, Title: "Flare statistics", Abstract: "sdo lowercase mention only.", Authors: "Poe, E.", PublicationDate: "2012-07-00"},
		{ID: 4, Title: "100% duty cycle", Abstract: "Instrument_uptime report.", Authors: "Moe, M.", PublicationDate: ""},
	}
	n, err := store.SaveDocuments(context.Background(), docs)
	require.NoError(t, err)
	require.Equal(t, len(docs), n)
}

func ids(docs []models.Document) []int64 {
	out := make([]int64, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestGetByID(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	doc, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "SDO/AIA observations of coronal loops", doc.Title)
	require.NotNil(t, doc.Bibcode)
	assert.Equal(t, "2011ApJ...1A", *doc.Bibcode)
	assert.Nil(t, doc.DOI)

	_, err = store.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFilters(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"no filter keeps insertion order", Query{}, []int64{1, 2, 3, 4}},
		{"year prefix", Query{YearPrefix: "2012"}, []int64{2, 3}},
		{"text matches title or abstract", Query{Text: "SDO"}, []int64{1, 2}},
		{"text search is case sensitive", Query{Text: "sdo"}, []int64{3}},
		{"year and text combined", Query{YearPrefix: "2012", Text: "SDO"}, []int64{2}},
		{"offset and limit after filtering", Query{Offset: 1, Limit: 2}, []int64{2, 3}},
		{"percent is literal", Query{Text: "100%"}, []int64{4}},
		{"underscore is literal", Query{Text: "t_u"}, []int64{4}},
		{"sort by citations descending", Query{Sort: "-citation_count"}, []int64{2, 1, 3, 4}},
		{"no match", Query{YearPrefix: "1999"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.Find(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(docs))
		})
	}
}

func TestFindRejectsUnknownSort(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Find(context.Background(), Query{Sort: "title; DROP TABLE"})
	assert.Error(t, err)
	assert.False(t, ValidSort("title"))
	assert.True(t, ValidSort(""))
}

func TestCountAndDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	seed(t, store)

	n, err = store.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	dates, err := store.AllPublicationDates(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2011-03-00", "2012-01-00", "2012-07-00", ""}, dates)
}

func TestSaveDocumentsUpserts(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	_, err := store.SaveDocuments(ctx, []models.Document{
		{ID: 2, Title: "Helioseismology results (revised)", Abstract: "Data from SDO/HMI are used.", Authors: "Roe, R.", PublicationDate: "2012-01-00", CitationCount: intPtr(41)},
	})
	require.NoError(t, err)

	doc, err := store.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Helioseismology results (revised)", doc.Title)
	assert.Equal(t, 41, *doc.CitationCount)

	n, err := store.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestEachVisitsAllDocuments(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	var seen []int64
	err := store.Each(context.Background(), 3, func(batch []models.Document) error {
		seen = append(seen, ids(batch)...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, seen)
}
