package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"sdo-api/config"
	"sdo-api/models"
)

// ErrNotFound wird zurückgegeben, wenn kein Dokument zur ID existiert.
var ErrNotFound = errors.New("document not found")

// Catalog ist die Lesesicht auf den Dokumentenkatalog, die API und PDF-Proxy benötigen.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	Find(ctx context.Context, q Query) ([]models.Document, error)
	CountAll(ctx context.Context) (int64, error)
	AllPublicationDates(ctx context.Context) ([]string, error)
}

// Query beschreibt Filter und Paginierung für Find. Leere Felder filtern nicht.
type Query struct {
	YearPrefix string
	Text       string
	Sort       string
	Offset     int
	Limit      int
}

var sortOrders = map[string]string{
	"id":                "id ASC",
	"-id":               "id DESC",
	"publication_date":  "publication_date ASC, id ASC",
	"-publication_date": "publication_date DESC, id ASC",
	"citation_count":    "COALESCE(citation_count, -1) ASC, id ASC",
	"-citation_count":   "COALESCE(citation_count, -1) DESC, id ASC",
}

// ValidSort meldet, ob s ein erlaubter Sortierschlüssel ist. Leer bedeutet Einfügereihenfolge.
func ValidSort(s string) bool {
	if s == "" {
		return true
	}
	_, ok := sortOrders[s]
	return ok
}

// SortKeys listet die erlaubten Sortierschlüssel.
func SortKeys() []string {
	return []string{"id", "-id", "publication_date", "-publication_date", "citation_count", "-citation_count"}
}

// Store implementiert Catalog auf Basis von GORM.
type Store struct {
	DB *gorm.DB
}

// NewStore kapselt eine bestehende GORM-Verbindung.
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Open verbindet sich je nach DB_DRIVER mit PostgreSQL oder SQLite und migriert das Schema.
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.DBDriver, err)
	}
	log.Info("Successfully connected to catalog database.", zap.String("driver", cfg.DBDriver))

	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return NewStore(db), nil
}

// SQLiteDSN aktiviert case-sensitives LIKE, damit die Suche sich wie unter PostgreSQL verhält.
func SQLiteDSN(path string) string {
	return path + "?_cslike=true&_journal_mode=WAL&_busy_timeout=5000"
}

// GetByID lädt ein Dokument anhand seiner ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	var doc models.Document
	if err := s.DB.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading document %d: %w", id, err)
	}
	return &doc, nil
}

// Find filtert nach Jahrespräfix und Volltext in Titel oder Abstract; Offset/Limit
// greifen nach dem Filtern.
func (s *Store) Find(ctx context.Context, q Query) ([]models.Document, error) {
	order, ok := sortOrders[q.Sort]
	if q.Sort == "" {
		order, ok = sortOrders["id"], true
	}
	if !ok {
		return nil, fmt.Errorf("unknown sort key %q", q.Sort)
	}

	query := s.DB.WithContext(ctx).Model(&models.Document{})
	if q.YearPrefix != "" {
		query = query.Where("publication_date LIKE ? ESCAPE '\\'", escapeLike(q.YearPrefix)+"%")
	}
	if q.Text != "" {
		pattern := "%" + escapeLike(q.Text) + "%"
		query = query.Where("title LIKE ? ESCAPE '\\' OR abstract LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	docs := []models.Document{}
	if err := query.Order(order).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return docs, nil
}

// CountAll zählt alle Dokumente im Katalog.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Document{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// AllPublicationDates liefert das Publikationsdatum jedes Dokuments.
func (s *Store) AllPublicationDates(ctx context.Context) ([]string, error) {
	var dates []string
	if err := s.DB.WithContext(ctx).Model(&models.Document{}).Pluck("publication_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("loading publication dates: %w", err)
	}
	return dates, nil
}

// SaveDocuments schreibt Dokumente per Upsert auf den Primärschlüssel. Nur für den Ingestion-Job.
func (s *Store) SaveDocuments(ctx context.Context, docs []models.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&docs, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("saving documents: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Each ruft fn für jede Charge von Dokumenten in ID-Reihenfolge auf.
func (s *Store) Each(ctx context.Context, batchSize int, fn func([]models.Document) error) error {
	var batch []models.Document
	res := s.DB.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	if res.Error != nil {
		return fmt.Errorf("iterating documents: %w", res.Error)
	}
	return nil
}

// Ping prüft die Datenbankverbindung.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close schließt den Verbindungspool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
