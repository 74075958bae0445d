// Command backup sichert den Dokumentenkatalog als JSONL-Snapshot in einen S3-Bucket.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"sdo-api/config"
	"sdo-api/storage"
)

const backupPrefix = "catalog-"

type BackupConfig struct {
	BackupBucket    string `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint  string `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	BackupAccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey string `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion    string `envconfig:"BACKUP_S3_REGION" required:"true"`
	KeepBackups     int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()
	logging.Info("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	var bcfg BackupConfig
	if err := envconfig.Process("", &bcfg); err != nil {
		logging.Fatal("Fehler beim Laden der Backup-Konfiguration", zap.Error(err))
	}

	ctx := context.Background()

	// 1. Katalog exportieren
	store, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Fehler beim Öffnen des Katalogs", zap.Error(err))
	}
	defer store.Close()

	var buf bytes.Buffer
	count, err := store.ExportJSONL(ctx, &buf)
	if err != nil {
		logging.Fatal("Fehler beim Export des Katalogs", zap.Error(err))
	}

	// 2. Nach S3 hochladen
	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Endpoint:  bcfg.BackupEndpoint,
		Region:    bcfg.BackupRegion,
		AccessKey: bcfg.BackupAccessKey,
		SecretKey: bcfg.BackupSecretKey,
	})
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	key := fmt.Sprintf("%s%s.jsonl.gz", backupPrefix, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := storage.UploadFile(ctx, client, bcfg.BackupEndpoint, bcfg.BackupBucket, key, buf.Bytes())
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.Error(err))
	}
	logging.Info("Backup hochgeladen", zap.String("link", link), zap.Int("documents", count), zap.Int("bytes", buf.Len()))

	// 3. Alte Backups rotieren
	deleted, failed, err := storage.RotateObjects(ctx, client, bcfg.BackupBucket, backupPrefix, bcfg.KeepBackups)
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}
	for _, key := range deleted {
		logging.Info("Altes Backup gelöscht", zap.String("key", key))
	}
	for _, err := range failed {
		logging.Warn("Backup konnte nicht gelöscht werden", zap.Error(err))
	}

	logging.Info("Backup-Prozess erfolgreich abgeschlossen.")
}
