// Command migrate applies the SQL files under migrations/bigquery to a
// BigQuery dataset, tracking what ran in a schema_migrations table.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"homeledger/internal/logger"
)

type migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  int
	Name     string
	Checksum string
}

var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	var (
		projectID     = flag.String("project", "", "GCP project ID (required)")
		datasetID     = flag.String("dataset", "homeledger", "BigQuery dataset ID")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name recorded against applied migrations")
		migrationsDir = flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
	)
	flag.Parse()

	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("-project flag is required")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	m := &migrator{
		client:    client,
		projectID: *projectID,
		datasetID: *datasetID,
		appliedBy: *appliedBy,
		log:       log,
	}

	if err := m.run(ctx, *migrationsDir); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

type migrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	appliedBy string
	log       zerolog.Logger
}

func (m *migrator) run(ctx context.Context, dir string) error {
	if err := m.ensureSchemaMigrationsTable(ctx); err != nil {
		return fmt.Errorf("run: ensuring schema_migrations: %w", err)
	}

	migrations, err := m.readMigrations(dir)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	m.log.Info().Int("files", len(migrations)).Msg("Loaded migration files")

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	appliedByVersion := make(map[int]appliedMigration, len(applied))
	for _, a := range applied {
		appliedByVersion[a.Version] = a
	}

	count := 0
	for _, mig := range migrations {
		if prev, ok := appliedByVersion[mig.Version]; ok {
			if prev.Checksum != "" && prev.Checksum != mig.Checksum {
				return fmt.Errorf("run: migration %04d_%s changed after being applied", mig.Version, mig.Name)
			}
			m.log.Debug().Int("version", mig.Version).Str("name", mig.Name).Msg("Already applied, skipping")
			continue
		}

		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("Applying migration")
		if err := m.execute(ctx, mig); err != nil {
			return fmt.Errorf("run: applying %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if err := m.record(ctx, mig); err != nil {
			return fmt.Errorf("run: recording %04d_%s: %w", mig.Version, mig.Name, err)
		}
		count++
	}

	if count == 0 {
		m.log.Info().Msg("No new migrations, dataset is up to date")
	} else {
		m.log.Info().Int("applied", count).Msg("Migrations applied")
	}
	return nil
}

// readMigrations loads NNNN_name.sql files, substituting the project and
// dataset placeholders. Checksums are taken over the raw file content so the
// same logical migration matches across environments.
func (m *migrator) readMigrations(dir string) ([]migration, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Allow running from within cmd/migrate.
		dir = filepath.Join("..", "..", dir)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("migrations directory not found: %s", dir)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationPattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			m.log.Warn().Str("file", entry.Name()).Msg("Skipping file that does not match NNNN_name.sql")
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("parsing version from %s: %w", entry.Name(), err)
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		sql := string(content)
		sql = strings.ReplaceAll(sql, "{{PROJECT_ID}}", m.projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", m.datasetID)

		migrations = append(migrations, migration{
			Version:  version,
			Name:     matches[2],
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *migrator) ensureSchemaMigrationsTable(ctx context.Context) error {
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s.%s.schema_migrations` ("+
		"version INT64 NOT NULL, "+
		"name STRING NOT NULL, "+
		"applied_at TIMESTAMP NOT NULL, "+
		"checksum STRING, "+
		"applied_by STRING)",
		m.projectID, m.datasetID)
	return m.runQuery(ctx, m.client.Query(sql))
}

func (m *migrator) appliedMigrations(ctx context.Context) ([]appliedMigration, error) {
	sql := fmt.Sprintf("SELECT version, name, checksum FROM `%s.%s.schema_migrations` ORDER BY version",
		m.projectID, m.datasetID)

	it, err := m.client.Query(sql).Read(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []appliedMigration
	for {
		var row struct {
			Version  int64
			Name     string
			Checksum bigquery.NullString
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating applied migrations: %w", err)
		}
		applied = append(applied, appliedMigration{
			Version:  int(row.Version),
			Name:     row.Name,
			Checksum: row.Checksum.StringVal,
		})
	}
	return applied, nil
}

func (m *migrator) execute(ctx context.Context, mig migration) error {
	return m.runQuery(ctx, m.client.Query(mig.SQL))
}

func (m *migrator) record(ctx context.Context, mig migration) error {
	sql := fmt.Sprintf("INSERT INTO `%s.%s.schema_migrations` (version, name, applied_at, checksum, applied_by) "+
		"VALUES (@version, @name, @applied_at, @checksum, @applied_by)",
		m.projectID, m.datasetID)

	q := m.client.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: mig.Version},
		{Name: "name", Value: mig.Name},
		{Name: "applied_at", Value: time.Now().UTC()},
		{Name: "checksum", Value: mig.Checksum},
		{Name: "applied_by", Value: m.appliedBy},
	}
	return m.runQuery(ctx, q)
}

func (m *migrator) runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
