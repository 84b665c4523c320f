package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_initial_schema.sql", true, 1, "initial_schema"},
		{"0002_seed_categories.sql", true, 2, "seed_categories"},
		{"001_invalid.sql", false, 0, ""},       // wrong number format
		{"0001_test", false, 0, ""},             // missing .sql
		{"0001.sql", false, 0, ""},              // missing name
		{"invalid_0001_test.sql", false, 0, ""}, // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationPattern.FindStringSubmatch(tt.filename)
			if !tt.valid {
				if matches != nil {
					t.Fatalf("%s matched, want no match", tt.filename)
				}
				return
			}
			if matches == nil {
				t.Fatalf("%s did not match", tt.filename)
			}
			version, _ := strconv.Atoi(matches[1])
			if version != tt.version || matches[2] != tt.name {
				t.Errorf("got (%d, %q), want (%d, %q)", version, matches[2], tt.version, tt.name)
			}
		})
	}
}

func TestReadMigrationsSubstitutesAndSorts(t *testing.T) {
	dir := t.TempDir()
	write := func(name, sql string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("0002_second.sql", "SELECT 2 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`")
	write("0001_first.sql", "SELECT 1 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`")
	write("README.md", "not a migration")

	m := &migrator{projectID: "proj", datasetID: "ledger", log: zerolog.Nop()}

	migrations, err := m.readMigrations(dir)
	if err != nil {
		t.Fatalf("readMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("not sorted by version: %+v", migrations)
	}
	if migrations[0].SQL != "SELECT 1 FROM `proj.ledger.t`" {
		t.Errorf("placeholders not substituted: %q", migrations[0].SQL)
	}
	if migrations[0].Checksum == "" || migrations[0].Checksum == migrations[1].Checksum {
		t.Error("checksums missing or not content-derived")
	}
}

func TestReadMigrationsChecksumIgnoresPlaceholderValues(t *testing.T) {
	dir := t.TempDir()
	sql := "SELECT 1 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`"
	if err := os.WriteFile(filepath.Join(dir, "0001_first.sql"), []byte(sql), 0o644); err != nil {
		t.Fatal(err)
	}

	a := &migrator{projectID: "proj-a", datasetID: "ledger", log: zerolog.Nop()}
	b := &migrator{projectID: "proj-b", datasetID: "other", log: zerolog.Nop()}

	ma, err := a.readMigrations(dir)
	if err != nil {
		t.Fatal(err)
	}
	mb, err := b.readMigrations(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ma[0].Checksum != mb[0].Checksum {
		t.Error("checksum should not depend on project/dataset substitution")
	}
}
