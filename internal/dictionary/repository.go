package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const metadataRowID = 1

type entryRow struct {
	Position        int    `db:"position"`
	ISV             string `db:"isv"`
	Addition        string `db:"addition"`
	PartOfSpeech    string `db:"part_of_speech"`
	EntryType       string `db:"entry_type"`
	Translations    string `db:"translations"`
	Intelligibility string `db:"intelligibility"`
	UsingExample    string `db:"using_example"`
}

type metadataRow struct {
	FetchedAt      string `db:"fetched_at"`
	EntryCount     int    `db:"entry_count"`
	SourceIdentity string `db:"source_identity"`
	SchemaVersion  int    `db:"schema_version"`
	Columns        string `db:"columns"`
	SkippedRows    int    `db:"skipped_rows"`
}

// DBStore keeps the dataset in SQL tables. It works with both sqlite3 and mysql drivers.
type DBStore struct {
	db       *sqlx.DB
	location string
}

// NewDBStore creates a DBStore. location is only used for display.
func NewDBStore(db *sqlx.DB, location string) *DBStore {
	return &DBStore{db: db, location: location}
}

func (s *DBStore) Location() string {
	return s.location
}

// Migrate creates the tables if they do not exist.
func (s *DBStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dictionary_entries (
			position INTEGER NOT NULL PRIMARY KEY,
			isv TEXT NOT NULL,
			addition TEXT NOT NULL,
			part_of_speech TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			translations TEXT NOT NULL,
			intelligibility TEXT NOT NULL,
			using_example TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cache_metadata (
			id INTEGER NOT NULL PRIMARY KEY,
			fetched_at VARCHAR(64) NOT NULL,
			entry_count INTEGER NOT NULL,
			source_identity TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			columns TEXT NOT NULL,
			skipped_rows INTEGER NOT NULL
		)`,
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("db.ExecContext(create table) > %w", err)
		}
	}
	return nil
}

func (s *DBStore) Info(ctx context.Context) (Metadata, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT fetched_at, entry_count, source_identity, schema_version, columns, skipped_rows FROM cache_metadata WHERE id = ?",
		metadataRowID)
	if err != nil {
		return Metadata{}, fmt.Errorf("db.QueryxContext(cache_metadata) > %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Metadata{}, fmt.Errorf("rows.Next(cache_metadata) > %w", err)
		}
		return Metadata{}, ErrNotFound
	}
	var row metadataRow
	if err := rows.StructScan(&row); err != nil {
		return Metadata{}, fmt.Errorf("%w: rows.StructScan(cache_metadata) > %v", ErrCorruptCache, err)
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, row.FetchedAt)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: time.Parse(fetched_at) > %v", ErrCorruptCache, err)
	}
	if row.SchemaVersion != SchemaVersion {
		return Metadata{}, fmt.Errorf("%w: schema version %d, want %d", ErrCorruptCache, row.SchemaVersion, SchemaVersion)
	}

	metadata := Metadata{
		FetchedAt:      fetchedAt,
		EntryCount:     row.EntryCount,
		SourceIdentity: row.SourceIdentity,
		SchemaVersion:  row.SchemaVersion,
		SkippedRows:    row.SkippedRows,
	}
	if row.Columns != "" {
		if err := json.Unmarshal([]byte(row.Columns), &metadata.Columns); err != nil {
			return Metadata{}, fmt.Errorf("%w: json.Unmarshal(columns) > %v", ErrCorruptCache, err)
		}
	}
	return metadata, nil
}

func (s *DBStore) Load(ctx context.Context) (Dataset, Metadata, error) {
	metadata, err := s.Info(ctx)
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT position, isv, addition, part_of_speech, entry_type, translations, intelligibility, using_example FROM dictionary_entries ORDER BY position",
	)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("db.QueryxContext(dictionary_entries) > %w", err)
	}
	defer rows.Close()

	dataset := make(Dataset, 0, metadata.EntryCount)
	for rows.Next() {
		var row entryRow
		if err := rows.StructScan(&row); err != nil {
			return nil, Metadata{}, fmt.Errorf("%w: rows.StructScan(dictionary_entries) > %v", ErrCorruptCache, err)
		}
		if row.ISV == "" {
			return nil, Metadata{}, fmt.Errorf("%w: entry %d has no isv headword", ErrCorruptCache, row.Position)
		}
		entry := Entry{
			ISV:             row.ISV,
			Addition:        row.Addition,
			PartOfSpeech:    row.PartOfSpeech,
			Type:            row.EntryType,
			Intelligibility: row.Intelligibility,
			UsingExample:    row.UsingExample,
		}
		if row.Translations != "" {
			if err := json.Unmarshal([]byte(row.Translations), &entry.Translations); err != nil {
				return nil, Metadata{}, fmt.Errorf("%w: json.Unmarshal(translations of %s) > %v", ErrCorruptCache, row.ISV, err)
			}
		}
		dataset = append(dataset, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, fmt.Errorf("rows.Next(dictionary_entries) > %w", err)
	}
	if len(dataset) != metadata.EntryCount {
		return nil, Metadata{}, fmt.Errorf("%w: metadata reports %d entries but %d are stored",
			ErrCorruptCache, metadata.EntryCount, len(dataset))
	}
	return dataset, metadata, nil
}

// Save replaces the stored dataset inside one transaction.
func (s *DBStore) Save(ctx context.Context, dataset Dataset, metadata Metadata) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx > %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM dictionary_entries"); err != nil {
		return fmt.Errorf("tx.ExecContext(delete dictionary_entries) > %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM cache_metadata"); err != nil {
		return fmt.Errorf("tx.ExecContext(delete cache_metadata) > %w", err)
	}

	for i, entry := range dataset {
		translations := ""
		if len(entry.Translations) > 0 {
			encoded, marshalErr := json.Marshal(entry.Translations)
			if marshalErr != nil {
				err = fmt.Errorf("json.Marshal(translations of %s) > %w", entry.ISV, marshalErr)
				return err
			}
			translations = string(encoded)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO dictionary_entries (position, isv, addition, part_of_speech, entry_type, translations, intelligibility, using_example)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, entry.ISV, entry.Addition, entry.PartOfSpeech, entry.Type, translations, entry.Intelligibility, entry.UsingExample,
		); err != nil {
			return fmt.Errorf("tx.ExecContext(insert dictionary_entry %s) > %w", entry.ISV, err)
		}
	}

	columns := ""
	if len(metadata.Columns) > 0 {
		encoded, marshalErr := json.Marshal(metadata.Columns)
		if marshalErr != nil {
			err = fmt.Errorf("json.Marshal(columns) > %w", marshalErr)
			return err
		}
		columns = string(encoded)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO cache_metadata (id, fetched_at, entry_count, source_identity, schema_version, columns, skipped_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadataRowID,
		metadata.FetchedAt.UTC().Format(time.RFC3339Nano),
		len(dataset),
		metadata.SourceIdentity,
		SchemaVersion,
		columns,
		metadata.SkippedRows,
	); err != nil {
		return fmt.Errorf("tx.ExecContext(insert cache_metadata) > %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit > %w", err)
	}
	return nil
}

func (s *DBStore) Clear(ctx context.Context) error {
	for _, table := range []string{"dictionary_entries", "cache_metadata"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("db.ExecContext(delete %s) > %w", table, err)
		}
	}
	return nil
}
