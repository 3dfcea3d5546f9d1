package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps brands, prompts, runs and mention records in a SQLite
// database (modernc.org/sqlite, no CGo)
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Ensure SQLiteStore implements RecordStore
var _ RecordStore = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at dbPath and runs migrations
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared across queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// Import upserts every entity of ds in one transaction. Brands are checked
// with ValidateImport against the stored ones first; a rejected import
// writes nothing.
func (s *SQLiteStore) Import(ds *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	existing, err := storedBrandKinds(tx)
	if err != nil {
		return err
	}
	if err := ValidateImport(ds.Brands, existing); err != nil {
		return err
	}

	for i, b := range ds.Brands {
		variations, err := json.Marshal(b.Variations)
		if err != nil {
			return fmt.Errorf("failed to encode variations of %s: %w", b.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO brands (id, name, kind, color, variations, ordinal)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind,
				color = excluded.color, variations = excluded.variations
		`, b.ID, b.DisplayName, string(b.Kind), b.Color, string(variations), i); err != nil {
			return fmt.Errorf("failed to import brand %s: %w", b.ID, err)
		}
	}

	for i, p := range ds.Prompts {
		if _, err := tx.Exec(`
			INSERT INTO prompts (id, query, ordinal) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET query = excluded.query
		`, p.ID, p.QueryText, i); err != nil {
			return fmt.Errorf("failed to import prompt %s: %w", p.ID, err)
		}
	}

	for _, r := range ds.Runs {
		citations, err := json.Marshal(r.Citations)
		if err != nil {
			return fmt.Errorf("failed to encode citations of run %s: %w", r.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO runs (prompt_id, id, scraped_at, response_text, citations) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(prompt_id, id) DO UPDATE SET scraped_at = excluded.scraped_at,
				response_text = excluded.response_text, citations = excluded.citations
		`, r.PromptID, r.ID, r.Timestamp.UnixNano(), r.ResponseText, string(citations)); err != nil {
			return fmt.Errorf("failed to import run %s: %w", r.ID, err)
		}
	}

	for _, m := range ds.Mentions {
		if _, err := tx.Exec(`
			INSERT INTO mentions (prompt_id, run_id, brand_id, mentioned, position, sentiment, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(prompt_id, run_id, brand_id) DO UPDATE SET mentioned = excluded.mentioned,
				position = excluded.position, sentiment = excluded.sentiment, ts = excluded.ts
		`, m.PromptID, m.RunID, m.BrandID, m.Mentioned, m.Position, string(m.Sentiment), m.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("failed to import mention %s/%s/%s: %w", m.PromptID, m.RunID, m.BrandID, err)
		}
	}

	for i, src := range ds.Sources {
		if _, err := tx.Exec(`
			INSERT INTO sources (domain, usage_rate, avg_citations, ordinal) VALUES (?, ?, ?, ?)
			ON CONFLICT(domain) DO UPDATE SET usage_rate = excluded.usage_rate, avg_citations = excluded.avg_citations
		`, src.Domain, src.UsageRate, src.AvgCitations, i); err != nil {
			return fmt.Errorf("failed to import source %s: %w", src.Domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	logrus.Infof("Imported %d brands, %d prompts, %d runs, %d mentions into %s",
		len(ds.Brands), len(ds.Prompts), len(ds.Runs), len(ds.Mentions), s.dbPath)
	return nil
}

func storedBrandKinds(tx *sql.Tx) ([]models.Brand, error) {
	rows, err := tx.Query(`SELECT id, kind FROM brands`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		var kind string
		if err := rows.Scan(&b.ID, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		b.Kind = models.BrandKind(kind)
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// MentionRecords returns the records of one entity inside window
func (s *SQLiteStore) MentionRecords(ref models.EntityRef, window models.Window) ([]models.MentionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	column := "brand_id"
	if ref.Kind == models.EntityPrompt {
		column = "prompt_id"
	}

	query := `
		SELECT prompt_id, run_id, brand_id, mentioned, position, sentiment, ts
		FROM mentions
		WHERE ` + column + ` = ?`
	args := []interface{}{ref.ID}

	if !window.Start.IsZero() {
		query += " AND ts >= ?"
		args = append(args, window.Start.UnixNano())
	}
	if !window.End.IsZero() {
		query += " AND ts <= ?"
		args = append(args, window.End.UnixNano())
	}
	query += " ORDER BY ts, rowid"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions: %w", err)
	}
	defer rows.Close()

	var records []models.MentionRecord
	for rows.Next() {
		var rec models.MentionRecord
		var sentiment string
		var ts int64
		if err := rows.Scan(&rec.PromptID, &rec.RunID, &rec.BrandID, &rec.Mentioned, &rec.Position, &sentiment, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		rec.Sentiment = models.Sentiment(sentiment)
		rec.Timestamp = time.Unix(0, ts).UTC()
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) Brands() ([]models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brandsLocked()
}

func (s *SQLiteStore) brandsLocked() ([]models.Brand, error) {
	rows, err := s.db.Query(`SELECT id, name, kind, color, variations FROM brands ORDER BY ordinal, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		var kind, variations string
		if err := rows.Scan(&b.ID, &b.DisplayName, &kind, &b.Color, &variations); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		b.Kind = models.BrandKind(kind)
		if err := json.Unmarshal([]byte(variations), &b.Variations); err != nil {
			return nil, fmt.Errorf("failed to decode variations of %s: %w", b.ID, err)
		}
		brands = append(brands, b)
	}

	return brands, rows.Err()
}

func (s *SQLiteStore) Prompts() ([]models.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.query, r.id
		FROM prompts p
		LEFT JOIN runs r ON r.prompt_id = p.id
		ORDER BY p.ordinal, p.id, r.scraped_at, r.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.Prompt{}
	for rows.Next() {
		var id, query string
		var runID sql.NullString
		if err := rows.Scan(&id, &query, &runID); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		if n := len(prompts); n == 0 || prompts[n-1].ID != id {
			prompts = append(prompts, models.Prompt{ID: id, QueryText: query})
		}
		if runID.Valid {
			last := &prompts[len(prompts)-1]
			last.RunIDs = append(last.RunIDs, runID.String)
		}
	}

	return prompts, rows.Err()
}

func (s *SQLiteStore) Sources() ([]models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT domain, usage_rate, avg_citations FROM sources ORDER BY ordinal, domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		var src models.Source
		if err := rows.Scan(&src.Domain, &src.UsageRate, &src.AvgCitations); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}

	return sources, rows.Err()
}

// Runs returns the prompt's runs ordered by timestamp
func (s *SQLiteStore) Runs(promptID string) ([]models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, prompt_id, scraped_at, response_text, citations
		FROM runs WHERE prompt_id = ?
		ORDER BY scraped_at, rowid
	`, promptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs of %s: %w", promptID, err)
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		var r models.Run
		var ts int64
		var citations string
		if err := rows.Scan(&r.ID, &r.PromptID, &ts, &r.ResponseText, &citations); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(citations), &r.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// CreateBrand validates spec against the stored brands and inserts it
func (s *SQLiteStore) CreateBrand(spec BrandSpec) (models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.brandsLocked()
	if err != nil {
		return models.Brand{}, err
	}

	brand, err := NormalizeBrandSpec(spec, existing)
	if err != nil {
		return models.Brand{}, err
	}

	variations, err := json.Marshal(brand.Variations)
	if err != nil {
		return models.Brand{}, fmt.Errorf("failed to encode variations: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO brands (id, name, kind, color, variations, ordinal)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(ordinal), -1) + 1 FROM brands))
	`, brand.ID, brand.DisplayName, string(brand.Kind), brand.Color, string(variations)); err != nil {
		return models.Brand{}, fmt.Errorf("failed to insert brand %s: %w", brand.ID, err)
	}

	logrus.Infof("Created brand %s (%s)", brand.ID, brand.Kind)
	return brand, nil
}
