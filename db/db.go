package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/zombar/hoaxcheck/models"
	"github.com/zombar/hoaxcheck/slug"
)

// DB wraps the database connection and provides data access methods
type DB struct {
	conn *sql.DB
}

// Config contains database configuration
type Config struct {
	DSN string // PostgreSQL connection string
}

// New creates a new database connection and runs pending migrations.
func New(config Config) (*DB, error) {
	conn, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying database connection for metrics collection
func (db *DB) DB() *sql.DB {
	return db.conn
}

// DedupeKey derives the natural key an analysis record is upserted under.
// URL analyses dedupe on the normalized URL; raw-text analyses dedupe on
// source plus title slug plus publication date, so resubmitting the same
// pasted text updates the prior row instead of inserting a twin.
func DedupeKey(rec *models.ArticleRecord) string {
	if rec.URL != "" {
		return "url:" + rec.URL
	}
	return "raw:" + rec.Source + ":" + slug.GenerateWithFallback(rec.Title, rec.ID) + ":" + rec.PublishedAt
}

// SaveArticle inserts or updates an analysis record keyed by its dedupe key.
func (db *DB) SaveArticle(rec *models.ArticleRecord) error {
	reasonsJSON, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}
	timingJSON, err := json.Marshal(rec.Timing)
	if err != nil {
		return fmt.Errorf("failed to marshal timing: %w", err)
	}

	query := `
		INSERT INTO articles (
			id, dedupe_key, url, source, title, content,
			extracted_chars, total_sentences, category,
			label, p_valid, p_hoax, verdict, confidence,
			reasons, credibility_score, published_at, input_type, timing,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT(dedupe_key) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			extracted_chars = excluded.extracted_chars,
			total_sentences = excluded.total_sentences,
			category = excluded.category,
			label = excluded.label,
			p_valid = excluded.p_valid,
			p_hoax = excluded.p_hoax,
			verdict = excluded.verdict,
			confidence = excluded.confidence,
			reasons = excluded.reasons,
			credibility_score = excluded.credibility_score,
			published_at = excluded.published_at,
			timing = excluded.timing,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err = db.conn.Exec(
		query,
		rec.ID,
		DedupeKey(rec),
		rec.URL,
		rec.Source,
		rec.Title,
		rec.Content,
		rec.ExtractedChars,
		rec.TotalSentences,
		rec.Category,
		rec.Label,
		rec.PValid,
		rec.PHoax,
		rec.Verdict,
		rec.Confidence,
		string(reasonsJSON),
		rec.CredibilityScore,
		rec.PublishedAt,
		rec.InputType,
		string(timingJSON),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}

	return nil
}

// GetByID retrieves an analysis record by ID
func (db *DB) GetByID(id string) (*models.ArticleRecord, error) {
	row := db.conn.QueryRow(selectColumns+" FROM articles WHERE id = $1", id)
	rec, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}
	return rec, nil
}

// ListHoax returns the page of records judged hoax, most recently published
// first, plus the total count of hoax records.
func (db *DB) ListHoax(page, limit int) ([]*models.ArticleRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM articles WHERE label = 1 OR verdict = 'hoax'").Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count hoax articles: %w", err)
	}

	query := selectColumns + `
		FROM articles
		WHERE label = 1 OR verdict = 'hoax'
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.conn.Query(query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query hoax articles: %w", err)
	}
	defer rows.Close()

	results := []*models.ArticleRecord{}
	for rows.Next() {
		rec, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, total, nil
}

// Count returns the total number of stored records
func (db *DB) Count() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

const selectColumns = `SELECT id, url, source, title, content,
	extracted_chars, total_sentences, category,
	label, p_valid, p_hoax, verdict, confidence,
	reasons, credibility_score, published_at, input_type, timing,
	created_at, updated_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (*models.ArticleRecord, error) {
	var (
		rec         models.ArticleRecord
		url         sql.NullString
		publishedAt sql.NullString
		reasonsJSON string
		timingJSON  sql.NullString
	)

	err := s.Scan(
		&rec.ID, &url, &rec.Source, &rec.Title, &rec.Content,
		&rec.ExtractedChars, &rec.TotalSentences, &rec.Category,
		&rec.Label, &rec.PValid, &rec.PHoax, &rec.Verdict, &rec.Confidence,
		&reasonsJSON, &rec.CredibilityScore, &publishedAt, &rec.InputType, &timingJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if url.Valid {
		rec.URL = url.String
	}
	if publishedAt.Valid {
		rec.PublishedAt = publishedAt.String
	}
	if reasonsJSON != "" && reasonsJSON != "null" {
		if err := json.Unmarshal([]byte(reasonsJSON), &rec.Reasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
		}
	}
	if rec.Reasons == nil {
		rec.Reasons = []string{}
	}
	if timingJSON.Valid && timingJSON.String != "" && timingJSON.String != "null" {
		if err := json.Unmarshal([]byte(timingJSON.String), &rec.Timing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timing: %w", err)
		}
	}

	return &rec, nil
}
