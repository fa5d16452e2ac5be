// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
)

const evidenceSchema = `
CREATE TABLE IF NOT EXISTS evidence (
	id             VARCHAR PRIMARY KEY,
	topic_id       VARCHAR NOT NULL,
	kind           VARCHAR NOT NULL,
	title          VARCHAR,
	format         VARCHAR,
	views          BIGINT DEFAULT 0,
	baseline_views BIGINT DEFAULT 0,
	likes          BIGINT DEFAULT 0,
	breakout       BOOLEAN DEFAULT false,
	observed_at    TIMESTAMP
)`

const selectEvidence = `
SELECT id, topic_id, kind, COALESCE(title, ''), COALESCE(format, ''),
       COALESCE(views, 0), COALESCE(baseline_views, 0), COALESCE(likes, 0),
       COALESCE(breakout, false), observed_at
FROM evidence
WHERE topic_id = ?
ORDER BY observed_at DESC NULLS LAST, id`

const upsertEvidence = `
INSERT OR REPLACE INTO evidence
	(id, topic_id, kind, title, format, views, baseline_views, likes, breakout, observed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// DuckDBEvidenceStore reads historical evidence from a DuckDB table.
type DuckDBEvidenceStore struct {
	conn   *sql.DB
	logger zerolog.Logger
}

var _ scoring.EvidenceStore = (*DuckDBEvidenceStore)(nil)

// OpenDuckDBEvidenceStore opens the database at path and ensures the schema.
// An empty path opens an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenDuckDBEvidenceStore(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBEvidenceStore, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	if _, err := conn.ExecContext(ctx, evidenceSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log := logger.With().Str("component", "evidence_store").Logger()
	log.Info().Str("path", displayPath(path)).Msg("evidence store opened")

	return &DuckDBEvidenceStore{conn: conn, logger: log}, nil
}

// Ping checks the connection.
func (s *DuckDBEvidenceStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *DuckDBEvidenceStore) Close() error {
	return s.conn.Close()
}

// Insert upserts records in one transaction.
func (s *DuckDBEvidenceStore) Insert(ctx context.Context, records ...models.EvidenceRecord) error {
	start := time.Now()
	err := s.insert(ctx, records)
	metrics.RecordStoreCall("evidence_duckdb", "insert", time.Since(start), err)
	return err
}

func (s *DuckDBEvidenceStore) insert(ctx context.Context, records []models.EvidenceRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertEvidence)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		var observed sql.NullTime
		if !r.ObservedAt.IsZero() {
			observed = sql.NullTime{Time: r.ObservedAt.UTC(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.TopicID, string(r.Kind), r.Title, r.Format,
			r.Views, r.BaselineViews, r.Likes, r.Breakout, observed,
		); err != nil {
			return fmt.Errorf("insert evidence %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetEvidence returns every record for topicID, newest first.
func (s *DuckDBEvidenceStore) GetEvidence(ctx context.Context, topicID string) ([]models.EvidenceRecord, error) {
	start := time.Now()
	records, err := s.query(ctx, topicID)
	metrics.RecordStoreCall("evidence_duckdb", "get_evidence", time.Since(start), err)
	return records, err
}

func (s *DuckDBEvidenceStore) query(ctx context.Context, topicID string) ([]models.EvidenceRecord, error) {
	rows, err := s.conn.QueryContext(ctx, selectEvidence, topicID)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	var out []models.EvidenceRecord
	for rows.Next() {
		var (
			r        models.EvidenceRecord
			kind     string
			observed sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.TopicID, &kind, &r.Title, &r.Format,
			&r.Views, &r.BaselineViews, &r.Likes, &r.Breakout, &observed); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		r.Kind = models.EvidenceKind(kind)
		if observed.Valid {
			r.ObservedAt = observed.Time.UTC()
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	return out, nil
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}
