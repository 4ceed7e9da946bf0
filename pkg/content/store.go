package content

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	logstd "log"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is the sqlite-backed content store. It holds the authored corpora
// (action steps, advice) and the per-flow phase catalog; the engine only
// ever reads from it at request time.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
}

// NewStore opens (or creates) the content database and runs pending
// migrations.
func NewStore(ctx context.Context, dbPath string, logger *log.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	// WAL mode for concurrent readers during request handling.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := runMigrations(db.DB, logger); err != nil {
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func runMigrations(db *sql.DB, logger *log.Logger) error {
	goose.SetLogger(logstd.New(os.Stderr, "", 0))
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	logger.Info("Running content store migrations")
	if err := goose.Up(db, "migrations"); err != nil {
		logger.Error("Content store migrations failed", "error", err)
		return err
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type actionStepRow struct {
	ID              string         `db:"id"`
	PhaseID         sql.NullString `db:"phase_id"`
	Title           string         `db:"title"`
	Body            string         `db:"body"`
	Tags            sql.NullString `db:"tags"`
	Category        sql.NullString `db:"category"`
	DefaultPriority int            `db:"default_priority"`
	ApplicableWhen  sql.NullString `db:"applicable_when"`
	CreatedAt       time.Time      `db:"created_at"`
}

type adviceRow struct {
	ID             string         `db:"id"`
	PhaseID        sql.NullString `db:"phase_id"`
	Flow           string         `db:"flow"`
	Title          string         `db:"title"`
	Body           string         `db:"body"`
	Tags           sql.NullString `db:"tags"`
	ApplicableWhen sql.NullString `db:"applicable_when"`
	EmbeddingRef   sql.NullString `db:"embedding_ref"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r actionStepRow) toCandidate(logger *log.Logger) Candidate {
	c := Candidate{
		ID:              r.ID,
		Title:           r.Title,
		Body:            r.Body,
		Category:        r.Category.String,
		DefaultPriority: r.DefaultPriority,
		PhaseID:         r.PhaseID.String,
	}
	decodeJSONColumn(r.Tags, &c.Tags, r.ID, "tags", logger)
	decodeJSONColumn(r.ApplicableWhen, &c.ApplicableWhen, r.ID, "applicable_when", logger)
	return c
}

func (r adviceRow) toCandidate(logger *log.Logger) Candidate {
	c := Candidate{
		ID:           r.ID,
		Title:        r.Title,
		Body:         r.Body,
		EmbeddingRef: r.EmbeddingRef.String,
		PhaseID:      r.PhaseID.String,
	}
	decodeJSONColumn(r.Tags, &c.Tags, r.ID, "tags", logger)
	decodeJSONColumn(r.ApplicableWhen, &c.ApplicableWhen, r.ID, "applicable_when", logger)
	return c
}

// decodeJSONColumn tolerates malformed authored JSON: the column decodes
// to its zero value and the row still surfaces.
func decodeJSONColumn(col sql.NullString, dst any, id, name string, logger *log.Logger) {
	if !col.Valid || col.String == "" {
		return
	}
	if err := json.Unmarshal([]byte(col.String), dst); err != nil {
		logger.Warn("Skipping malformed JSON column", "id", id, "column", name, "error", err)
	}
}

// GetActionSteps returns the full action step corpus in insertion order.
// Flow filtering and scoring happen in the retriever, which needs the
// verbatim rule trees.
func (s *Store) GetActionSteps(ctx context.Context) ([]Candidate, error) {
	var rows []actionStepRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, phase_id, title, body, tags, category, default_priority, applicable_when, created_at
		 FROM action_steps ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("selecting action steps: %w", err)
	}

	steps := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		steps = append(steps, r.toCandidate(s.logger))
	}
	return steps, nil
}

// GetAdviceBatch resolves vector store neighbor IDs back to candidates.
// Unknown IDs are silently absent from the result.
func (s *Store) GetAdviceBatch(ctx context.Context, ids []string) ([]Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, phase_id, flow, title, body, tags, applicable_when, embedding_ref, created_at
		 FROM advice WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("building advice batch query: %w", err)
	}

	var rows []adviceRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("selecting advice batch: %w", err)
	}

	advice := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		advice = append(advice, r.toCandidate(s.logger))
	}
	return advice, nil
}

// SearchAdvice runs an exact text/tag search scoped to a flow. An empty
// flow searches all flows.
func (s *Store) SearchAdvice(ctx context.Context, flow Flow, query string) ([]Candidate, error) {
	pattern := "%" + query + "%"
	var rows []adviceRow
	var err error
	if flow == "" {
		err = s.db.SelectContext(ctx, &rows,
			`SELECT id, phase_id, flow, title, body, tags, applicable_when, embedding_ref, created_at
			 FROM advice WHERE title LIKE ? OR body LIKE ? OR tags LIKE ? ORDER BY rowid`,
			pattern, pattern, pattern)
	} else {
		err = s.db.SelectContext(ctx, &rows,
			`SELECT id, phase_id, flow, title, body, tags, applicable_when, embedding_ref, created_at
			 FROM advice WHERE flow = ? AND (title LIKE ? OR body LIKE ? OR tags LIKE ?) ORDER BY rowid`,
			flow, pattern, pattern, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("searching advice: %w", err)
	}

	matches := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, r.toCandidate(s.logger))
	}
	return matches, nil
}

// CountAdvice returns the total advice count for a flow, the input to the
// availability estimate.
func (s *Store) CountAdvice(ctx context.Context, flow Flow) (int, error) {
	var count int
	var err error
	if flow == "" {
		err = s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM advice`)
	} else {
		err = s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM advice WHERE flow = ?`, flow)
	}
	if err != nil {
		return 0, fmt.Errorf("counting advice: %w", err)
	}
	return count, nil
}

// GetPhases returns the fixed phase catalog for a flow, in timeline order.
func (s *Store) GetPhases(ctx context.Context, flow Flow) ([]Phase, error) {
	var phases []Phase
	err := s.db.SelectContext(ctx, &phases,
		`SELECT id, flow, title, ord FROM phases WHERE flow = ? ORDER BY ord`, flow)
	if err != nil {
		return nil, fmt.Errorf("selecting phases: %w", err)
	}
	return phases, nil
}

// UpsertPhase inserts or replaces a phase definition.
func (s *Store) UpsertPhase(ctx context.Context, p Phase) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO phases (id, flow, title, ord) VALUES (?, ?, ?, ?)`,
		p.ID, p.Flow, p.Title, p.Order)
	if err != nil {
		return fmt.Errorf("upserting phase %s: %w", p.ID, err)
	}
	return nil
}

// UpsertActionStep inserts or replaces an action step.
func (s *Store) UpsertActionStep(ctx context.Context, c Candidate) error {
	tags, applicable, err := encodeCandidateColumns(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO action_steps (id, phase_id, title, body, tags, category, default_priority, applicable_when)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullable(c.PhaseID), c.Title, c.Body, tags, nullable(c.Category), c.DefaultPriority, applicable)
	if err != nil {
		return fmt.Errorf("upserting action step %s: %w", c.ID, err)
	}
	return nil
}

// UpsertAdvice inserts or replaces an advice/story candidate under its
// primary flow tag.
func (s *Store) UpsertAdvice(ctx context.Context, flow Flow, c Candidate) error {
	tags, applicable, err := encodeCandidateColumns(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO advice (id, phase_id, flow, title, body, tags, applicable_when, embedding_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullable(c.PhaseID), flow, c.Title, c.Body, tags, applicable, nullable(c.EmbeddingRef))
	if err != nil {
		return fmt.Errorf("upserting advice %s: %w", c.ID, err)
	}
	return nil
}

func encodeCandidateColumns(c Candidate) (tags string, applicable string, err error) {
	tagsJSON, err := json.Marshal(c.Tags)
	if err != nil {
		return "", "", fmt.Errorf("marshaling tags for %s: %w", c.ID, err)
	}
	applicableJSON, err := json.Marshal(c.ApplicableWhen)
	if err != nil {
		return "", "", fmt.Errorf("marshaling applicable_when for %s: %w", c.ID, err)
	}
	return string(tagsJSON), string(applicableJSON), nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
