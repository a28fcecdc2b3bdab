// Package sqlite provides a SQLite implementation of the CorrectionStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

const memoryPath = ":memory:"

// Repository implements ports.CorrectionStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every new connection to :memory: is a new, empty database.
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Published corrections; rowid keeps insertion order
	CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		ref_seconds INTEGER NOT NULL,
		ref_nanos INTEGER NOT NULL,
		coefficients TEXT NOT NULL,
		validity_ns INTEGER NOT NULL DEFAULT 0,
		origin TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_corrections_pair ON corrections(source, target);
	CREATE INDEX IF NOT EXISTS idx_corrections_reference ON corrections(ref_seconds, ref_nanos);

	-- Audit log (tracks all changes)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		correction_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_correction ON audit_log(correction_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveCorrection saves or replaces a correction by ID.
func (r *Repository) SaveCorrection(ctx context.Context, stored *entities.StoredCorrection) error {
	c := stored.Correction
	coefficients, err := json.Marshal(c.Polynomial().Coefficients())
	if err != nil {
		return fmt.Errorf("marshaling coefficients: %w", err)
	}

	query := `
		INSERT INTO corrections (id, source, target, ref_seconds, ref_nanos, coefficients, validity_ns, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			target = excluded.target,
			ref_seconds = excluded.ref_seconds,
			ref_nanos = excluded.ref_nanos,
			coefficients = excluded.coefficients,
			validity_ns = excluded.validity_ns,
			origin = excluded.origin,
			created_at = excluded.created_at
	`
	_, err = r.db.ExecContext(ctx, query,
		stored.ID,
		c.Source().String(),
		c.Target().String(),
		c.Reference().CalendarSeconds(),
		c.Reference().Nanos(),
		string(coefficients),
		c.Validity().Nanoseconds(),
		stored.Origin,
		stored.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving correction: %w", err)
	}
	return nil
}

const correctionColumns = `id, source, target, ref_seconds, ref_nanos, coefficients, validity_ns, origin, created_at`

// FindCorrection returns the correction with the given ID, or nil if none exists.
func (r *Repository) FindCorrection(ctx context.Context, id string) (*entities.StoredCorrection, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections WHERE id = ?`

	stored, err := scanCorrection(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding correction: %w", err)
	}
	return stored, nil
}

// ExistsByIDs reports which of the given IDs are stored.
func (r *Repository) ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT id FROM corrections WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("checking correction ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning correction id: %w", err)
		}
		result[id] = true
	}
	return result, rows.Err()
}

// ListCorrections returns every correction in insertion order.
func (r *Repository) ListCorrections(ctx context.Context) ([]entities.StoredCorrection, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing corrections: %w", err)
	}
	defer rows.Close()

	var result []entities.StoredCorrection
	for rows.Next() {
		stored, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning correction: %w", err)
		}
		result = append(result, *stored)
	}
	return result, rows.Err()
}

// DeleteCorrection removes a correction. Deleting a missing ID is not an error.
func (r *Repository) DeleteCorrection(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM corrections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting correction: %w", err)
	}
	return nil
}

// DeleteCorrectionsBefore removes corrections whose reference reads earlier
// than instant, whatever scale either is expressed in.
func (r *Repository) DeleteCorrectionsBefore(ctx context.Context, instant entities.Epoch) (int, error) {
	seconds := instant.CalendarSeconds()
	query := `
		DELETE FROM corrections
		WHERE ref_seconds < ? OR (ref_seconds = ? AND ref_nanos < ?)
	`
	res, err := r.db.ExecContext(ctx, query, seconds, seconds, instant.Nanos())
	if err != nil {
		return 0, fmt.Errorf("deleting corrections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted corrections: %w", err)
	}
	return int(n), nil
}

// CountCorrections returns the number of stored corrections.
func (r *Repository) CountCorrections(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corrections`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting corrections: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCorrection(row rowScanner) (*entities.StoredCorrection, error) {
	var (
		stored                       entities.StoredCorrection
		source, target, coefficients string
		refSeconds, refNanos         int64
		validity                     int64
		origin                       sql.NullString
	)
	if err := row.Scan(
		&stored.ID,
		&source,
		&target,
		&refSeconds,
		&refNanos,
		&coefficients,
		&validity,
		&origin,
		&stored.CreatedAt,
	); err != nil {
		return nil, err
	}
	stored.Origin = origin.String

	correction, err := buildCorrection(source, target, refSeconds, refNanos, coefficients, validity)
	if err != nil {
		return nil, fmt.Errorf("correction %s: %w", stored.ID, err)
	}
	stored.Correction = correction
	return &stored, nil
}

func buildCorrection(source, target string, refSeconds, refNanos int64, coefficients string, validity int64) (entities.TimeCorrection, error) {
	sourceScale, err := entities.ParseTimeScale(source)
	if err != nil {
		return entities.TimeCorrection{}, err
	}
	targetScale, err := entities.ParseTimeScale(target)
	if err != nil {
		return entities.TimeCorrection{}, err
	}

	var values []float64
	if err := json.Unmarshal([]byte(coefficients), &values); err != nil {
		return entities.TimeCorrection{}, fmt.Errorf("unmarshaling coefficients: %w", err)
	}
	polynomial, err := entities.NewPolynomial(values...)
	if err != nil {
		return entities.TimeCorrection{}, err
	}

	reference := entities.NewEpoch(refSeconds, refNanos, sourceScale)
	correction, err := entities.NewTimeCorrection(sourceScale, targetScale, reference, polynomial)
	if err != nil {
		return entities.TimeCorrection{}, err
	}
	return correction.WithValidity(entities.FromNanoseconds(validity)), nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, correctionID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var id sql.NullString
	if correctionID != "" {
		id = sql.NullString{String: correctionID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, correction_id, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, id, detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog returns up to limit audit entries, newest first. A limit of
// zero or less returns all of them.
func (r *Repository) FindAuditLog(ctx context.Context, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, correction_id, details, created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var correctionID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&correctionID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.CorrectionID = correctionID.String
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
