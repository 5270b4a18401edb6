package repository

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/hoopsboard/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, key)
		)`,
		`CREATE TABLE IF NOT EXISTS pinned_users (
			viewer TEXT NOT NULL,
			season TEXT NOT NULL,
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (viewer, season, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS question_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL,
			item_index INTEGER NOT NULL,
			kind TEXT NOT NULL,
			season TEXT,
			summary TEXT,
			status TEXT NOT NULL,
			error TEXT,
			remote_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pinned_viewer ON pinned_users(viewer, season)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_batch ON question_submissions(batch_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Preference Methods ====================

// GetPreference returns a stored flag for scope
func (r *Repository) GetPreference(ctx context.Context, scope, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE scope = ? AND key = ?`, scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetPreference stores a flag for scope, replacing any previous value
func (r *Repository) SetPreference(ctx context.Context, scope, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (scope, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		scope, key, value)
	return err
}

// ==================== Pin Methods ====================

// ListPinned returns the pinned user ids in pin order
func (r *Repository) ListPinned(ctx context.Context, viewer, season string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM pinned_users
		WHERE viewer = ? AND season = ?
		ORDER BY position`, viewer, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplacePinned stores userIDs as the complete pin list
func (r *Repository) ReplacePinned(ctx context.Context, viewer, season string, userIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pinned_users WHERE viewer = ? AND season = ?`, viewer, season); err != nil {
		return err
	}
	for i, id := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pinned_users (viewer, season, user_id, position) VALUES (?, ?, ?, ?)`,
			viewer, season, id, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Submission Methods ====================

// RecordSubmission stores the outcome of one authored question
func (r *Repository) RecordSubmission(ctx context.Context, s models.Submission) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO question_submissions (batch_id, item_index, kind, season, summary, status, error, remote_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.BatchID, s.Index, s.Kind, s.Season, s.Summary, s.Status, nullString(s.Error), nullString(s.RemoteID))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListSubmissions returns a batch's records in submission order
func (r *Repository) ListSubmissions(ctx context.Context, batchID string) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, batch_id, item_index, kind, season, summary, status, error, remote_id, created_at
		FROM question_submissions
		WHERE batch_id = ?
		ORDER BY item_index, id`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		var season, summary, errMsg, remoteID sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.BatchID, &s.Index, &s.Kind, &season, &summary,
			&s.Status, &errMsg, &remoteID, &createdAt); err != nil {
			return nil, err
		}
		s.Season = season.String
		s.Summary = summary.String
		s.Error = errMsg.String
		s.RemoteID = remoteID.String
		s.CreatedAt = createdAt.Time
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
