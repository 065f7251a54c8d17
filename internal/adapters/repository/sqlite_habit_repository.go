package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout has a fixed width so stored timestamps order correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

var _ domain.HabitRepository = (*SQLiteHabitRepository)(nil)

type SQLiteHabitRepository struct {
	db *sqlx.DB
}

func NewSQLiteHabitRepository(db *sqlx.DB) *SQLiteHabitRepository {
	return &SQLiteHabitRepository{db: db}
}

// OpenSQLite opens (or creates) the database file at path and applies the schema.
// ":memory:" yields a private database bound to a single connection.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type sqliteHabitRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	Schedule       string         `db:"schedule"`
	CompletedDates string         `db:"completed_dates"`
	Pinned         bool           `db:"pinned"`
	Notes          string         `db:"notes"`
	CurrentStreak  int            `db:"current_streak"`
	BestStreak     int            `db:"best_streak"`
	Version        int            `db:"version"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
	DeletedAt      sql.NullString `db:"deleted_at"`
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

func newSQLiteHabitRow(h *domain.Habit) (*sqliteHabitRow, error) {
	schedule, err := json.Marshal(h.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule: %w", err)
	}

	dates := h.CompletedDates
	if dates == nil {
		dates = []string{}
	}
	completed, err := json.Marshal(dates)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completed dates: %w", err)
	}

	notes, err := marshalNotes(h.Notes)
	if err != nil {
		return nil, err
	}

	row := &sqliteHabitRow{
		ID:             h.ID,
		UserID:         h.UserID,
		Name:           h.Name,
		Description:    h.Description,
		Schedule:       string(schedule),
		CompletedDates: string(completed),
		Pinned:         h.Pinned,
		Notes:          string(notes),
		CurrentStreak:  h.CurrentStreak,
		BestStreak:     h.BestStreak,
		Version:        h.Version,
		CreatedAt:      formatSQLiteTime(h.CreatedAt),
		UpdatedAt:      formatSQLiteTime(h.UpdatedAt),
	}
	if h.DeletedAt != nil {
		row.DeletedAt = sql.NullString{String: formatSQLiteTime(*h.DeletedAt), Valid: true}
	}
	return row, nil
}

func (row *sqliteHabitRow) toDomain() (*domain.Habit, error) {
	var raw []bool
	if err := json.Unmarshal([]byte(row.Schedule), &raw); err != nil {
		return nil, fmt.Errorf("habit %s: bad schedule: %w", row.ID, err)
	}
	schedule, err := domain.NewScheduleMask(raw)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", row.ID, err)
	}

	dates := []string{}
	if err := json.Unmarshal([]byte(row.CompletedDates), &dates); err != nil {
		return nil, fmt.Errorf("habit %s: bad completed dates: %w", row.ID, err)
	}

	notes, err := unmarshalNotes([]byte(row.Notes))
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", row.ID, err)
	}

	createdAt, err := parseSQLiteTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("habit %s: bad created_at: %w", row.ID, err)
	}
	updatedAt, err := parseSQLiteTime(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("habit %s: bad updated_at: %w", row.ID, err)
	}

	h := &domain.Habit{
		ID:             row.ID,
		UserID:         row.UserID,
		Name:           row.Name,
		Description:    row.Description,
		Schedule:       schedule,
		CompletedDates: dates,
		Pinned:         row.Pinned,
		Notes:          notes,
		CurrentStreak:  row.CurrentStreak,
		BestStreak:     row.BestStreak,
		Version:        row.Version,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}

	if row.DeletedAt.Valid {
		deletedAt, err := parseSQLiteTime(row.DeletedAt.String)
		if err != nil {
			return nil, fmt.Errorf("habit %s: bad deleted_at: %w", row.ID, err)
		}
		h.DeletedAt = &deletedAt
	}

	return h, nil
}

func sqliteRowsToDomain(rows []sqliteHabitRow) ([]*domain.Habit, error) {
	habits := make([]*domain.Habit, 0, len(rows))
	for i := range rows {
		h, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

func (r *SQLiteHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = now
	}
	h.Version = 1

	row, err := newSQLiteHabitRow(h)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, description, schedule, completed_dates,
            pinned, notes, current_streak, best_streak,
            version, created_at, updated_at, deleted_at
        ) VALUES (
            :id, :user_id, :name, :description, :schedule, :completed_dates,
            :pinned, :notes, :current_streak, :best_streak,
            :version, :created_at, :updated_at, NULL
        )`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *SQLiteHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var row sqliteHabitRow
	query := `SELECT * FROM habits WHERE id = ? AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return row.toDomain()
}

func (r *SQLiteHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	rows := []sqliteHabitRow{}
	query := `
        SELECT * FROM habits
        WHERE user_id = ? AND deleted_at IS NULL
        ORDER BY pinned DESC, created_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return sqliteRowsToDomain(rows)
}

func (r *SQLiteHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	row, err := newSQLiteHabitRow(h)
	if err != nil {
		return err
	}

	updatedAt := time.Now().UTC()

	query := `
        UPDATE habits SET
            name = ?, description = ?, schedule = ?, completed_dates = ?,
            pinned = ?, notes = ?,
            updated_at = ?, version = version + 1
        WHERE id = ? AND version = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		row.Name, row.Description, row.Schedule, row.CompletedDates,
		row.Pinned, row.Notes,
		formatSQLiteTime(updatedAt),
		row.ID, row.Version,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var count int
		if checkErr := r.db.GetContext(ctx, &count, `SELECT count(*) FROM habits WHERE id = ? AND deleted_at IS NULL`, h.ID); checkErr != nil {
			return fmt.Errorf("existence check failed: %w", checkErr)
		}
		if count == 0 {
			return domain.ErrHabitNotFound
		}
		return domain.ErrHabitConflict
	}

	h.Version++
	h.UpdatedAt = updatedAt

	return nil
}

func (r *SQLiteHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	rows := []sqliteHabitRow{}
	query := `
        SELECT * FROM habits
        WHERE user_id = ? AND updated_at > ?
        ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID, formatSQLiteTime(since)); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}

	return sqliteRowsToDomain(rows)
}

func (r *SQLiteHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	query := `
        UPDATE habits SET current_streak = ?, best_streak = ?
        WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, best, id)
	if err != nil {
		return fmt.Errorf("update streaks failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
