package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

// pgHabitRow mirrors the habits table. Arrays travel in their text form
// through lib/pq's array types, which also scan what the pgx driver returns.
type pgHabitRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	Schedule       pq.BoolArray   `db:"schedule"`
	CompletedDates pq.StringArray `db:"completed_dates"`
	Pinned         bool           `db:"pinned"`
	Notes          jsonColumn     `db:"notes"`
	CurrentStreak  int            `db:"current_streak"`
	BestStreak     int            `db:"best_streak"`
	Version        int            `db:"version"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

// jsonColumn carries JSONB as text in both directions, whichever form the
// driver hands back.
type jsonColumn []byte

func (j jsonColumn) Value() (driver.Value, error) {
	return string(j), nil
}

func (j *jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = jsonColumn(v)
	case nil:
		*j = nil
	default:
		return fmt.Errorf("jsonColumn: unsupported type %T", src)
	}
	return nil
}

func newPgHabitRow(h *domain.Habit) (*pgHabitRow, error) {
	notes, err := marshalNotes(h.Notes)
	if err != nil {
		return nil, err
	}

	dates := h.CompletedDates
	if dates == nil {
		dates = []string{}
	}

	return &pgHabitRow{
		ID:             h.ID,
		UserID:         h.UserID,
		Name:           h.Name,
		Description:    h.Description,
		Schedule:       pq.BoolArray(h.Schedule.Slice()),
		CompletedDates: pq.StringArray(dates),
		Pinned:         h.Pinned,
		Notes:          notes,
		CurrentStreak:  h.CurrentStreak,
		BestStreak:     h.BestStreak,
		Version:        h.Version,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
		DeletedAt:      h.DeletedAt,
	}, nil
}

func (row *pgHabitRow) toDomain() (*domain.Habit, error) {
	schedule, err := domain.NewScheduleMask(row.Schedule)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", row.ID, err)
	}

	notes, err := unmarshalNotes(row.Notes)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", row.ID, err)
	}

	dates := []string(row.CompletedDates)
	if dates == nil {
		dates = []string{}
	}

	return &domain.Habit{
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
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		DeletedAt:      row.DeletedAt,
	}, nil
}

func rowsToDomain(rows []pgHabitRow) ([]*domain.Habit, error) {
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

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
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

	row, err := newPgHabitRow(h)
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
		if isUniqueViolation(err) {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var row pgHabitRow
	query := `SELECT * FROM habits WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return row.toDomain()
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	rows := []pgHabitRow{}
	query := `
        SELECT * FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY pinned DESC, created_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return rowsToDomain(rows)
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	row, err := newPgHabitRow(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name = $1, description = $2, schedule = $3, completed_dates = $4,
            pinned = $5, notes = $6,
            updated_at = NOW(), version = version + 1
        WHERE id = $7 AND version = $8 AND deleted_at IS NULL
        RETURNING version, updated_at`

	var newVersion int
	var newUpdatedAt time.Time

	err = r.db.QueryRowContext(ctx, query,
		row.Name, row.Description, row.Schedule, row.CompletedDates,
		row.Pinned, row.Notes,
		row.ID, row.Version,
	).Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.GetContext(ctx, &count, `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`, h.ID); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	rows := []pgHabitRow{}
	query := `
        SELECT * FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}

	return rowsToDomain(rows)
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	query := `
        UPDATE habits SET current_streak = $1, best_streak = $2
        WHERE id = $3 AND deleted_at IS NULL`

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

func marshalNotes(notes map[string]string) ([]byte, error) {
	if notes == nil {
		notes = map[string]string{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notes: %w", err)
	}
	return data, nil
}

func unmarshalNotes(data []byte) (map[string]string, error) {
	notes := map[string]string{}
	if len(data) == 0 {
		return notes, nil
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
	}
	return notes, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
