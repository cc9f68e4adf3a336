package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, user_id, name, date, check_in, check_out, status, photo_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec      Record
		userID   sql.NullString
		checkIn  sql.NullString
		checkOut sql.NullString
		photoURL sql.NullString
	)
	if err := row.Scan(&rec.ID, &userID, &rec.Name, &rec.Date, &checkIn, &checkOut, &rec.Status, &photoURL, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.UserID = userID.String
	rec.PhotoURL = photoURL.String
	if checkIn.Valid {
		rec.CheckIn = &checkIn.String
	}
	if checkOut.Valid {
		rec.CheckOut = &checkOut.String
	}
	return rec, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullablePtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, user_id, name, date, check_in, check_out, status, photo_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
		RETURNING `+recordColumns,
		rec.ID, nullable(rec.UserID), rec.Name, rec.Date, nullablePtr(rec.CheckIn), nullablePtr(rec.CheckOut),
		string(rec.Status), nullable(rec.PhotoURL), rec.CreatedAt)
	return scanRecord(row)
}

// Get returns a single record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM attendance_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// SetCheckOut stores the check-out time. There is no version check: the last
// writer wins.
func (r *Repository) SetCheckOut(ctx context.Context, id, checkOut string, at time.Time) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET check_out = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+recordColumns, id, checkOut, at)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns records matching f ordered by creation time.
func (r *Repository) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if f.UserID != "" {
		args = append(args, f.UserID)
		clauses = append(clauses, "user_id = $"+strconv.Itoa(len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		clauses = append(clauses, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		clauses = append(clauses, "created_at < $"+strconv.Itoa(len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if f.Oldest {
		query += " ORDER BY created_at ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
