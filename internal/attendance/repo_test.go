package attendance

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "name", "date", "check_in", "check_out", "status", "photo_url", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func exact(q string) string {
	return "^" + regexp.QuoteMeta(q) + "$"
}

func TestRepositoryListBuildsQuery(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	base := "SELECT " + recordColumns + " FROM attendance_records"

	cases := []struct {
		name   string
		filter Filter
		query  string
		args   []driver.Value
	}{
		{"all newest first", Filter{}, base + " ORDER BY created_at DESC", nil},
		{"by user", Filter{UserID: "u-1"}, base + " WHERE user_id = $1 ORDER BY created_at DESC", []driver.Value{"u-1"}},
		{"range only", Filter{From: from, To: to}, base + " WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC", []driver.Value{from, to}},
		{"month report", Filter{UserID: "u-1", From: from, To: to, Oldest: true},
			base + " WHERE user_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at ASC", []driver.Value{"u-1", from, to}},
		{"oldest first", Filter{Oldest: true}, base + " ORDER BY created_at ASC", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			exp := mock.ExpectQuery(exact(tc.query))
			if tc.args != nil {
				exp = exp.WithArgs(tc.args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(columns))

			res, err := repo.List(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.NotNil(t, res)
			assert.Empty(t, res)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositoryListScansNullableColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 2, 12, 0, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM attendance_records").WillReturnRows(sqlmock.NewRows(columns).
		AddRow("r-2", "u-1", "Andi", "12/2/2024", "07.30.00", "17.45.00", "Hadir", "https://cdn/x.jpg", created, created).
		AddRow("r-1", nil, "Legacy", "11/2/2024", nil, nil, "Tidak Hadir", nil, created, created))

	res, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "u-1", res[0].UserID)
	assert.Equal(t, "07.30.00", *res[0].CheckIn)
	assert.Equal(t, "17.45.00", *res[0].CheckOut)
	assert.True(t, res[0].Present())

	assert.Empty(t, res[1].UserID)
	assert.Nil(t, res[1].CheckIn)
	assert.Nil(t, res[1].CheckOut)
	assert.Empty(t, res[1].PhotoURL)
	assert.False(t, res[1].Present())
	assert.True(t, res[1].OwnedBy("anyone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 2, 12, 0, 30, 0, 0, time.UTC)
	in := "07.30.00"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WithArgs("r-1", "u-1", "Andi", "12/2/2024", in, nil, "Hadir", "https://cdn/x.jpg", created).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("r-1", "u-1", "Andi", "12/2/2024", in, nil, "Hadir", "https://cdn/x.jpg", created, created))

	rec, err := repo.Insert(context.Background(), Record{
		ID: "r-1", UserID: "u-1", Name: "Andi", Date: "12/2/2024", CheckIn: &in,
		PhotoURL: "https://cdn/x.jpg", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.Nil(t, rec.CheckOut)
	assert.Equal(t, created, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 2, 12, 10, 45, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))
	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance_records")).
		WithArgs("missing", "17.45.00", at).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.SetCheckOut(ctx, "missing", "17.45.00", at)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySetCheckOut(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 2, 12, 0, 30, 0, 0, time.UTC)
	at := time.Date(2024, 2, 12, 10, 45, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SET check_out = $2, updated_at = $3")).
		WithArgs("r-1", "17.45.00", at).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("r-1", "u-1", "Andi", "12/2/2024", "07.30.00", "17.45.00", "Hadir", "https://cdn/x.jpg", created, at))

	rec, err := repo.SetCheckOut(context.Background(), "r-1", "17.45.00", at)
	require.NoError(t, err)
	assert.Equal(t, "17.45.00", *rec.CheckOut)
	assert.Equal(t, at, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
