package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"faculty-presence-backend/internal/presence"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestJournalWritesBehind(t *testing.T) {
	gormDB, mock := newTestDB(t)
	j := NewJournal(NewGormStore(gormDB), 8)

	rec := presence.Record{
		Status:    presence.StatusBusy,
		Source:    presence.SourceManual,
		UpdatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "status_histories"`)).
		WithArgs("prof-rao", "busy", "manual", Any{}, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.Publish("prof-rao", rec)

	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestJournalDropsWhenFull(t *testing.T) {
	gormDB, _ := newTestDB(t)
	j := NewJournal(NewGormStore(gormDB), 1)

	rec := presence.Record{Status: presence.StatusBusy, Source: presence.SourceManual, UpdatedAt: time.Now()}

	// No Run loop is draining, so the second publish overflows the
	// buffer and is dropped rather than blocking the presence store.
	j.Publish("prof-rao", rec)
	j.Publish("prof-rao", rec)

	assert.Equal(t, 1, j.Len())
}
