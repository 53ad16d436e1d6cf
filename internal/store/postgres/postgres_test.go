package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := sqlx.NewDb(sqlDB, "postgres")
	return &Store{db: db, timeout: time.Second}, mock
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}

func TestStore_HasOpenPosition(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := s.HasOpenPosition(context.Background(), "tok1")
	require.NoError(t, err)
	assert.True(t, open)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordSignal_InsertsSignalAndPosition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO signals").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO positions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sig := &model.Signal{
		ID:           "sig-1",
		Track:        model.TrackProvenRunner,
		TokenMetrics: &model.TokenMetrics{Address: "tok1", Ticker: "TOK"},
		OnChainScore: &model.OnChainScore{},
		GeneratedAt:  time.Now(),
	}

	require.NoError(t, s.RecordSignal(context.Background(), sig))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordOutcome_InsertsOutcomeAndClosesPosition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outcomes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE positions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordOutcome(context.Background(), store.Outcome{
		SignalID:    "sig-1",
		TokenAddr:   "tok1",
		EmittedAt:   time.Now(),
		EvaluatedAt: time.Now(),
		WasWin:      true,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadThresholds_NoRowsReturnsFalse(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT config_json").WillReturnError(sql.ErrNoRows)

	_, ok, err := s.LoadThresholds(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
