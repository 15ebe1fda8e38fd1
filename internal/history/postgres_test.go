package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	// NewPostgresStore pings on construction; unmonitored pings succeed.
	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	return store, mock, db
}

func recordColumns() []string {
	return []string{
		"id", "request_id", "reading", "risk_level", "status",
		"symptoms", "detected_conditions", "analysis_method",
		"confidence", "created_at",
	}
}

func mockRow(t *testing.T, id int64, rec *Record) []driver.Value {
	t.Helper()

	readingJSON, err := json.Marshal(rec.Reading)
	require.NoError(t, err)
	symptomsJSON, err := json.Marshal(rec.Symptoms)
	require.NoError(t, err)
	conditionsJSON, err := json.Marshal(rec.DetectedConditions)
	require.NoError(t, err)

	return []driver.Value{
		id, rec.RequestID, string(readingJSON),
		string(rec.RiskLevel), string(rec.Status),
		string(symptomsJSON), string(conditionsJSON),
		string(rec.AnalysisMethod), rec.Confidence, rec.CreatedAt,
	}
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	store, err := NewPostgresStore(nil)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	record := testRecord()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO triage_history")).
		WithArgs(
			record.RequestID,
			sqlmock.AnyArg(), // reading JSON
			string(record.RiskLevel),
			string(record.Status),
			sqlmock.AnyArg(), // symptoms JSON
			sqlmock.AnyArg(), // conditions JSON
			string(record.AnalysisMethod),
			record.Confidence,
			sqlmock.AnyArg(), // created_at
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err := store.Save(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	saved := testRecord()
	saved.CreatedAt = time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM triage_history")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(recordColumns()).AddRow(mockRow(t, 42, saved)...))

	rec, err := store.Get(context.Background(), 42)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, saved.RequestID, rec.RequestID)
	assert.Equal(t, domain.RiskMedium, rec.RiskLevel)
	assert.Equal(t, saved.Symptoms, rec.Symptoms)
	require.NotNil(t, rec.Reading)
	assert.InDelta(t, saved.Reading.Temperature, rec.Reading.Temperature, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM triage_history")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	rec, err := store.Get(context.Background(), 99)

	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	first := testRecord()
	first.CreatedAt = time.Now().UTC()
	second := testRecord()
	second.CreatedAt = first.CreatedAt.Add(-time.Minute)

	rows := sqlmock.NewRows(recordColumns()).
		AddRow(mockRow(t, 2, first)...).
		AddRow(mockRow(t, 1, second)...)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(10, 0).
		WillReturnRows(rows)

	records, err := store.List(context.Background(), 10, 0)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, int64(1), records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM triage_history")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM triage_history")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Delete(context.Background(), 5)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
