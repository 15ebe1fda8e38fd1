package history

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	return store
}

func testRecord() *Record {
	hr := 110
	return &Record{
		RequestID: "req-123",
		Reading: &domain.SensorReading{
			Temperature: 38.4,
			SpO2:        93,
			HeartRate:   &hr,
			BloodPressure: &domain.BloodPressure{
				Systolic:  135,
				Diastolic: 88,
			},
		},
		RiskLevel:          domain.RiskMedium,
		Status:             domain.StatusWatch,
		Symptoms:           []string{"Fever", "Hypoxemia", "Tachycardia"},
		DetectedConditions: []string{"Fatigue Signs"},
		AnalysisMethod:     domain.AnalysisSensorAndVision,
		Confidence:         0.9,
	}
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)

	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_Save(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	record := testRecord()

	err := store.Save(ctx, record)

	require.NoError(t, err)
	assert.NotZero(t, record.ID, "ID should be assigned")
	assert.False(t, record.CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestSQLiteStore_Get(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	record := testRecord()
	require.NoError(t, store.Save(ctx, record))

	retrieved, err := store.Get(ctx, record.ID)

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, record.RequestID, retrieved.RequestID)
	assert.Equal(t, domain.RiskMedium, retrieved.RiskLevel)
	assert.Equal(t, domain.StatusWatch, retrieved.Status)
	assert.Equal(t, domain.AnalysisSensorAndVision, retrieved.AnalysisMethod)
	assert.Equal(t, record.Symptoms, retrieved.Symptoms)
	assert.Equal(t, record.DetectedConditions, retrieved.DetectedConditions)
	assert.InDelta(t, 0.9, retrieved.Confidence, 0.0001)

	require.NotNil(t, retrieved.Reading)
	assert.InDelta(t, 38.4, retrieved.Reading.Temperature, 0.0001)
	require.NotNil(t, retrieved.Reading.HeartRate)
	assert.Equal(t, 110, *retrieved.Reading.HeartRate)
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	retrieved, err := store.Get(context.Background(), 9999)

	require.NoError(t, err)
	assert.Nil(t, retrieved, "Missing record should return nil without error")
}

func TestSQLiteStore_List(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := testRecord()
		rec.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Save(ctx, rec))
	}

	records, err := store.List(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Newest first
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt),
			"Records should be ordered newest-first")
	}

	// Pagination
	page2, err := store.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
}

func TestSQLiteStore_Count(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, store.Save(ctx, testRecord()))
	require.NoError(t, store.Save(ctx, testRecord()))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	record := testRecord()
	require.NoError(t, store.Save(ctx, record))

	err := store.Delete(ctx, record.ID)
	require.NoError(t, err)

	retrieved, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestSQLiteStore_ExportJSON(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRecord()))
	require.NoError(t, store.Save(ctx, testRecord()))

	var buf bytes.Buffer
	err := store.ExportJSON(ctx, &buf)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))
	assert.Equal(t, "1.0", export.Version)
	assert.Equal(t, 2, export.Count)
	assert.Len(t, export.Records, 2)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestNewRecord(t *testing.T) {
	hr := 72
	verdict := &domain.TriageVerdict{
		Reading: &domain.SensorReading{
			Temperature:   36.8,
			SpO2:          98,
			HeartRate:     &hr,
			BloodPressure: &domain.BloodPressure{Systolic: 120, Diastolic: 80},
		},
		Symptoms:               []string{},
		Status:                 domain.StatusNormal,
		RiskTier:               domain.RiskLow,
		DetectedConditionNames: []string{"Normal Posture"},
		AnalysisMethod:         domain.AnalysisSensorAndVision,
		Confidence:             0.9,
		EvaluatedAt:            time.Now().UTC(),
	}

	record := NewRecord("req-abc", verdict)

	assert.Equal(t, "req-abc", record.RequestID)
	assert.Equal(t, domain.RiskLow, record.RiskLevel)
	assert.Equal(t, verdict.EvaluatedAt, record.CreatedAt)
	assert.Equal(t, []string{"Normal Posture"}, record.DetectedConditions)
}

func TestDisabledStore(t *testing.T) {
	store := NewDisabledStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord()))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	records, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))

	var export Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))
	assert.Equal(t, 0, export.Count)

	assert.NoError(t, store.Close())
}
