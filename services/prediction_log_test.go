package services

import (
	"context"
	"testing"

	"phishing-detection-api/database"
	"phishing-detection-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionLoggerStoresOptionalFields(t *testing.T) {
	db := database.OpenTestDB(t)
	l := NewPredictionLogger(db, NewCacheServiceWithClient(nil))

	entry := l.Log(context.Background(), PredictionRecord{
		URL:        "https://example.com",
		Prediction: "Legitimate",
		Confidence: 0.88,
		ModelType:  models.ModelTypeURL,
		IPAddress:  "10.0.0.1",
	})
	require.NotNil(t, entry)

	var stored models.PredictionLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, "https://example.com", *stored.URL)
	assert.Nil(t, stored.Text)
	assert.Nil(t, stored.UserAgent)
	assert.Equal(t, "10.0.0.1", *stored.IPAddress)
	assert.False(t, stored.Timestamp.IsZero())
}

func TestPredictionLoggerSwallowsFailures(t *testing.T) {
	db := database.OpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	l := NewPredictionLogger(db, nil)
	assert.Nil(t, l.Log(context.Background(), PredictionRecord{Prediction: "Phishing", ModelType: "url"}))
}
