package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/testutil"
)

func TestDBHandler_PersistsErrorsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewDBHandler(db, time.Hour)
	logger := slog.New(h).With("municipality_id", "muriae-mg")

	logger.Info("ignored")
	logger.Error("vote failed", "user_id", "uid-1", "request_id", "req-9", "error", "boom", "proposal_id", "p-1")
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "vote failed", row.Message)
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "muriae-mg", row.MunicipalityID)
	assert.Equal(t, "req-9", row.RequestID)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "uid-1", *row.UserID)
	assert.Equal(t, "boom", row.Error)
	assert.JSONEq(t, `{"proposal_id":"p-1"}`, string(row.Extra))
	assert.NotEmpty(t, row.ID)
}

func TestPurge(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.Add(-31 * 24 * time.Hour), Level: "ERROR"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now, Level: "ERROR"}).Error)

	deleted, err := Purge(db, now.Add(-Retention))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

type recorder struct {
	level   slog.Level
	records []string
}

func (r *recorder) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }
func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.records = append(r.records, rec.Message)
	return nil
}
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	info := &recorder{level: slog.LevelInfo}
	errs := &recorder{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(info, errs))

	logger.Info("started")
	logger.Error("failed")

	assert.Equal(t, []string{"started", "failed"}, info.records)
	assert.Equal(t, []string{"failed"}, errs.records)
}
