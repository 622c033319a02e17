package logger_test

import (
	"testing"
	"time"

	"parcel-delivery/logger"
	log_model "parcel-delivery/models/log"
	"parcel-delivery/testutil"
	"parcel-delivery/types"
)

func TestAsyncLoggerWritesQueuedEntriesOnClose(t *testing.T) {
	db := testutil.NewDB(t)
	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()

	for i := 0; i < 3; i++ {
		asyncLogger.Log(types.LogEntry{
			Method:     "GET",
			URL:        "/parcels",
			StatusCode: 200,
			CreatedAt:  time.Now(),
		})
	}
	asyncLogger.Close()

	var count int64
	if err := db.Model(&log_model.Log{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 3 {
		t.Errorf("logs = %d, want 3", count)
	}

	// Logging after Close is a no-op rather than a panic.
	asyncLogger.Log(types.LogEntry{Method: "GET", URL: "/late"})
}
