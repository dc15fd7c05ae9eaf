package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/akashuv-21/parase/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestConfig(t *testing.T) StoreConfig {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set")
	}
	return StoreConfig{
		ConnString: connString,
		TableName:  fmt.Sprintf("parase_test_%d", time.Now().UnixNano()),
		BatchSize:  2,
	}
}

func TestResultStore(t *testing.T) {
	ctx := context.Background()
	config := getTestConfig(t)

	s, err := NewWithConfig(ctx, config)
	require.NoError(t, err)
	defer func() {
		s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+s.documentsTable()+", "+s.runsTable())
		s.Close()
	}()

	report := &types.Report{
		Mode:  types.ModeTable,
		TEDS:  0.5,
		TEDSS: 0.75,
		Documents: []types.DocumentScore{
			{DocumentID: "a.jpg", TEDS: 1, TEDSS: 1},
			{DocumentID: "b.jpg", TEDS: 0.5, TEDSS: 0.5},
			{DocumentID: "c.jpg", Error: "prediction: markup contains no table"},
		},
	}
	run := types.Run{
		Mode:          types.ModeTable,
		LabelPath:     "label.json",
		PredPath:      "pred.json",
		IgnoreClasses: []string{"figure"},
	}

	id, err := s.Save(ctx, run, report)
	require.NoError(t, err)
	assert.Positive(t, id)

	var count int
	err = s.pool.QueryRow(ctx, "SELECT count(*) FROM "+s.documentsTable()+" WHERE run_id = $1", id).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	runs, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, types.ModeTable, runs[0].Mode)
	assert.Equal(t, "label.json", runs[0].LabelPath)
	assert.Equal(t, []string{"figure"}, runs[0].IgnoreClasses)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "café", sanitizeUTF8("café"))
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
}
