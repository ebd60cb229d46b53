package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, band := range []scoring.RiskBand{scoring.BandLow, scoring.BandHigh, scoring.BandModerate} {
		_, err := s.Record(ctx, Entry{
			Profile:       "standard",
			SeverityIndex: i * 4,
			RiskBand:      band,
			ClusterID:     i,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	list, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, scoring.BandModerate, list[0].RiskBand)
	assert.Equal(t, 8, list[0].SeverityIndex)
	assert.Equal(t, scoring.BandHigh, list[1].RiskBand)
	assert.NotEmpty(t, list[0].ID)
	assert.True(t, list[0].CreatedAt.Equal(base.Add(2*time.Minute)))
}

func TestRecordRejectsInvalidBand(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Record(context.Background(), Entry{RiskBand: "Severe"})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.Total)
	assert.Len(t, sum.Bands, 3)

	for _, band := range []scoring.RiskBand{scoring.BandLow, scoring.BandLow, scoring.BandHigh} {
		_, err := s.Record(ctx, Entry{Profile: "standard", RiskBand: band})
		require.NoError(t, err)
	}
	sum, err = s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Total)
	assert.Equal(t, int64(2), sum.Bands[scoring.BandLow])
	assert.Equal(t, int64(0), sum.Bands[scoring.BandModerate])
	assert.Equal(t, int64(1), sum.Bands[scoring.BandHigh])
}

func TestRecordConcurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Record(ctx, Entry{Profile: "standard", RiskBand: scoring.BandLow})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), sum.Total)
}

func TestOpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(driver, dsn string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}
	_, err := Open(filepath.Join(t.TempDir(), "h.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNilStore(t *testing.T) {
	var s *Store
	_, err := s.Recent(context.Background(), 1)
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}
