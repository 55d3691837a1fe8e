package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"movielens-etl/internal/cache"
	"movielens-etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReportService_Report(t *testing.T) {
	cache.SetClient(nil)
	stats := newFakeStats()
	stats.rows["age"] = []models.GenreStat{
		{Group: "21", GenreIndex: 1, AvgRating: 3, Count: 1},
		{Group: "28", GenreIndex: 1, AvgRating: 4, Count: 1},
		{Group: "35", GenreIndex: 2, AvgRating: 2, Count: 4},
	}
	svc := NewReportService(stats, 60, zap.NewNop())

	rep, err := svc.Report(context.Background(), models.AgeDimension, false)
	require.NoError(t, err)

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "20-29", rep.Groups[0].Group)
	assert.Equal(t, 3.5, rep.Groups[0].Genres[0].AvgRating)
	assert.Equal(t, 2, rep.Groups[0].Genres[0].Count)
	assert.Equal(t, "30-39", rep.Groups[1].Group)
}

func TestReportService_ReportError(t *testing.T) {
	stats := newFakeStats()
	stats.listErr = errors.New("no reachable servers")
	svc := NewReportService(stats, 60, zap.NewNop())

	_, err := svc.Report(context.Background(), models.GenderDimension, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gender_genre_rating_stats")
}

func TestReportService_Render(t *testing.T) {
	stats := newFakeStats()
	stats.rows["occupation"] = []models.GenreStat{{Group: "writer", GenreIndex: 0, AvgRating: 3, Count: 2}}
	svc := NewReportService(stats, 60, zap.NewNop())

	var buf bytes.Buffer
	ok, err := svc.Render(context.Background(), models.OccupationDimension, &buf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "writer")

	buf.Reset()
	ok, err = svc.Render(context.Background(), models.GenderDimension, &buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, buf.Len())
}
