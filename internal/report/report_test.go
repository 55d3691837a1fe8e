package report

import (
	"bytes"
	"testing"

	"movielens-etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeGroup(t *testing.T) {
	cases := map[int]string{
		0:  "0-9",
		7:  "0-9",
		10: "10-19",
		23: "20-29",
		29: "20-29",
		73: "70-79",
	}
	for age, want := range cases {
		assert.Equal(t, want, AgeGroup(age), "age %d", age)
	}
}

func TestBuild_AgeMergesDecadesWeighted(t *testing.T) {
	stats := []models.GenreStat{
		{Group: "23", GenreIndex: 1, AvgRating: 4.0, Count: 1},
		{Group: "25", GenreIndex: 1, AvgRating: 3.0, Count: 3},
		{Group: "25", GenreIndex: 0, AvgRating: 2.5, Count: 2},
		{Group: "7", GenreIndex: 8, AvgRating: 5.0, Count: 1},
		{Group: "61", GenreIndex: 18, AvgRating: 3.333, Count: 3},
	}

	rep := Build(models.AgeDimension, stats)

	assert.Equal(t, "age", rep.Dimension)
	require.Len(t, rep.Groups, 3)
	assert.Equal(t, []string{"0-9", "20-29", "60-69"}, groupNames(rep))

	twenties := rep.Groups[1]
	require.Len(t, twenties.Genres, 2)
	assert.Equal(t, models.GenreCell{GenreIndex: 0, Genre: "unknown", AvgRating: 2.5, Count: 2}, twenties.Genres[0])
	// (4*1 + 3*3) / 4
	assert.Equal(t, models.GenreCell{GenreIndex: 1, Genre: "Action", AvgRating: 3.25, Count: 4}, twenties.Genres[1])

	assert.Equal(t, "Western", rep.Groups[2].Genres[0].Genre)
}

func TestBuild_AgeGroupsSortedNumerically(t *testing.T) {
	stats := []models.GenreStat{
		{Group: "45", GenreIndex: 1, AvgRating: 3, Count: 1},
		{Group: "9", GenreIndex: 1, AvgRating: 3, Count: 1},
		{Group: "100", GenreIndex: 1, AvgRating: 3, Count: 1},
		{Group: "12", GenreIndex: 1, AvgRating: 3, Count: 1},
	}

	rep := Build(models.AgeDimension, stats)

	assert.Equal(t, []string{"0-9", "10-19", "40-49", "100-109"}, groupNames(rep))
}

func TestBuild_GenderKeepsValues(t *testing.T) {
	stats := []models.GenreStat{
		{Group: "M", GenreIndex: 5, AvgRating: 3.4, Count: 10},
		{Group: "F", GenreIndex: 14, AvgRating: 3.673, Count: 5858},
		{Group: "F", GenreIndex: 2, AvgRating: 3.5, Count: 7},
	}

	rep := Build(models.GenderDimension, stats)

	assert.Equal(t, []string{"F", "M"}, groupNames(rep))
	f := rep.Groups[0]
	require.Len(t, f.Genres, 2)
	assert.Equal(t, 2, f.Genres[0].GenreIndex)
	assert.Equal(t, "Romance", f.Genres[1].Genre)
	assert.Equal(t, 3.673, f.Genres[1].AvgRating)
	assert.Equal(t, 5858, f.Genres[1].Count)
}

func TestBuild_IgnoresOutOfRangeGenres(t *testing.T) {
	rep := Build(models.OccupationDimension, []models.GenreStat{
		{Group: "writer", GenreIndex: 19, AvgRating: 3, Count: 1},
		{Group: "writer", GenreIndex: -1, AvgRating: 3, Count: 1},
	})
	assert.Empty(t, rep.Groups)
}

func TestBuild_Empty(t *testing.T) {
	rep := Build(models.GenderDimension, nil)
	assert.Equal(t, "gender", rep.Dimension)
	assert.Empty(t, rep.Groups)
}

func TestBarSeries_FillsMissingGenres(t *testing.T) {
	avg, count := barSeries(models.GroupStats{Group: "F", Genres: []models.GenreCell{
		{GenreIndex: 3, AvgRating: 3.9, Count: 12},
	}})

	require.Len(t, avg, models.GenreCount)
	require.Len(t, count, models.GenreCount)
	assert.Equal(t, "-", avg[0].Value)
	assert.Equal(t, 3.9, avg[3].Value)
	assert.Equal(t, 12, count[3].Value)
	assert.Equal(t, "-", count[18].Value)
}

func TestRender_WritesChartsPerGroup(t *testing.T) {
	rep := models.DimensionReport{Dimension: "occupation", Groups: []models.GroupStats{
		{Group: "writer", Genres: []models.GenreCell{{GenreIndex: 1, Genre: "Action", AvgRating: 3.2, Count: 40}}},
		{Group: "artist", Genres: []models.GenreCell{{GenreIndex: 8, Genre: "Drama", AvgRating: 3.9, Count: 15}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, models.OccupationDimension, rep))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "echarts.init")
	assert.Contains(t, out, "writer")
	assert.Contains(t, out, "artist")
	assert.Contains(t, out, "Avg Rating")
	assert.Contains(t, out, "Count")
}

func groupNames(rep models.DimensionReport) []string {
	var out []string
	for _, g := range rep.Groups {
		out = append(out, g.Group)
	}
	return out
}

