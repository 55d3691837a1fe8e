package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("occupation")
	require.NoError(t, err)
	assert.Equal(t, "occupation_genre_rating_stats", d.Collection)

	_, err = ParseDimension("zip_code")
	assert.True(t, errors.Is(err, ErrUnknownDimension))
}

func TestMovieDoc_DocumentOmitsEmptyOptionalFields(t *testing.T) {
	m := MovieDoc{MovieID: 267, Title: "unknown"}
	m.Genres[0] = 1

	doc := m.Document()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var back bson.M
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.NotContains(t, back, "release_date")
	assert.NotContains(t, back, "IMDb_URL")
	assert.EqualValues(t, 1, back["genre_0"])
	assert.EqualValues(t, 0, back["genre_18"])
	assert.Len(t, doc, 2+GenreCount)
}

func TestRunDoc_Failed(t *testing.T) {
	run := RunDoc{Steps: []StepResult{{Status: StepDone}, {Status: StepSkipped}}}
	assert.False(t, run.Failed())

	run.Steps = append(run.Steps, StepResult{Status: StepFailed})
	assert.True(t, run.Failed())
}
