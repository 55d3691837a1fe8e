package service

import (
	"context"
	"sync"

	"movielens-etl/internal/models"
)

type fakeCollection[T any] struct {
	count     int64
	countErr  error
	insertErr error
	inserted  []T
	calls     int
}

func (f *fakeCollection[T]) EstimatedCount(context.Context) (int64, error) {
	return f.count, f.countErr
}

func (f *fakeCollection[T]) InsertMany(_ context.Context, docs []T) error {
	f.calls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, docs...)
	f.count += int64(len(docs))
	return nil
}

type fakeJoined struct {
	count    int64
	buildErr error
	builds   int
}

func (f *fakeJoined) EstimatedCount(context.Context) (int64, error) { return f.count, nil }

func (f *fakeJoined) Build(context.Context) error {
	f.builds++
	if f.buildErr != nil {
		return f.buildErr
	}
	f.count = 1
	return nil
}

type fakeStats struct {
	mu       sync.Mutex
	counts   map[string]int64
	rows     map[string][]models.GenreStat
	buildErr map[string]error
	listErr  error
	built    []string
	lists    int
}

func newFakeStats() *fakeStats {
	return &fakeStats{
		counts:   map[string]int64{},
		rows:     map[string][]models.GenreStat{},
		buildErr: map[string]error{},
	}
}

func (f *fakeStats) EstimatedCount(_ context.Context, dim models.Dimension) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[dim.Name], nil
}

func (f *fakeStats) Build(_ context.Context, dim models.Dimension) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append(f.built, dim.Name)
	if err := f.buildErr[dim.Name]; err != nil {
		return err
	}
	f.counts[dim.Name] = int64(len(f.rows[dim.Name]))
	return nil
}

func (f *fakeStats) List(_ context.Context, dim models.Dimension) ([]models.GenreStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows[dim.Name], nil
}

type fakeRuns struct {
	inserted []*models.RunDoc
	err      error
}

func (f *fakeRuns) Insert(_ context.Context, run *models.RunDoc) error {
	f.inserted = append(f.inserted, run)
	return f.err
}
