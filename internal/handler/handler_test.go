package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"movielens-etl/internal/models"
	"movielens-etl/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	report     *models.DimensionReport
	err        error
	refreshed  bool
	renderHTML string
}

func (f *fakeReporter) Report(_ context.Context, dim models.Dimension, refresh bool) (*models.DimensionReport, error) {
	f.refreshed = refresh
	if f.err != nil {
		return nil, f.err
	}
	rep := *f.report
	rep.Dimension = dim.Name
	return &rep, nil
}

func (f *fakeReporter) Render(_ context.Context, _ models.Dimension, w io.Writer) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.renderHTML == "" {
		return false, nil
	}
	_, err := io.WriteString(w, f.renderHTML)
	return true, err
}

type fakeStats struct {
	rows []models.GenreStat
}

func (f *fakeStats) List(_ context.Context, _ models.Dimension) ([]models.GenreStat, error) {
	return f.rows, nil
}

type fakeRunner struct {
	steps []models.StepResult
	err   error
}

func (f *fakeRunner) Run(_ context.Context, observe func(models.StepResult)) (*models.RunDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	run := &models.RunDoc{ID: "run-1", StartedAt: time.Now()}
	for _, s := range f.steps {
		run.Steps = append(run.Steps, s)
		observe(s)
	}
	run.FinishedAt = time.Now()
	return run, nil
}

type fakeRuns struct {
	runs      []models.RunDoc
	lastLimit int64
}

func (f *fakeRuns) ListRecent(_ context.Context, limit int64) ([]models.RunDoc, error) {
	f.lastLimit = limit
	return f.runs, nil
}

func (f *fakeRuns) FindByID(_ context.Context, id string) (*models.RunDoc, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, nil
}

func newTestRouter(rep *fakeReporter, stats *fakeStats, runner *fakeRunner, runs *fakeRuns) http.Handler {
	return NewRouter(NewStatsHandler(rep, stats), NewRunHandler(runner, runs))
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, &fakeRuns{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListDimensions(t *testing.T) {
	rec := do(t, newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, &fakeRuns{}), "/dimensions")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []dimensionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "age", out[0].Name)
	assert.Equal(t, "gender_genre_rating_stats", out[1].Collection)
}

func TestGetReport(t *testing.T) {
	rep := &fakeReporter{report: &models.DimensionReport{
		Groups: []models.GroupStats{{Group: "F", Genres: []models.GenreCell{{GenreIndex: 8, Genre: "Drama", AvgRating: 3.7, Count: 10}}}},
	}}
	h := newTestRouter(rep, &fakeStats{}, &fakeRunner{}, &fakeRuns{})

	rec := do(t, h, "/stats/gender?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, rep.refreshed)

	var out models.DimensionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "gender", out.Dimension)
	require.Len(t, out.Groups, 1)
	assert.Equal(t, "Drama", out.Groups[0].Genres[0].Genre)
}

func TestGetReport_UnknownDimension(t *testing.T) {
	rec := do(t, newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, &fakeRuns{}), "/stats/zip_code")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "dimensión desconocida")
}

func TestGetReport_Error(t *testing.T) {
	rep := &fakeReporter{err: errors.New("mongo caído")}
	rec := do(t, newTestRouter(rep, &fakeStats{}, &fakeRunner{}, &fakeRuns{}), "/stats/age")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetRaw_EmptyIsArray(t *testing.T) {
	rec := do(t, newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, &fakeRuns{}), "/stats/age/raw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetCharts(t *testing.T) {
	rep := &fakeReporter{renderHTML: "<html>charts</html>"}
	h := newTestRouter(rep, &fakeStats{}, &fakeRunner{}, &fakeRuns{})

	rec := do(t, h, "/charts/occupation")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, "<html>charts</html>", rec.Body.String())

	rep.renderHTML = ""
	rec = do(t, h, "/charts/occupation")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns_Limit(t *testing.T) {
	runs := &fakeRuns{runs: []models.RunDoc{{ID: "a"}, {ID: "b"}}}
	h := newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, runs)

	rec := do(t, h, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 20, runs.lastLimit)

	do(t, h, "/runs?limit=500")
	assert.EqualValues(t, 100, runs.lastLimit)

	do(t, h, "/runs?limit=abc")
	assert.EqualValues(t, 20, runs.lastLimit)
}

func TestGetRun(t *testing.T) {
	runs := &fakeRuns{runs: []models.RunDoc{{ID: "a"}}}
	h := newTestRouter(&fakeReporter{}, &fakeStats{}, &fakeRunner{}, runs)

	rec := do(t, h, "/runs/a")
	require.Equal(t, http.StatusOK, rec.Code)
	var out models.RunDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "a", out.ID)

	assert.Equal(t, http.StatusNotFound, do(t, h, "/runs/zzz").Code)
}

type wsMessage struct {
	Type   string            `json:"type"`
	Step   models.StepResult `json:"step"`
	Run    *models.RunDoc    `json:"run"`
	Failed bool              `json:"failed"`
	Error  string            `json:"error"`
}

func dialPipeline(t *testing.T, runner *fakeRunner) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(&fakeReporter{}, &fakeStats{}, runner, &fakeRuns{}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pipeline"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestRunPipelineWS_StreamsSteps(t *testing.T) {
	runner := &fakeRunner{steps: []models.StepResult{
		{Name: service.StepLoad, Status: models.StepSkipped},
		{Name: service.StepJoin, Status: models.StepFailed, Message: "boom"},
	}}
	conn := dialPipeline(t, runner)

	assert.Equal(t, "start", readMsg(t, conn).Type)

	first := readMsg(t, conn)
	assert.Equal(t, "step", first.Type)
	assert.Equal(t, service.StepLoad, first.Step.Name)

	second := readMsg(t, conn)
	assert.Equal(t, models.StepFailed, second.Step.Status)

	done := readMsg(t, conn)
	assert.Equal(t, "done", done.Type)
	assert.True(t, done.Failed)
	require.NotNil(t, done.Run)
	assert.Len(t, done.Run.Steps, 2)
}

func TestRunPipelineWS_Busy(t *testing.T) {
	conn := dialPipeline(t, &fakeRunner{err: service.ErrRunInProgress})

	assert.Equal(t, "start", readMsg(t, conn).Type)
	msg := readMsg(t, conn)
	assert.Equal(t, "busy", msg.Type)
	assert.Contains(t, msg.Error, "en curso")
}
