package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"movielens-etl/internal/dataset"
	"movielens-etl/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrRunInProgress = errors.New("ya hay una ejecución del ETL en curso")

// Nombres de los pasos (los de estadísticas llevan el sufijo de la dimensión).
const (
	StepLoad   = "load"
	StepJoin   = "join"
	StepStats  = "stats"
	StepCharts = "charts"
)

type UserStore interface {
	EstimatedCount(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, users []models.UserDoc) error
}

type MovieStore interface {
	EstimatedCount(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, movies []models.MovieDoc) error
}

type RatingStore interface {
	EstimatedCount(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, ratings []models.RatingDoc) error
}

type JoinedStore interface {
	EstimatedCount(ctx context.Context) (int64, error)
	Build(ctx context.Context) error
}

type StatsStore interface {
	StatsReader
	EstimatedCount(ctx context.Context, dim models.Dimension) (int64, error)
	Build(ctx context.Context, dim models.Dimension) error
}

type RunStore interface {
	Insert(ctx context.Context, run *models.RunDoc) error
}

// DatasetLoader lee los archivos de MovieLens de un directorio.
type DatasetLoader func(ctx context.Context, dir string) (*dataset.Dataset, error)

// ETLStores agrupa los repositorios que usa el ETL.
type ETLStores struct {
	Users   UserStore
	Movies  MovieStore
	Ratings RatingStore
	Joined  JoinedStore
	Stats   StatsStore
	Runs    RunStore
}

// ETLService orquesta carga, join, estadísticas y gráficos. Cada paso se
// saltea si su colección destino ya tiene datos.
type ETLService struct {
	stores    ETLStores
	reports   *ReportService
	load      DatasetLoader
	dataDir   string
	outputDir string
	log       *zap.Logger

	running sync.Mutex
}

func NewETLService(stores ETLStores, reports *ReportService, dataDir, outputDir string, logger *zap.Logger) *ETLService {
	return &ETLService{
		stores:    stores,
		reports:   reports,
		load:      dataset.Load,
		dataDir:   dataDir,
		outputDir: outputDir,
		log:       logger.Named("etl"),
	}
}

// WithLoader reemplaza el lector de archivos (útil en tests).
func (s *ETLService) WithLoader(l DatasetLoader) *ETLService {
	s.load = l
	return s
}

// step mide fn y loguea su resultado.
func (s *ETLService) step(name string, fn func() (status, msg string)) models.StepResult {
	start := time.Now()
	status, msg := fn()
	res := models.StepResult{
		Name:       name,
		Status:     status,
		Message:    msg,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}

	fields := []zap.Field{zap.String("step", name), zap.String("status", status), zap.Duration("took", res.Duration)}
	switch status {
	case models.StepFailed:
		s.log.Error(msg, fields...)
	default:
		s.log.Info(msg, fields...)
	}
	return res
}

// PopulateRawData carga users, movies y ratings desde los archivos planos.
// Si las tres colecciones ya tienen documentos no hace nada; si solo algunas
// los tienen, carga únicamente las vacías.
func (s *ETLService) PopulateRawData(ctx context.Context) models.StepResult {
	return s.step(StepLoad, func() (string, string) {
		nUsers, err := s.stores.Users.EstimatedCount(ctx)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("contando users: %v", err)
		}
		nMovies, err := s.stores.Movies.EstimatedCount(ctx)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("contando movies: %v", err)
		}
		nRatings, err := s.stores.Ratings.EstimatedCount(ctx)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("contando ratings: %v", err)
		}

		if nUsers > 0 && nMovies > 0 && nRatings > 0 {
			return models.StepSkipped, "los datos ya existen en MongoDB, no se cargan"
		}

		ds, err := s.load(ctx, s.dataDir)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("leyendo dataset de %s: %v", s.dataDir, err)
		}

		var warnings []string
		insert := func(name string, existing int64, n int, fn func() error) {
			if existing > 0 {
				s.log.Warn("la colección ya tiene datos, no se recarga", zap.String("collection", name), zap.Int64("docs", existing))
				return
			}
			if err := fn(); err != nil {
				s.log.Warn("no se pudo insertar", zap.String("collection", name), zap.Error(err))
				warnings = append(warnings, fmt.Sprintf("%s: %v", name, err))
				return
			}
			s.log.Debug("colección cargada", zap.String("collection", name), zap.Int("docs", n))
		}

		insert("users", nUsers, len(ds.Users), func() error { return s.stores.Users.InsertMany(ctx, ds.Users) })
		insert("movies", nMovies, len(ds.Movies), func() error { return s.stores.Movies.InsertMany(ctx, ds.Movies) })
		insert("ratings", nRatings, len(ds.Ratings), func() error { return s.stores.Ratings.InsertMany(ctx, ds.Ratings) })

		if len(warnings) > 0 {
			return models.StepFailed, "carga incompleta: " + strings.Join(warnings, "; ")
		}
		return models.StepDone, fmt.Sprintf("carga completa: %d users, %d movies, %d ratings",
			len(ds.Users), len(ds.Movies), len(ds.Ratings))
	})
}

// PopulateJoined crea ratings_userinfo_genres si está vacía.
func (s *ETLService) PopulateJoined(ctx context.Context) models.StepResult {
	return s.step(StepJoin, func() (string, string) {
		n, err := s.stores.Joined.EstimatedCount(ctx)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("contando ratings_userinfo_genres: %v", err)
		}
		if n > 0 {
			return models.StepSkipped, "ratings_userinfo_genres ya tiene datos, no se hace el join"
		}

		if err := s.stores.Joined.Build(ctx); err != nil {
			return models.StepFailed, fmt.Sprintf("error en la agregación de ratings_userinfo_genres: %v", err)
		}
		return models.StepDone, "ratings_userinfo_genres creada"
	})
}

// BuildStats calcula las estadísticas de una dimensión si su colección está vacía.
func (s *ETLService) BuildStats(ctx context.Context, dim models.Dimension) models.StepResult {
	return s.step(StepStats+":"+dim.Name, func() (string, string) {
		n, err := s.stores.Stats.EstimatedCount(ctx, dim)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("contando %s: %v", dim.Collection, err)
		}
		if n > 0 {
			return models.StepSkipped, fmt.Sprintf("%s ya tiene datos, no se agrega", dim.Collection)
		}

		if err := s.stores.Stats.Build(ctx, dim); err != nil {
			return models.StepFailed, fmt.Sprintf("error calculando estadísticas de %s: %v", dim.Field, err)
		}
		if s.reports != nil {
			s.reports.Invalidate(ctx, dim)
		}
		return models.StepDone, fmt.Sprintf("estadísticas de %s guardadas en %s", dim.Field, dim.Collection)
	})
}

// PopulateStatistics corre BuildStats para edad, género y ocupación, en ese orden.
func (s *ETLService) PopulateStatistics(ctx context.Context) []models.StepResult {
	out := make([]models.StepResult, 0, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		out = append(out, s.BuildStats(ctx, dim))
	}
	return out
}

// RenderCharts escribe los HTML de gráficos en el directorio de salida.
func (s *ETLService) RenderCharts(ctx context.Context) models.StepResult {
	return s.step(StepCharts, func() (string, string) {
		if s.reports == nil {
			return models.StepSkipped, "sin servicio de reportes"
		}
		files, err := s.reports.RenderAll(ctx, s.outputDir)
		if err != nil {
			return models.StepFailed, fmt.Sprintf("error graficando: %v", err)
		}
		if len(files) == 0 {
			return models.StepSkipped, "no hay estadísticas para graficar"
		}
		return models.StepDone, "gráficos escritos: " + strings.Join(files, ", ")
	})
}

// Run ejecuta todos los pasos en orden, guarda el historial en etl_runs y
// notifica cada paso a observe (si no es nil). Los pasos fallidos no cortan
// la ejecución. Solo se permite una ejecución a la vez.
func (s *ETLService) Run(ctx context.Context, observe func(models.StepResult)) (*models.RunDoc, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	run := &models.RunDoc{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := s.log.With(zap.String("run", run.ID))
	log.Info("iniciando ETL", zap.String("dataDir", s.dataDir), zap.String("outputDir", s.outputDir))

	record := func(res models.StepResult) {
		run.Steps = append(run.Steps, res)
		if observe != nil {
			observe(res)
		}
	}

	record(s.PopulateRawData(ctx))
	record(s.PopulateJoined(ctx))
	for _, res := range s.PopulateStatistics(ctx) {
		record(res)
	}
	record(s.RenderCharts(ctx))

	run.FinishedAt = time.Now()

	if s.stores.Runs != nil {
		if err := s.stores.Runs.Insert(ctx, run); err != nil {
			log.Warn("no se pudo guardar el historial", zap.Error(err))
		}
	}

	if run.Failed() {
		log.Warn("ETL terminado con errores", zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
	} else {
		log.Info("todas las tareas completadas", zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
	}
	return run, nil
}
