package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"movielens-etl/internal/cache"
	"movielens-etl/internal/models"
	"movielens-etl/internal/report"

	"go.uber.org/zap"
)

// StatsReader lee las colecciones de estadísticas.
type StatsReader interface {
	List(ctx context.Context, dim models.Dimension) ([]models.GenreStat, error)
}

type ReportService struct {
	stats      StatsReader
	ttlSeconds int
	log        *zap.Logger
}

func NewReportService(stats StatsReader, ttlSeconds int, logger *zap.Logger) *ReportService {
	return &ReportService{
		stats:      stats,
		ttlSeconds: ttlSeconds,
		log:        logger.Named("report"),
	}
}

func reportCacheKey(dim models.Dimension) string {
	return fmt.Sprintf("report:%s", dim.Name)
}

// Report devuelve las estadísticas de dim agrupadas para graficar.
// Con refresh=false se intenta primero el cache de Redis.
func (s *ReportService) Report(ctx context.Context, dim models.Dimension, refresh bool) (*models.DimensionReport, error) {
	key := reportCacheKey(dim)

	if !refresh {
		var cached models.DimensionReport
		if ok, err := cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return &cached, nil
		} else if err != nil {
			s.log.Warn("error leyendo cache", zap.String("key", key), zap.Error(err))
		}
	}

	stats, err := s.stats.List(ctx, dim)
	if err != nil {
		return nil, fmt.Errorf("leyendo %s: %w", dim.Collection, err)
	}
	rep := report.Build(dim, stats)

	// un reporte vacío no se cachea: las estadísticas pueden no existir aún
	if len(rep.Groups) > 0 {
		if err := cache.SetJSON(ctx, key, rep, s.ttlSeconds); err != nil {
			s.log.Warn("error cacheando reporte", zap.String("key", key), zap.Error(err))
		}
	}
	return &rep, nil
}

// Invalidate descarta el reporte cacheado de dim.
func (s *ReportService) Invalidate(ctx context.Context, dim models.Dimension) {
	if err := cache.Delete(ctx, reportCacheKey(dim)); err != nil {
		s.log.Warn("error invalidando cache", zap.String("dimension", dim.Name), zap.Error(err))
	}
}

// Render escribe los gráficos de dim en w. Devuelve false si no hay
// estadísticas (y en ese caso no escribe nada).
func (s *ReportService) Render(ctx context.Context, dim models.Dimension, w io.Writer) (bool, error) {
	rep, err := s.Report(ctx, dim, false)
	if err != nil {
		return false, err
	}
	if len(rep.Groups) == 0 {
		return false, nil
	}
	if err := report.Render(w, dim, *rep); err != nil {
		return false, fmt.Errorf("graficando %s: %w", dim.Name, err)
	}
	return true, nil
}

// RenderAll escribe un HTML por dimensión con estadísticas dentro de outDir
// y devuelve las rutas escritas. Un error en una dimensión no corta las demás.
func (s *ReportService) RenderAll(ctx context.Context, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creando %s: %w", outDir, err)
	}

	var written []string
	var errs []error
	for _, dim := range models.Dimensions {
		path, err := s.renderFile(ctx, dim, outDir)
		if err != nil {
			s.log.Error("no se pudieron graficar", zap.String("dimension", dim.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if path == "" {
			s.log.Info("sin estadísticas, no se grafica", zap.String("dimension", dim.Name))
			continue
		}
		s.log.Info("gráficos escritos", zap.String("dimension", dim.Name), zap.String("file", path))
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

func (s *ReportService) renderFile(ctx context.Context, dim models.Dimension, outDir string) (string, error) {
	rep, err := s.Report(ctx, dim, false)
	if err != nil {
		return "", err
	}
	if len(rep.Groups) == 0 {
		return "", nil
	}

	path := filepath.Join(outDir, dim.ChartFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := report.Render(f, dim, *rep); err != nil {
		f.Close()
		return "", fmt.Errorf("graficando %s: %w", dim.Name, err)
	}
	return path, f.Close()
}
