package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"movielens-etl/internal/cache"
	"movielens-etl/internal/db"
	"movielens-etl/internal/models"
	"movielens-etl/internal/repository"
	"movielens-etl/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runsLimit int64

var errStepFailed = errors.New("hubo pasos con errores")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ejecuta carga, join, estadísticas y gráficos en orden",
	Args:  cobra.NoArgs,
	RunE:  runAll,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Carga users, movies y ratings si las colecciones están vacías",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return check(a.etl.PopulateRawData(ctx))
		})
	},
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Arma ratings_userinfo_genres si está vacía",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return check(a.etl.PopulateJoined(ctx))
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [age|gender|occupation...]",
	Short: "Calcula las estadísticas por dimensión (todas si no se indica ninguna)",
	Args:  cobra.MaximumNArgs(len(models.Dimensions)),
	RunE: func(cmd *cobra.Command, args []string) error {
		dims := models.Dimensions
		if len(args) > 0 {
			dims = nil
			for _, name := range args {
				d, err := models.ParseDimension(name)
				if err != nil {
					return err
				}
				dims = append(dims, d)
			}
		}

		return withApp(func(ctx context.Context, a *app) error {
			results := make([]models.StepResult, 0, len(dims))
			for _, d := range dims {
				results = append(results, a.etl.BuildStats(ctx, d))
			}
			return check(results...)
		})
	},
}

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Escribe los HTML de gráficos en --out-dir",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return check(a.etl.RenderCharts(ctx))
		})
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Lista las últimas ejecuciones guardadas en etl_runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			runs, err := a.runs.ListRecent(ctx, runsLimit)
			if err != nil {
				return err
			}
			printRuns(cmd, runs)
			return nil
		})
	},
}

func runAll(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		run, err := a.etl.Run(ctx, nil)
		if err != nil {
			return err
		}
		printRuns(cmd, []models.RunDoc{*run})
		if run.Failed() {
			return errStepFailed
		}
		return nil
	})
}

// app junta lo que necesitan los subcomandos.
type app struct {
	etl  *service.ETLService
	runs *repository.RunRepository
}

// withApp conecta Mongo (y Redis si está configurado), arma los servicios y
// corre fn. Redis es opcional: si falla se sigue sin cache.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := db.InitMongo(cfg, logger); err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := cache.InitRedis(cfg, logger); err != nil {
		logger.Warn("redis no disponible, sigo sin cache", zap.Error(err))
	}
	defer cache.Close()

	database := db.DB()
	statsRepo := repository.NewStatsRepository(database)
	runRepo := repository.NewRunRepository(database)

	reports := service.NewReportService(statsRepo, cfg.CacheTTLSeconds, logger)
	etl := service.NewETLService(service.ETLStores{
		Users:   repository.NewUserRepository(database),
		Movies:  repository.NewMovieRepository(database),
		Ratings: repository.NewRatingRepository(database),
		Joined:  repository.NewJoinedRepository(database),
		Stats:   statsRepo,
		Runs:    runRepo,
	}, reports, cfg.DataDir, cfg.OutputDir, logger)

	return fn(ctx, &app{etl: etl, runs: runRepo})
}

// check devuelve errStepFailed si algún paso falló. El detalle ya quedó en el log.
func check(results ...models.StepResult) error {
	for _, r := range results {
		if r.Status == models.StepFailed {
			return fmt.Errorf("%w: %s", errStepFailed, r.Name)
		}
	}
	return nil
}

func printRuns(cmd *cobra.Command, runs []models.RunDoc) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if len(runs) == 0 {
		fmt.Fprintln(w, "sin ejecuciones registradas")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "run %s\t%s\t%s\n", run.ID, run.StartedAt.Format(time.RFC3339),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
		for _, s := range run.Steps {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", s.Name, s.Status, s.Duration.Round(time.Millisecond), s.Message)
		}
	}
}
