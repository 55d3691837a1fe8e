package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movielens-etl/internal/config"
	"movielens-etl/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags globales
	configPath string
	verbose    bool
	dataDir    string
	outDir     string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd sin subcomando corre el ETL completo.
var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "ETL de MovieLens 100K sobre MongoDB",
	Long: `Carga u.user, u.item y u.data en MongoDB, arma ratings_userinfo_genres,
calcula el rating promedio por edad, género y ocupación para cada género de
película y grafica los resultados en HTML.

Cada paso se saltea si su colección destino ya tiene datos.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if configPath != "" {
			if err := cfg.LoadFile(configPath); err != nil {
				return err
			}
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if outDir != "" {
			cfg.OutputDir = outDir
		}

		var err error
		logger, err = logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("inicializando logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAll,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "archivo YAML que pisa las variables de entorno")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "logs de debug")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directorio con u.user, u.item y u.data (default DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "directorio de los HTML (default OUTPUT_DIR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "tiempo máximo de la operación")

	runsCmd.Flags().Int64VarP(&runsLimit, "limit", "n", 10, "cantidad de ejecuciones a listar")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext se cancela con Ctrl-C o al vencer --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
