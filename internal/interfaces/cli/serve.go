package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/patlytics/patscope/internal/interfaces/http"
)

// NewServeCmd creates the serve command: the report API server.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API",
		Long: "Serve exposes run history, on-demand scoring, health and Prometheus\n" +
			"metrics over HTTP until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, runs, err := openDatabase(ctx, cliCtx)
			if err != nil {
				return err
			}
			defer conn.Close()

			collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
				Namespace:            "patscope",
				EnableProcessMetrics: true,
				EnableGoMetrics:      true,
			}, cliCtx.Logger)
			if err != nil {
				return err
			}
			metrics := prometheus.NewAppMetrics(collector)

			router := httpapi.NewRouter(httpapi.RouterConfig{
				Runs:           runs,
				Thresholds:     cfg.Scoring,
				Health:         conn,
				Metrics:        metrics,
				MetricsHandler: collector.Handler(),
				Mode:           cfg.Server.Mode,
				Logger:         cliCtx.Logger,
			})
			server := httpapi.NewServer(cfg.Server, router, cliCtx.Logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			cliCtx.Logger.Info("signal received, shutting down", logging.Int("port", cfg.Server.Port))
			if err := server.Stop(context.Background()); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
