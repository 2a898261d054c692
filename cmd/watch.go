package cmd

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var (
	watchInterval    time.Duration
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live presale dashboard",
	Long: `Show a live dashboard of the presale that refreshes on an interval.

The refresh interval comes from --interval, then PRESALECTL_REFRESH_INTERVAL,
then the config file (default 10s). With --metrics-addr the refresh and
transaction counters are served in Prometheus format on /metrics.

Keyboard controls:
  r   refresh now
  c   clear the current error
  q   quit

Examples:
  presalectl watch
  presalectl watch --chain localhost --interval 3s
  presalectl watch --metrics-addr :9101`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var opts []presale.Option
		var reg *prometheus.Registry
		if watchMetricsAddr != "" {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			opts = append(opts, presale.WithRegisterer(reg))
		}

		// An unsupported chain is shown on the dashboard, not returned.
		s, err := openSession(ctx, readOnly, opts...)
		if s == nil {
			return err
		}
		if err != nil {
			log.Debug("initial chain switch failed", zap.Error(err))
		}

		interval := watchInterval
		if interval <= 0 {
			interval = cfg.RefreshEvery()
		}

		var wg sync.WaitGroup
		var srv *http.Server
		if reg != nil {
			srv = &http.Server{
				Addr:              watchMetricsAddr,
				Handler:           metricsMux(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped", zap.String("addr", watchMetricsAddr), zap.Error(err))
				}
			}()
		}

		updates, unsubscribe := s.engine.Subscribe()
		defer unsubscribe()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.engine.Run(ctx, interval) //nolint:errcheck
		}()

		err = ui.RunDashboard(s.engine.View(), updates, ui.DashboardOptions{
			ChainName: chainLabel,
			TxURL:     txURL,
			Refresh: func() error {
				rctx, done := context.WithTimeout(ctx, interval)
				defer done()
				return s.engine.Refresh(rctx)
			},
			ClearErr: s.engine.ClearErr,
		})

		cancel()
		if srv != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			srv.Shutdown(shutdownCtx) //nolint:errcheck
			done()
		}
		wg.Wait()
		return err
	},
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default from config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}
