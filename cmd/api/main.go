package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"vet-appointments/internal/config"
	"vet-appointments/internal/domain/agenda"
	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/router"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "vet-appointments",
		Short:         "Agenda de citas de la clínica veterinaria",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "archivo de config opcional (yaml/json/toml)")

	rootCmd.AddCommand(serveCmd(&cfgFile))
	rootCmd.AddCommand(calendarCmd(&cfgFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load(cfgFile string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	return cfg, log, nil
}

func serveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgFile)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, closeDir, err := router.OpenDirectory(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer closeDir()

	verifier, authn, err := router.OpenAuth(cfg)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if verifier == nil {
		log.Warn("JWT_SECRET not set: dev auth via X-Debug-User-ID", nil)
	}

	fallback := agenda.ParseFallback(cfg.AgendaFallback)
	if _, ok := fallback.(agenda.SampleFallback); ok {
		log.Warn("agenda sample fallback enabled (dev only)", nil)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.NewRouter(router.Options{
			AuthVerifier:  verifier,
			Authenticator: authn,
			Directory:     dir,
			Logger:        log,
			Fallback:      fallback,
			Metrics:       reg,

			SessionIdleTTL: cfg.AgendaSessionTTL,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2*cfg.DirectoryTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func calendarCmd(cfgFile *string) *cobra.Command {
	var (
		month    string
		clientID int64
		vetID    int64
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Imprime la grilla de un mes con las citas del Directorio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgFile)
			if err != nil {
				return err
			}

			m := calendar.MonthOf(time.Now())
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
				m = calendar.MonthOf(t)
			}

			dir, closeDir, err := router.OpenDirectory(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeDir()

			svc := appointments.NewService(dir)
			var items []appointments.Detail
			if clientID > 0 {
				items, err = svc.ListByClient(cmd.Context(), clientID)
			} else {
				var vet *int64
				if vetID > 0 {
					vet = &vetID
				}
				last := m.First().AddDate(0, 0, m.DaysIn()-1)
				items, err = svc.ListByRange(cmd.Context(), appointments.DateRange{Start: m.First(), End: last}, vet)
			}
			if err != nil {
				return err
			}

			return calendar.Render(cmd.OutOrStdout(), m, calendar.Project(m, items))
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "mes YYYY-MM (default: mes actual)")
	cmd.Flags().Int64Var(&clientID, "client", 0, "id de cliente (lista sus citas)")
	cmd.Flags().Int64Var(&vetID, "veterinarian", 0, "id del veterinario (solo por rango)")
	return cmd
}
