package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/focusguard/internal/evidence"
	"github.com/user/focusguard/internal/maintenance"
	"github.com/user/focusguard/internal/notify"
	"github.com/user/focusguard/internal/reconcile"
	"github.com/user/focusguard/internal/statusapi"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [room]",
	Short: "Start the focusguard daemon",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "focusguard.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	stores := openStores(cfg)
	manager := newFleetManager(cfg, stores)

	room, err := resolveRoom(args, stores.devices)
	if err != nil {
		return err
	}
	if _, err := ensurePaired(manager, stores.devices, room, ""); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	manager.RefreshEntitlement(ctx)

	reg := notify.NewRegistry()
	reg.Register("terminal", notify.Terminal())
	if cfg.Telegram.Token != "" {
		ch, err := notify.Telegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("telegram notifications disabled", "error", err)
		} else {
			reg.Register("telegram", ch)
		}
	}

	engineClient := newEngineClient(cfg)
	recorder := evidence.New(room, stores.history, engineClient, reg, cfg.Sync.DebounceTicks)
	rec := reconcile.New(room, engineClient, stores.sessions, recorder, reg, manager.IsPro, reconcile.Options{
		PollInterval:   time.Duration(cfg.Sync.PollIntervalSecs) * time.Second,
		MinSessionSecs: cfg.Sync.MinSessionSecs,
		CapSeconds:     cfg.Policy.FreeCapSecs,
	})

	rec.OnCapReached = func() {
		slog.Warn("free-tier session cap reached; session terminated", "room", room)
	}

	retention := time.Duration(cfg.History.RetentionHours) * time.Hour
	sched := maintenance.New(stores.history, stores.devices, retention, func(ctx context.Context) {
		manager.RefreshEntitlement(ctx)
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer sched.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rec.Run(ctx)
	})

	if cfg.HTTP.Enabled {
		api := statusapi.NewServer(rec, stores.history, stores.devices)
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: api,
		}
		g.Go(func() error {
			slog.Info("status API started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("status API: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	slog.Info("focusguard started",
		"room", room,
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"poll_interval_secs", cfg.Sync.PollIntervalSecs,
		"pid_file", pidPath,
	)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("shutting down")
	return nil
}
