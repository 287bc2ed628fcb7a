package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/user/focusguard/internal/evidence"
	"github.com/user/focusguard/internal/notify"
	"github.com/user/focusguard/internal/reconcile"
	"github.com/user/focusguard/internal/tui"
	"github.com/user/focusguard/internal/types"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("plain", false, "print state lines instead of the interactive screen")
	watchCmd.Flags().String("name", "", "display name when pairing a new room")
}

var watchCmd = &cobra.Command{
	Use:   "watch [room]",
	Short: "Watch a room's focus session live",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	stores := openStores(cfg)
	manager := newFleetManager(cfg, stores)

	room, err := resolveRoom(args, stores.devices)
	if err != nil {
		return err
	}

	// Pair implicitly when watching a room for the first time.
	name, _ := cmd.Flags().GetString("name")
	paired, err := ensurePaired(manager, stores.devices, room, name)
	if err != nil {
		return err
	}
	if paired {
		fmt.Fprintf(os.Stderr, "Paired with room %s.\n", room)
	}

	seen, err := stores.prefs.OnboardingSeen()
	if err == nil && !seen {
		fmt.Fprintln(os.Stderr, "Tip: leave this running while you work. Distractions are recorded under 'focusguard history'.")
		_ = stores.prefs.SetOnboardingSeen()
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

	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		return runWatchPlain(ctx, rec)
	}

	model := tui.NewModel(room, rec.Subscribe(), stores.history, manager.IsPro)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	rec.OnCapReached = func() {
		program.Send(tui.CapReached())
	}

	go func() {
		if err := rec.Run(ctx); err != nil {
			slog.Error("reconciler stopped", "error", err)
		}
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run watch screen: %w", err)
	}
	return nil
}

// runWatchPlain prints one line per state change. Useful for scripts and
// terminals without TTY support.
func runWatchPlain(ctx context.Context, rec *reconcile.Reconciler) error {
	updates := rec.Subscribe()
	go func() {
		if err := rec.Run(ctx); err != nil {
			slog.Error("reconciler stopped", "error", err)
		}
	}()

	var last types.SessionState
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-updates:
			if st == last {
				continue
			}
			last = st
			fmt.Printf("%s  %s  %s  session=%d\n",
				time.Now().Format("15:04:05"), st.Status, tui.FormatElapsed(st.Elapsed), st.SessionID)
		}
	}
}
