package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/focusguard/internal/tui"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historySessionsCmd, historyClearCmd)

	historyListCmd.Flags().Int("limit", 0, "show at most N entries")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded distractions and sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list [room]",
	Short: "List recorded distractions, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		room, err := resolveRoom(args, stores.devices)
		if err != nil {
			return err
		}
		events, err := stores.history.List(room)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(events) {
			events = events[:limit]
		}
		if len(events) == 0 {
			fmt.Println("No distractions recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tREASON\tID")
		for _, ev := range events {
			reason := ev.Reason
			if reason == "" {
				reason = "distracted"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ev.At.Local().Format("2006-01-02 15:04:05"), reason, ev.ID)
		}
		return w.Flush()
	},
}

var historySessionsCmd = &cobra.Command{
	Use:   "sessions [room]",
	Short: "List archived sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		room, err := resolveRoom(args, stores.devices)
		if err != nil {
			return err
		}
		records, err := stores.sessions.List(room)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No sessions archived.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tSTARTED\tDURATION")
		for _, rec := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\n", rec.SessionID, rec.StartedAt.Local().Format("2006-01-02 15:04"), tui.FormatElapsed(rec.Seconds))
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear [room]",
	Short: "Delete all recorded distractions for a room",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		room, err := resolveRoom(args, stores.devices)
		if err != nil {
			return err
		}
		if err := stores.history.Clear(room); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Cleared history for room %s.\n", room)
		return nil
	},
}
