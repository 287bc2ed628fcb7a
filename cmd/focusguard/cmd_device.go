package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/focusguard/internal/types"
)

func init() {
	rootCmd.AddCommand(deviceCmd)
	deviceCmd.AddCommand(deviceAddCmd, deviceListCmd, deviceRenameCmd, deviceRemoveCmd)

	deviceAddCmd.Flags().String("name", "", "display name for the device")
}

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage paired devices",
}

var deviceAddCmd = &cobra.Command{
	Use:   "add <room>",
	Short: "Pair a new device by its room code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		manager := newFleetManager(cfg, stores)

		name, _ := cmd.Flags().GetString("name")
		dev, err := manager.Register(args[0], name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Paired %q with room %s (id %s).\n", dev.Name, dev.Room, dev.ID)
		return nil
	},
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List paired devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		devices, err := stores.devices.List()
		if err != nil {
			return fmt.Errorf("list devices: %w", err)
		}
		if len(devices) == 0 {
			fmt.Println("No devices paired.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROOM\tNAME\tADDED")
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Room, d.Name, d.AddedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var deviceRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a paired device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		manager := newFleetManager(cfg, stores)

		if err := manager.Rename(types.DeviceID(args[0]), args[1]); err != nil {
			return fmt.Errorf("rename device: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Renamed device %s to %q.\n", args[0], args[1])
		return nil
	},
}

var deviceRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Unpair a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		manager := newFleetManager(cfg, stores)

		if err := manager.Remove(types.DeviceID(args[0])); err != nil {
			return fmt.Errorf("remove device: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Removed device %s.\n", args[0])
		return nil
	},
}
