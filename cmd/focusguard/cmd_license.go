package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(licenseCmd)
	licenseCmd.AddCommand(licenseVerifyCmd, licenseStatusCmd)
}

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Manage the pro license",
}

var licenseVerifyCmd = &cobra.Command{
	Use:   "verify <key>",
	Short: "Verify a license key with the engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		stores := openStores(cfg)
		manager := newFleetManager(cfg, stores)

		ent, err := manager.VerifyLicense(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "License verified: %s tier.\n", ent.Tier)
		return nil
	},
}

var licenseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current entitlement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		stores := openStores(cfg)
		manager := newFleetManager(cfg, stores)

		ent := manager.RefreshEntitlement(cmd.Context())
		if !ent.Pro {
			fmt.Println("Free tier. Sessions are capped; run 'focusguard license verify <key>' to unlock.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "Pro tier (%s), verified %s.\n", ent.Tier, ent.VerifiedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}
