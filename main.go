package main

import (
	"fmt"
	"os"

	"food-rescue-api/config"
	"food-rescue-api/logger"
	"food-rescue-api/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "food-rescue-api",
	Short: "Food Rescue Coordination API",
	Long: "Coordinates surplus-food donations between donors, NGOs and volunteers: " +
		"donation and request lifecycles, matching, and delivery orders.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the YAML config file (optional)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
}

// boot loads config, installs the logger and opens the database.
func boot() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Setup(cfg.Env)

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newServices(cfg *config.Config, db *gorm.DB) *services.Services {
	return services.New(db,
		services.WithRolePolicy(services.DefaultRolePolicy{AllowSelfAdmin: cfg.Registration.AllowAdmin}),
	)
}
