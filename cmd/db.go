package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/config"
	"github.com/coffeestats/coffee-trade-etl/internal/db"
)

var migrateCmd = &cobra.Command{Use: "migrate", Short: "migrate database"}

func runMigration(dir db.Direction) {
	cfg := config.GetConfig()
	if err := db.Migrate(db.GetDB(), cfg.DBName, dir); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var migrateUp = &cobra.Command{
	Use:   "up",
	Short: "Forward database migration",
	Long:  "Forward database migration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Forward database migration")
		runMigration(db.Up)
	},
}

var migratedown = &cobra.Command{
	Use:   "down",
	Short: "Reverse database migration",
	Long:  "Reverse database migration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Reverse database migration")
		runMigration(db.Down)
	},
}

var dbCmd = &cobra.Command{Use: "db", Short: "Use to migrate database"}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUp)
	migrateCmd.AddCommand(migratedown)
}
