package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/internal/db"
)

var dbCfg db.Config

var rootCmd = &cobra.Command{
	Use:   "erpctl",
	Short: "Operational CLI for the ERP core",
	Long: `erpctl performs operational tasks against the ERP database directly:
seeding the first admin account, inspecting and deciding approval requests,
and running a deployment smoke check.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbCfg.Host, "db-host", envOrDefault("DB_HOST", "127.0.0.1"), "Database host")
	rootCmd.PersistentFlags().IntVar(&dbCfg.Port, "db-port", envIntOrDefault("DB_PORT", 5432), "Database port")
	rootCmd.PersistentFlags().StringVar(&dbCfg.User, "db-user", envOrDefault("DB_USER", "erp"), "Database user")
	rootCmd.PersistentFlags().StringVar(&dbCfg.Password, "db-password", os.Getenv("DB_PASSWORD"), "Database password")
	rootCmd.PersistentFlags().StringVar(&dbCfg.Name, "db-name", envOrDefault("DB_NAME", "erp"), "Database name")
	rootCmd.PersistentFlags().StringVar(&dbCfg.SSLMode, "db-sslmode", envOrDefault("DB_SSLMODE", "disable"), "Database sslmode")
}

func openDB() (*gorm.DB, error) {
	return db.Open(dbCfg)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
