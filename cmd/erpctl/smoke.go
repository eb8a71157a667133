package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var smokeServerURL string

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Check that a running server is healthy",
	Long: `smoke probes the server health endpoint and verifies database
connectivity from this host. Exits non-zero on any failure, for use in
deployment pipelines and container health checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(smokeServerURL + "/healthz")
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
		}

		gdb, err := openDB()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("access connection pool: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}

		fmt.Println("ok")
		return nil
	},
}

func init() {
	smokeCmd.Flags().StringVar(&smokeServerURL, "server", envOrDefault("ERP_SERVER_URL", "http://localhost:8080"), "Server base URL")
	rootCmd.AddCommand(smokeCmd)
}
