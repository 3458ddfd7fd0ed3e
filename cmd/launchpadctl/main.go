// Command launchpadctl runs maintenance tasks against the launchpad database:
// migrations, demo data and admin management.
package main

import (
	"fmt"
	"os"

	"launchpad/internal/config"
	"launchpad/internal/database"

	"gorm.io/gorm"
)

func openDatabase() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.Connect(cfg)
}

func main() {
	if err := newRootCmd(openDatabase).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
