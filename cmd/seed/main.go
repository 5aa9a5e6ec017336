package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/storage"
)

func main() {
	// CLI flags
	dataDir := flag.String("data-dir", "", "Directory holding the JSON data files")
	adminPassword := flag.String("admin-password", "", "Password for the admin account")
	resetMenu := flag.Bool("reset-menu", false, "Overwrite menu.json with the default menu")
	flag.Parse()

	// Fall back to environment variables
	if *dataDir == "" {
		*dataDir = os.Getenv("DATA_DIR")
	}
	if *adminPassword == "" {
		*adminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
	}

	// Fall back to defaults
	if *dataDir == "" {
		*dataDir = "."
	}
	if *adminPassword == "" {
		*adminPassword = "1"
		log.Println("WARNING: Using default admin password '1'. Change immediately in production!")
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Unable to create data dir: %v", err)
	}

	if err := seedMenu(filepath.Join(*dataDir, "menu.json"), *resetMenu); err != nil {
		log.Fatalf("Failed to seed menu: %v", err)
	}
	if err := seedUsers(filepath.Join(*dataDir, "users.json"), *adminPassword); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	if _, err := storage.OpenOrderQueue(filepath.Join(*dataDir, "current_orders.json")); err != nil {
		log.Fatalf("Failed to seed current orders: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Data dir: %s", *dataDir)
}

// seedMenu installs the default menu if none exists.
func seedMenu(path string, reset bool) error {
	menu := storage.NewMenuFile(path)
	if !reset {
		_, err := menu.Load()
		return err
	}
	if err := menu.Save(model.DefaultMenu()); err != nil {
		return fmt.Errorf("save menu: %w", err)
	}
	log.Printf("Reset menu at %s", path)
	return nil
}

// seedUsers writes the default accounts if users.json doesn't exist.
func seedUsers(path, adminPassword string) error {
	if _, err := os.Stat(path); err == nil {
		log.Printf("Users file '%s' already exists, skipping", path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check users: %w", err)
	}

	accounts := make([]model.DefaultAccount, len(storage.DefaultAccounts))
	copy(accounts, storage.DefaultAccounts)
	for i := range accounts {
		if accounts[i].Role == enum.UserRoleAdmin {
			accounts[i].Password = adminPassword
		}
	}

	users, err := storage.HashAccounts(accounts)
	if err != nil {
		return err
	}
	if err := storage.SaveUsers(path, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	log.Printf("Created %d accounts in '%s'", len(users), path)
	return nil
}
