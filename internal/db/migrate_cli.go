package db

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching.
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}

	action := args[0]

	// Help must not require a reachable database.
	if action == "help" {
		PrintMigrateHelp()
		return
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action {
	case "up":
		if err := database.MigrateUp(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		fmt.Println("Migrations applied")

	case "down":
		if err := database.MigrateDown(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Println("Rolled back one migration")

	case "status":
		version, dirty, err := database.MigrateVersion()
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		fmt.Printf("Version: %d, dirty: %v\n", version, dirty)

	case "version":
		if len(args) < 2 {
			log.Fatal("Usage: race-report migrate version <version_number>")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatalf("Invalid version %q: %v", args[1], err)
		}
		if err := database.MigrateTo(uint(v)); err != nil {
			log.Fatalf("Migration to version %d failed: %v", v, err)
		}
		fmt.Printf("Migrated to version %d\n", v)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: race-report migrate force <version_number>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version %q: %v", args[1], err)
		}
		if err := database.MigrateForce(v); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		fmt.Printf("Forced version to %d\n", v)

	default:
		fmt.Printf("Unknown migrate action: %s\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp() {
	fmt.Println(`Usage: race-report migrate <action>

Actions:
  up                  Apply all pending migrations
  down                Roll back the most recent migration
  status              Show current migration version
  version <n>         Migrate up or down to version n
  force <n>           Force the recorded version to n (recovery only)`)
}
