package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"clinic-booking-be/internal/config"
	"clinic-booking-be/internal/db"

	"github.com/spf13/cobra"
)

// openDBFunc is swapped in tests.
var openDBFunc = func() (*sql.DB, error) {
	return db.NewDatabase(config.LoadConfig())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the clinic booking database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("dir", "./migrations", "Path to migrations directory")

	root.AddCommand(
		migrationCmd("up", "Apply pending migrations", runMigrationsUp),
		migrationCmd("down", "Roll back the last applied migration", runMigrationsDown),
		migrationCmd("status", "Show migration status", migrationStatus),
	)
	return root
}

func migrationCmd(use, short string, fn func(db *sql.DB, files []string, out io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			database, err := openDBFunc()
			if err != nil {
				return err
			}
			defer database.Close()

			return run(database, dir, cmd.OutOrStdout(), fn)
		},
	}
}

func run(db *sql.DB, migrationsDir string, out io.Writer, fn func(*sql.DB, []string, io.Writer) error) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	slices.Sort(files)

	return fn(db, files, out)
}

func runMigrationsUp(db *sql.DB, files []string, out io.Writer) error {
	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		upSQL := extractMigrationPart(string(content), "Up")
		fmt.Fprintf(out, "Applying migration: %s\n", version)

		if err := applyInTx(db, upSQL, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("migration failed (%s): %w", version, err)
		}
		applied++
	}

	fmt.Fprintf(out, "Applied %d migration(s).\n", applied)
	return nil
}

func runMigrationsDown(db *sql.DB, files []string, out io.Writer) error {
	var lastVersion string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintln(out, "No migrations to roll back.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	filePath := ""
	for _, f := range files {
		if filepath.Base(f) == lastVersion {
			filePath = f
			break
		}
	}
	if filePath == "" {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	downSQL := extractMigrationPart(string(content), "Down")
	fmt.Fprintf(out, "Rolling back migration: %s\n", lastVersion)

	if err := applyInTx(db, downSQL, `DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
		return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
	}
	return nil
}

func migrationStatus(db *sql.DB, files []string, out io.Writer) error {
	rows, err := db.Query(`SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := map[string]time.Time{}
	for rows.Next() {
		var (
			version string
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return err
		}
		applied[version] = at
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%-50s %-10s %s\n", "VERSION", "STATUS", "APPLIED AT")
	for _, f := range files {
		version := filepath.Base(f)
		status, appliedAt := "pending", ""
		if at, ok := applied[version]; ok {
			status, appliedAt = "applied", at.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%-50s %-10s %s\n", version, status, appliedAt)
	}
	return nil
}

// applyInTx runs a migration body and its bookkeeping statement atomically.
func applyInTx(db *sql.DB, body, record, version string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(body); err != nil {
		return err
	}
	if _, err := tx.Exec(record, version); err != nil {
		return fmt.Errorf("failed to record migration version: %w", err)
	}
	return tx.Commit()
}

func extractMigrationPart(content string, section string) string {
	lines := strings.Split(content, "\n")
	var part strings.Builder
	var inPart bool

	for _, line := range lines {
		if strings.Contains(line, "-- +migrate "+section) {
			inPart = true
			continue
		}
		if inPart && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
