package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"jobboard/internal/app"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/repository/sqlstore"
	"jobboard/internal/security"
)

const (
	adminEmailFlag    = "admin-email"
	adminPasswordFlag = "admin-password"
	adminNameFlag     = "admin-name"
	bcryptCostFlag    = "bcrypt-cost"
)

var seedFlags = map[string]cobraflags.Flag{
	adminEmailFlag: &cobraflags.StringFlag{
		Name:  adminEmailFlag,
		Value: "admin@jobboard.com",
		Usage: "Email of the admin account to create",
	},
	adminPasswordFlag: &cobraflags.StringFlag{
		Name:  adminPasswordFlag,
		Value: "admin123",
		Usage: "Password of the admin account to create",
	},
	adminNameFlag: &cobraflags.StringFlag{
		Name:  adminNameFlag,
		Value: "Admin User",
		Usage: "Display name of the admin account",
	},
	bcryptCostFlag: &cobraflags.StringFlag{
		Name:  bcryptCostFlag,
		Value: "12",
		Usage: "bcrypt cost used to hash the admin password",
	},
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migrate up: %w", err)
				}
				return reportVersion(cmd, m)
			})
		},
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back N migrations, or all of them when N is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("N must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migrate down: %w", err)
				}
				return reportVersion(cmd, m)
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
				return reportVersion(cmd, m)
			})
		},
	}
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations, then create the admin account and sample jobs",
		Long: `Seed brings the schema up to date and loads an admin account plus a few
sample jobs. Running it again leaves existing data untouched.`,
		Args: cobra.NoArgs,
		RunE: seedCommand,
	}
	cobraflags.RegisterMap(cmd, seedFlags)
	return cmd
}

func seedCommand(cmd *cobra.Command, _ []string) error {
	cost, err := strconv.Atoi(seedFlags[bcryptCostFlag].GetString())
	if err != nil {
		return fmt.Errorf("--%s: %w", bcryptCostFlag, err)
	}
	ctx := cmd.Context()
	return withDatabase(ctx, func(db *sql.DB, dialect database.Dialect) error {
		if err := database.MigrateUp(db, dialect); err != nil {
			return err
		}
		users := sqlstore.NewUserRepository(db)
		jobs := sqlstore.NewJobRepository(db)
		applications := sqlstore.NewApplicationRepository(db)
		seeder := app.NewSeeder(
			app.NewUserService(users, security.NewPasswordHasher(cost)),
			app.NewJobService(jobs, applications, app.DefaultPageRules()),
			jobs,
		)
		result, err := seeder.Run(ctx, app.SeedInput{
			AdminEmail:    seedFlags[adminEmailFlag].GetString(),
			AdminPassword: seedFlags[adminPasswordFlag].GetString(),
			AdminName:     seedFlags[adminNameFlag].GetString(),
		})
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, sample jobs created: %d\n", result.AdminCreated, result.JobsCreated)
		return nil
	})
}

func withDatabase(ctx context.Context, fn func(*sql.DB, database.Dialect) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	db, dialect, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db, dialect)
}

func withMigrator(ctx context.Context, fn func(*migrate.Migrate) error) error {
	return withDatabase(ctx, func(db *sql.DB, dialect database.Dialect) error {
		m, err := database.NewMigrator(db, dialect)
		if err != nil {
			return err
		}
		defer func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				slog.Warn("migrator close failed", slog.Any("source_error", srcErr), slog.Any("database_error", dbErr))
			}
		}()
		return fn(m)
	})
}

func reportVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}
