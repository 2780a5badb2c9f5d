package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"vaops/internal/database"
	"vaops/internal/model"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Run the schema migration and seed the default flight-hour rules on an empty database.`,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		if err := database.Migrate(e.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		n, err := database.SeedDefaults(ctx, e.db)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date, %d hour rules seeded\n", n)
		return nil
	}),
}

var importReplace bool

// importRoutesCmd represents the import-routes command
var importRoutesCmd = &cobra.Command{
	Use:   "import-routes [file.csv]",
	Short: "Import the route catalog from a CSV file",
	Long: "Load flight_number,departure,arrival,duration_minutes rows into the route catalog. " +
		"With --replace every entry missing from the file is deactivated.",
	Args: cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := e.svc.Catalog.Import(ctx, nil, f, importReplace)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "imported %d, skipped %d, deactivated %d\n", res.Imported, res.Skipped, res.Deactivated)
		for _, le := range res.Errors {
			fmt.Fprintf(out, "  line %d: %s\n", le.Line, le.Message)
		}
		return nil
	}),
}

// releaseMaintenanceCmd represents the release-maintenance command
var releaseMaintenanceCmd = &cobra.Command{
	Use:   "release-maintenance",
	Short: "Return airframes whose maintenance window has passed to service",
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		res, err := e.svc.Fleet.ReleaseDueMaintenance(ctx)
		if err != nil {
			return err
		}
		if len(res.Released) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "released: %s\n", strings.Join(res.Released, ", "))
		return nil
	}),
}

// grantAdminCmd represents the grant-admin command
var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin [email]",
	Short: "Give an existing account the admin role",
	Long:  `Bootstrap the first administrator. The account is also marked approved.`,
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		p, err := e.repos.Profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(args[0])))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no account with email %s", args[0])
		}
		if err != nil {
			return err
		}
		if err := e.repos.Roles.Grant(ctx, p.ID, model.RoleAdmin); err != nil {
			return err
		}
		if err := e.repos.Profiles.SetApproved(ctx, p.ID, true); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", p.Email)
		return nil
	}),
}

func init() {
	importRoutesCmd.Flags().BoolVar(&importReplace, "replace", false, "deactivate catalog entries missing from the file")
}
