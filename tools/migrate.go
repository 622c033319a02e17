package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"parcel-delivery/config"
	"parcel-delivery/constants"
	"parcel-delivery/database"
	"parcel-delivery/logger"
	riderService "parcel-delivery/services/rider"
	userService "parcel-delivery/services/user"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// withDB connects (and migrates) the configured database for one command.
func withDB(run func(ctx context.Context, db *gorm.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDatabase()
		if err != nil {
			return fmt.Errorf("load database config: %w", err)
		}
		db, err := database.InitDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		return run(cmd.Context(), db, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "go run tools/migrate.go",
		Short:         "Operator tasks for the parcel delivery database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		Args:  cobra.NoArgs,
		RunE: withDB(func(context.Context, *gorm.DB, []string) error {
			fmt.Println("✅ Migration completed successfully!")
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give an existing user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(func(ctx context.Context, db *gorm.DB, args []string) error {
			return setRole(ctx, db, args[0], constants.RoleAdmin)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "revoke-admin <email>",
		Short: "Reset an admin back to the user role",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(func(ctx context.Context, db *gorm.DB, args []string) error {
			return setRole(ctx, db, args[0], constants.RoleUser)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "reconcile-riders",
		Short: "Promote users whose rider application was approved before they signed up",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *gorm.DB, _ []string) error {
			promoted, err := riderService.NewRiderService(db, nil).ReconcileRoles(ctx)
			if err != nil {
				return err
			}
			if len(promoted) == 0 {
				fmt.Println("✅ All approved riders already hold the rider role")
				return nil
			}
			logger.Printf("Promoted %d user(s) to rider: %s", len(promoted), strings.Join(promoted, ", "))
			return nil
		}),
	})

	return root
}

func setRole(ctx context.Context, db *gorm.DB, email, role string) error {
	result, err := userService.NewUserService(db).SetRole(ctx, strings.TrimSpace(email), role)
	if err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("%s now has role %s", result.Email, result.Role))
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}
