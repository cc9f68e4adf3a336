package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jjc-attendance/internal/app"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/store"
)

func loadConfig() config.App {
	cfg := config.Load()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))
	return cfg
}

// withRuntime opens the backends, runs fn and always closes them again.
func withRuntime(fn func(ctx context.Context, rt *app.Runtime) error) error {
	cfg := loadConfig()
	if cfg.StorageBackend != "postgres" {
		return fmt.Errorf("attendancectl only operates on STORAGE_BACKEND=postgres, got %q", cfg.StorageBackend)
	}
	ctx := context.Background()
	rt, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func migrate() error {
	cfg := loadConfig()
	ctx := context.Background()
	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(ctx, db.Client); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("migration done")
	return nil
}

func createAdmin(name, email, password string) error {
	return withRuntime(func(ctx context.Context, rt *app.Runtime) error {
		u, temp, err := rt.Users.Create(ctx, name, email, password, string(auth.RoleAdmin))
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Printf("admin %s <%s> created with id %s\n", u.Name, u.Email, u.ID)
		if temp != "" {
			fmt.Println("temporary password:", temp)
		}
		return nil
	})
}

func resetPassword(email, password string) error {
	return withRuntime(func(ctx context.Context, rt *app.Runtime) error {
		u, err := rt.UserStore.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		temp, err := rt.Users.ResetPassword(ctx, u.ID, password)
		if err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		fmt.Printf("password of %s reset\n", u.Email)
		if temp != "" {
			fmt.Println("temporary password:", temp)
		}
		return nil
	})
}

func exportReport(email, monthKey string) error {
	return withRuntime(func(ctx context.Context, rt *app.Runtime) error {
		u, err := rt.UserStore.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		id := u.Identity()
		rep, err := rt.Summary.ExportMonthlyReport(ctx, &id, monthKey)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(rep.Filename, []byte(rep.CSV), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rep.Filename, err)
		}
		fmt.Println("wrote", rep.Filename)
		return nil
	})
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "attendancectl",
		Short:         "Administrative tasks for the attendance backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	var createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return createAdmin(name, email, password)
		},
	}
	createAdminCmd.Flags().String("name", "", "display name")
	createAdminCmd.Flags().String("email", "", "login email")
	createAdminCmd.Flags().String("password", "", "password, a temporary one is generated when empty")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")

	var resetCmd = &cobra.Command{
		Use:   "reset-password",
		Short: "Reset the password of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return resetPassword(email, password)
		},
	}
	resetCmd.Flags().String("email", "", "login email")
	resetCmd.Flags().String("password", "", "new password, a temporary one is generated when empty")
	_ = resetCmd.MarkFlagRequired("email")

	var exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the monthly CSV report of a user to the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			month, _ := cmd.Flags().GetString("month")
			return exportReport(email, month)
		},
	}
	exportCmd.Flags().String("email", "", "login email")
	exportCmd.Flags().String("month", "", "month key, YYYY-MM")
	_ = exportCmd.MarkFlagRequired("email")
	_ = exportCmd.MarkFlagRequired("month")

	rootCmd.AddCommand(migrateCmd, createAdminCmd, resetCmd, exportCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
