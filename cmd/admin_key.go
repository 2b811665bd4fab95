package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/inventory-management/internal/auth"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/spf13/cobra"
)

var (
	adminKeyMaster string
	adminKeyNew    string
)

var adminKeyCmd = &cobra.Command{
	Use:   "admin-key",
	Short: "Register a new admin key",
	Long:  `Register a new admin key. The master key is checked exactly as the login page does.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		outcome, err := deps.Services.Auth.CreateAdminKey(ctx, auth.CreateAdminKeyDTO{
			MasterKey:   adminKeyMaster,
			NewAdminKey: adminKeyNew,
		})
		if err != nil {
			log.Fatalf("admin-key: %s", transport.MessageOf(err))
		}
		fmt.Println(outcome.Message)
	},
}

func init() {
	adminKeyCmd.Flags().StringVar(&adminKeyMaster, "master-key", "", "master key (security.master_key)")
	adminKeyCmd.Flags().StringVar(&adminKeyNew, "key", "", "the new admin key")
	_ = adminKeyCmd.MarkFlagRequired("master-key")
	_ = adminKeyCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(adminKeyCmd)
}
