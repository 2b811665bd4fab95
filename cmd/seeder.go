package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/inventory-management/internal/admin"
	"github.com/frahmantamala/inventory-management/internal/auth"
	"github.com/frahmantamala/inventory-management/internal/product"
	"github.com/spf13/cobra"
)

var (
	seedAdminUsername string
	seedAdminPassword string
	seedAdminKey      string
)

// clearOrder respects foreign keys.
var clearOrder = []string{
	"borrow_requests",
	"password_reset_tokens",
	"verification_codes",
	"audit_logs",
	"products",
	"admin_keys",
	"admins",
	"users",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account, an admin key and sample products for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		db := deps.DB

		if clearData {
			for _, table := range clearOrder {
				if err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		_, err = deps.Services.Admin.CreateAdmin(ctx, admin.CreateAdminDTO{
			Username: seedAdminUsername,
			Password: seedAdminPassword,
		})
		switch {
		case err == nil:
			fmt.Println("Seeded admin account:", seedAdminUsername)
		case errors.Is(err, admin.ErrUsernameExists):
			fmt.Println("admin account already exists:", seedAdminUsername)
		default:
			log.Fatalf("failed to seed admin account: %v", err)
		}

		_, err = deps.Services.Auth.CreateAdminKey(ctx, auth.CreateAdminKeyDTO{
			MasterKey:   deps.Config.Security.MasterKey,
			NewAdminKey: seedAdminKey,
		})
		switch {
		case err == nil:
			fmt.Println("Seeded admin key")
		case errors.Is(err, auth.ErrAdminKeyExists):
			fmt.Println("admin key already exists")
		default:
			log.Fatalf("failed to seed admin key: %v", err)
		}

		available := true
		products := []product.CreateProductDTO{
			{ProductCode: "LAP-001", Name: "Dell Latitude 5420", Category: "Laptop", Location: "Room 101", Price: 1200, Quantity: 1, IsAvailable: &available},
			{ProductCode: "PRJ-001", Name: "Epson EB-X51 Projector", Category: "Projector", Location: "AV Room", Price: 650, Quantity: 1, IsAvailable: &available},
			{ProductCode: "CAM-001", Name: "Canon EOS 90D", Category: "Camera", Location: "Media Lab", Price: 1100, Quantity: 1, IsAvailable: &available},
			{ProductCode: "TAB-001", Name: "iPad Air", Category: "Tablet", Location: "Room 204", Price: 600, Quantity: 2, IsAvailable: &available},
		}

		for _, p := range products {
			var exists int64
			if err := db.Table("products").Where("product_code = ?", p.ProductCode).Count(&exists).Error; err != nil {
				log.Fatalf("failed to check product %s: %v", p.ProductCode, err)
			}
			if exists > 0 {
				continue
			}

			if _, err := deps.Services.Product.CreateProduct(ctx, p, nil); err != nil {
				log.Fatalf("failed to insert product %s: %v", p.ProductCode, err)
			}
			fmt.Printf("Seeded product: %s\n", p.ProductCode)
		}

		fmt.Println("Sample data seeded successfully")
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminUsername, "admin-username", "admin", "username of the seeded admin account")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "admin123", "password of the seeded admin account")
	seedCmd.Flags().StringVar(&seedAdminKey, "admin-key", "CWTP-ADMIN-KEY", "admin key to register")
}
