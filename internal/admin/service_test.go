package admin_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/inventory-management/internal/admin"
	adminPostgres "github.com/frahmantamala/inventory-management/internal/admin/postgres"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAdmin(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Admin Suite")
}

var _ = Describe("Admin Service", func() {
	var (
		db      *gorm.DB
		service *admin.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&adminDatamodel.Admin{})).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = admin.NewService(adminPostgres.NewAdminRepository(db), bcrypt.MinCost, slogger)
		ctx = context.Background()
	})

	It("creates admins with hashed passwords", func() {
		a, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: " root ", Password: "rootpw"})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Username).To(Equal("root"))
		Expect(admin.CreatedMessage(a)).To(Equal("Admin account 'root' created successfully!"))

		var stored adminDatamodel.Admin
		Expect(db.First(&stored, a.ID).Error).To(Succeed())
		Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("rootpw"))).To(Succeed())
	})

	It("requires username and password", func() {
		_, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "root"})
		Expect(err).To(MatchError(admin.ErrRequiredFields))
	})

	It("rejects duplicate usernames", func() {
		_, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "root", Password: "a"})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "root", Password: "b"})
		Expect(err).To(MatchError(admin.ErrUsernameExists))
	})

	It("keeps the password when an update leaves it blank", func() {
		a, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "root", Password: "rootpw"})
		Expect(err).NotTo(HaveOccurred())

		found, err := service.UpdateAdmin(ctx, admin.UpdateAdminDTO{ID: a.ID, Username: "superroot"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		var stored adminDatamodel.Admin
		Expect(db.First(&stored, a.ID).Error).To(Succeed())
		Expect(stored.Username).To(Equal("superroot"))
		Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("rootpw"))).To(Succeed())
	})

	It("lists admins by username and deletes idempotently", func() {
		_, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "zoe", Password: "x"})
		Expect(err).NotTo(HaveOccurred())
		a, err := service.CreateAdmin(ctx, admin.CreateAdminDTO{Username: "abe", Password: "x"})
		Expect(err).NotTo(HaveOccurred())

		admins, err := service.ListAdmins(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(admins).To(HaveLen(2))
		Expect(admins[0].Username).To(Equal("abe"))

		deleted, err := service.DeleteAdmin(ctx, a.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeTrue())

		deleted, err = service.DeleteAdmin(ctx, a.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeFalse())

		found, err := service.UpdateAdmin(ctx, admin.UpdateAdminDTO{ID: a.ID, Username: "ghost"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})
})
