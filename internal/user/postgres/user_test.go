package postgres_test

import (
	"context"
	"errors"
	"testing"

	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	userPostgres "github.com/frahmantamala/inventory-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User Repository", func() {
	var (
		db   *gorm.DB
		repo *userPostgres.UserRepository
		ctx  context.Context
	)

	newUser := func(email, username string) *userDatamodel.User {
		return &userDatamodel.User{
			FullName:     "Test " + username,
			Email:        email,
			Username:     username,
			PasswordHash: "hash",
			Role:         "User",
			IsActive:     true,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&userDatamodel.User{}, &adminDatamodel.Admin{})).To(Succeed())

		repo = userPostgres.NewUserRepository(db)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("assigns sequential id numbers", func() {
			a := newUser("a@example.com", "a")
			b := newUser("b@example.com", "b")
			Expect(repo.Create(ctx, a, nil, nil)).To(Succeed())
			Expect(repo.Create(ctx, b, nil, nil)).To(Succeed())
			Expect(a.IDNumber).To(Equal("21-0001"))
			Expect(b.IDNumber).To(Equal("21-0002"))

			next, err := repo.NextIDNumber(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal("21-0003"))
		})

		It("inserts the admin row in the same transaction", func() {
			u := newUser("boss@example.com", "boss")
			Expect(repo.Create(ctx, u, &adminDatamodel.Admin{Username: "boss", PasswordHash: "hash"}, nil)).To(Succeed())

			var count int64
			Expect(db.Model(&adminDatamodel.Admin{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("rolls everything back when afterInsert fails", func() {
			u := newUser("boss@example.com", "boss")
			err := repo.Create(ctx, u, &adminDatamodel.Admin{Username: "boss", PasswordHash: "hash"},
				func(context.Context, *userDatamodel.User) error { return errors.New("mail down") })
			Expect(err).To(MatchError("mail down"))

			var users, admins int64
			Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
			Expect(db.Model(&adminDatamodel.Admin{}).Count(&admins).Error).To(Succeed())
			Expect(users).To(BeZero())
			Expect(admins).To(BeZero())
		})

		It("enforces unique usernames and emails in the store", func() {
			Expect(repo.Create(ctx, newUser("a@example.com", "a"), nil, nil)).To(Succeed())
			Expect(repo.Create(ctx, newUser("a@example.com", "other"), nil, nil)).To(HaveOccurred())
			Expect(repo.Create(ctx, newUser("other@example.com", "a"), nil, nil)).To(HaveOccurred())
		})
	})

	Describe("lookups", func() {
		BeforeEach(func() {
			Expect(repo.Create(ctx, newUser("zed@example.com", "zed"), nil, nil)).To(Succeed())
			admin := newUser("amy@example.com", "amy")
			admin.Role = "Admin"
			Expect(repo.Create(ctx, admin, nil, nil)).To(Succeed())
		})

		It("lists users ordered by username", func() {
			users, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].Username).To(Equal("amy"))
		})

		It("lists active users by role", func() {
			admins, err := repo.ListActiveByRole(ctx, "Admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(admins).To(HaveLen(1))
			Expect(admins[0].Email).To(Equal("amy@example.com"))
		})

		It("checks uniqueness excluding the given id", func() {
			users, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			amy := users[0]

			taken, err := repo.EmailTaken(ctx, "AMY@example.com", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeTrue())

			taken, err = repo.EmailTaken(ctx, "amy@example.com", amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeFalse())

			taken, err = repo.UsernameTaken(ctx, "zed", amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeTrue())
		})

		It("updates and deletes idempotently", func() {
			users, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			amy := users[0]
			amy.FullName = "Amy Renamed"

			updated, err := repo.Update(ctx, amy)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeTrue())

			got, err := repo.GetByID(ctx, amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.FullName).To(Equal("Amy Renamed"))

			deleted, err := repo.Delete(ctx, amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeTrue())

			deleted, err = repo.Delete(ctx, amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeFalse())

			got, err = repo.GetByID(ctx, amy.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})
	})
})
