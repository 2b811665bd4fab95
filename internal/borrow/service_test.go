package borrow_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/inventory-management/internal/borrow"
	borrowPostgres "github.com/frahmantamala/inventory-management/internal/borrow/postgres"
	borrowDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/borrow"
	productDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/product"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBorrow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Borrow Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var _ = Describe("Borrow Service", func() {
	var (
		db        *gorm.DB
		service   *borrow.Service
		publisher *recordingPublisher
		ctx       context.Context
		requester *userDatamodel.User
		laptop    *productDatamodel.Product
	)

	productAvailable := func(id int64) bool {
		var p productDatamodel.Product
		Expect(db.First(&p, id).Error).NotTo(HaveOccurred())
		return p.IsAvailable
	}

	statusOf := func(id int64) string {
		var r borrowDatamodel.BorrowRequest
		Expect(db.First(&r, id).Error).NotTo(HaveOccurred())
		return r.Status
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

		Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&productDatamodel.Product{},
			&borrowDatamodel.BorrowRequest{},
		)).To(Succeed())

		requester = &userDatamodel.User{
			FullName:     "Jane Doe",
			Email:        "jane@example.com",
			Username:     "jane",
			PasswordHash: "x",
			IDNumber:     "21-0001",
			Role:         "User",
			IsActive:     true,
		}
		Expect(db.Create(requester).Error).NotTo(HaveOccurred())

		laptop = &productDatamodel.Product{ProductCode: "LAP-01", Name: "Laptop", IsAvailable: true}
		Expect(db.Create(laptop).Error).NotTo(HaveOccurred())

		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = borrow.NewService(borrowPostgres.NewBorrowRepository(db), publisher, slogger)
		ctx = context.Background()
	})

	Describe("RequestBorrow", func() {
		It("creates a pending request and announces it", func() {
			req, err := service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{ProductID: laptop.ID, Purpose: "  field trip "})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(borrow.StatusPending))
			Expect(req.Purpose).To(Equal("field trip"))
			Expect(req.Username).To(Equal("jane"))
			Expect(req.ProductName).To(Equal("Laptop"))
			Expect(req.BorrowDate).To(BeNil())
			Expect(publisher.Types()).To(ConsistOf(events.EventTypeBorrowRequested))
			Expect(productAvailable(laptop.ID)).To(BeTrue())
		})

		It("requires a product", func() {
			_, err := service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{})
			Expect(err).To(MatchError(borrow.ErrProductRequired))
		})

		It("rejects unknown products", func() {
			_, err := service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{ProductID: 999})
			Expect(err).To(MatchError(borrow.ErrProductNotFound))
		})

		It("rejects unavailable products", func() {
			Expect(db.Model(laptop).Update("is_available", false).Error).NotTo(HaveOccurred())
			_, err := service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{ProductID: laptop.ID})
			Expect(err).To(MatchError(borrow.ErrProductUnavailable))
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("rejects unknown requesters", func() {
			_, err := service.RequestBorrow(ctx, 999, borrow.RequestBorrowDTO{ProductID: laptop.ID})
			Expect(err).To(MatchError(borrow.ErrUserNotFound))
		})
	})

	Describe("decisions", func() {
		var pending *borrow.Request

		BeforeEach(func() {
			var err error
			pending, err = service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{ProductID: laptop.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves a pending request and marks the product unavailable", func() {
			found, err := service.Approve(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(statusOf(pending.ID)).To(Equal(string(borrow.StatusApproved)))
			Expect(productAvailable(laptop.ID)).To(BeFalse())
			Expect(publisher.Types()).To(ContainElement(events.EventTypeBorrowApproved))

			rows, err := service.ListForUser(ctx, requester.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].BorrowDate).NotTo(BeNil())
		})

		It("rejects a pending request without touching the product", func() {
			found, err := service.Reject(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(statusOf(pending.ID)).To(Equal(string(borrow.StatusRejected)))
			Expect(productAvailable(laptop.ID)).To(BeTrue())
			Expect(publisher.Types()).To(ContainElement(events.EventTypeBorrowRejected))
		})

		It("refuses to approve twice", func() {
			_, err := service.Approve(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, pending.ID)
			Expect(err).To(MatchError(borrow.ErrNotPendingApprove))
			_, err = service.Reject(ctx, pending.ID)
			Expect(err).To(MatchError(borrow.ErrNotPendingReject))
		})

		It("returns an approved request and frees the product", func() {
			_, err := service.Approve(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())

			found, err := service.MarkReturned(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(statusOf(pending.ID)).To(Equal(string(borrow.StatusReturned)))
			Expect(productAvailable(laptop.ID)).To(BeTrue())
		})

		It("does not return a pending request", func() {
			_, err := service.MarkReturned(ctx, pending.ID)
			Expect(err).To(MatchError(borrow.ErrNotReturnable))
			Expect(statusOf(pending.ID)).To(Equal(string(borrow.StatusPending)))
		})

		It("treats unknown ids as a no-op", func() {
			found, err := service.Approve(ctx, 12345)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
			Expect(productAvailable(laptop.ID)).To(BeTrue())
		})
	})

	Describe("listing", func() {
		It("orders requests newest first", func() {
			older := &borrowDatamodel.BorrowRequest{
				UserID: requester.ID, ProductID: laptop.ID, Status: "Returned",
				RequestDate: time.Now().UTC().Add(-48 * time.Hour),
			}
			Expect(db.Create(older).Error).NotTo(HaveOccurred())
			newer, err := service.RequestBorrow(ctx, requester.ID, borrow.RequestBorrowDTO{ProductID: laptop.ID})
			Expect(err).NotTo(HaveOccurred())

			all, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].ID).To(Equal(newer.ID))
			Expect(all[1].ProductCode).To(Equal("LAP-01"))

			mine, err := service.ListForUser(ctx, requester.ID+1)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(BeEmpty())
		})
	})
})
