package dashboard

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/admin"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/borrow"
	"github.com/frahmantamala/inventory-management/internal/product"
	"github.com/frahmantamala/inventory-management/internal/user"
)

type StatsRepositoryAPI interface {
	Totals(ctx context.Context) (Totals, error)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]*product.Product, error)
	Search(ctx context.Context, term string) ([]*product.Product, error)
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	CreateProduct(ctx context.Context, dto product.CreateProductDTO, createdBy *int64) (*product.Product, error)
	UpdateProduct(ctx context.Context, dto product.UpdateProductDTO) (bool, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*user.User, error)
	CreateUser(ctx context.Context, dto user.CreateUserDTO) (*user.User, error)
	UpdateUser(ctx context.Context, dto user.UpdateUserDTO) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type AdminService interface {
	ListAdmins(ctx context.Context) ([]*admin.Admin, error)
	CreateAdmin(ctx context.Context, dto admin.CreateAdminDTO) (*admin.Admin, error)
	UpdateAdmin(ctx context.Context, dto admin.UpdateAdminDTO) (bool, error)
	DeleteAdmin(ctx context.Context, id int64) (bool, error)
}

type BorrowService interface {
	ListAll(ctx context.Context) ([]*borrow.Request, error)
	ListForUser(ctx context.Context, userID int64) ([]*borrow.Request, error)
	RequestBorrow(ctx context.Context, userID int64, dto borrow.RequestBorrowDTO) (*borrow.Request, error)
	Approve(ctx context.Context, id int64) (bool, error)
	Reject(ctx context.Context, id int64) (bool, error)
	MarkReturned(ctx context.Context, id int64) (bool, error)
}

type AuditService interface {
	LoginHistory(ctx context.Context, limit int) ([]*audit.Entry, error)
	UserLoginHistory(ctx context.Context, userID int64, limit int) ([]*audit.Entry, error)
}

// Service composes the read models behind both landing pages.
type Service struct {
	stats    StatsRepositoryAPI
	products ProductService
	users    UserService
	admins   AdminService
	borrows  BorrowService
	audit    AuditService
	logger   *slog.Logger
}

func NewService(stats StatsRepositoryAPI, products ProductService, users UserService, admins AdminService, borrows BorrowService, auditSvc AuditService, logger *slog.Logger) *Service {
	return &Service{
		stats:    stats,
		products: products,
		users:    users,
		admins:   admins,
		borrows:  borrows,
		audit:    auditSvc,
		logger:   logger,
	}
}

func (s *Service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		s.logger.Error("failed to load dashboard totals", "error", err)
		return nil, errors.NewInternalError("Failed to load dashboard.", err)
	}

	dash := &AdminDashboard{Totals: totals}
	if dash.Products, err = s.products.ListProducts(ctx); err != nil {
		return nil, err
	}
	if dash.Users, err = s.users.ListUsers(ctx); err != nil {
		return nil, err
	}
	if dash.Admins, err = s.admins.ListAdmins(ctx); err != nil {
		return nil, err
	}
	if dash.BorrowRequests, err = s.borrows.ListAll(ctx); err != nil {
		return nil, err
	}
	if dash.LoginHistory, err = s.audit.LoginHistory(ctx, audit.DashboardHistoryLimit); err != nil {
		return nil, err
	}
	return dash, nil
}

// UserView lists available products (or the search hits), the user's own
// requests and logins. qrProductID selects a product whose QR code is shown;
// an unknown id just leaves it out.
func (s *Service) UserView(ctx context.Context, userID int64, search string, qrProductID int64) (*UserView, error) {
	view := &UserView{Search: search}

	var err error
	if view.Products, err = s.products.Search(ctx, search); err != nil {
		return nil, err
	}
	if view.BorrowRequests, err = s.borrows.ListForUser(ctx, userID); err != nil {
		return nil, err
	}
	if view.LoginHistory, err = s.audit.UserLoginHistory(ctx, userID, audit.UserHistoryLimit); err != nil {
		return nil, err
	}

	if qrProductID > 0 {
		p, err := s.products.GetProduct(ctx, qrProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			view.QRProduct = p
			view.QRCodeURL = p.QRCodeURL
		}
	}
	return view, nil
}
