package product

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	productDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/product"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*productDatamodel.Product, error)
	GetAvailable(ctx context.Context) ([]*productDatamodel.Product, error)
	Search(ctx context.Context, term string) ([]*productDatamodel.Product, error)
	GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error)
	Create(ctx context.Context, p *productDatamodel.Product) error
	Update(ctx context.Context, p *productDatamodel.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	qrBaseURL string
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, qrBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		qrBaseURL: qrBaseURL,
		logger:    logger,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, errors.NewInternalError("Failed to load products.", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) ListAvailable(ctx context.Context) ([]*Product, error) {
	rows, err := s.repo.GetAvailable(ctx)
	if err != nil {
		s.logger.Error("failed to list available products", "error", err)
		return nil, errors.NewInternalError("Failed to load products.", err)
	}
	return FromDataModels(rows), nil
}

// Search matches code, name or category case-insensitively among available
// products. A blank term returns every available product.
func (s *Service) Search(ctx context.Context, term string) ([]*Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListAvailable(ctx)
	}
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		s.logger.Error("failed to search products", "term", term, "error", err)
		return nil, errors.NewInternalError("Failed to search products.", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load product.", err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) QRCodeURL(productCode string) string {
	return QRCodeURL(s.qrBaseURL, productCode)
}

// CreateProduct stores a new product. createdBy is the acting admin, if known.
func (s *Service) CreateProduct(ctx context.Context, dto CreateProductDTO, createdBy *int64) (*Product, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	available := true
	if dto.IsAvailable != nil {
		available = *dto.IsAvailable
	}

	p := &productDatamodel.Product{
		ProductCode:     dto.ProductCode,
		Name:            dto.Name,
		Description:     dto.Description,
		Category:        dto.Category,
		Price:           dto.Price,
		Quantity:        dto.Quantity,
		Location:        dto.Location,
		SerialNumber:    dto.SerialNumber,
		ConditionStatus: dto.ConditionStatus,
		IsAvailable:     available,
		ImageURL:        dto.ImageURL,
		QRCodeURL:       s.QRCodeURL(dto.ProductCode),
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create product", "error", err)
		return nil, errors.NewInternalError("Failed to create product.", err)
	}

	s.logger.Info("product created", "product_id", p.ID, "product_code", p.ProductCode)
	return FromDataModel(p), nil
}

// UpdateProduct reports false when no product has the given id.
func (s *Service) UpdateProduct(ctx context.Context, dto UpdateProductDTO) (bool, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return false, err
	}

	current, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return false, errors.NewInternalError("Failed to load product.", err)
	}
	if current == nil {
		return false, nil
	}

	current.Name = dto.Name
	current.Category = dto.Category
	current.Location = dto.Location
	current.Price = dto.Price
	current.Quantity = dto.Quantity
	current.IsAvailable = dto.IsAvailable
	current.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		s.logger.Error("failed to update product", "product_id", dto.ID, "error", err)
		return false, errors.NewInternalError("Failed to update product.", err)
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete product", "product_id", id, "error", err)
		return false, errors.NewInternalError("Failed to delete product.", err)
	}
	return deleted, nil
}
