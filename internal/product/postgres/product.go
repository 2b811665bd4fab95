package postgres

import (
	"context"
	"errors"
	"strings"

	productDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/product"
	"github.com/frahmantamala/inventory-management/internal/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetAvailable(ctx context.Context) ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	err := r.db.WithContext(ctx).Where("is_available = ?", true).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) Search(ctx context.Context, term string) ([]*productDatamodel.Product, error) {
	like := "%" + escapeLike(strings.ToLower(term)) + "%"
	var products []*productDatamodel.Product
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Where(`(LOWER(product_code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(category, '')) LIKE ? ESCAPE '\')`, like, like, like).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *productDatamodel.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *productDatamodel.Product) (bool, error) {
	res := r.db.WithContext(ctx).Model(&productDatamodel.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":         p.Name,
		"category":     p.Category,
		"location":     p.Location,
		"price":        p.Price,
		"quantity":     p.Quantity,
		"is_available": p.IsAvailable,
		"updated_at":   p.UpdatedAt,
	})
	return res.RowsAffected > 0, res.Error
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&productDatamodel.Product{})
	return res.RowsAffected > 0, res.Error
}
