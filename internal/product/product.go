package product

import (
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	productDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/product"
)

const DefaultCondition = "Good"

type Product struct {
	ID              int64     `json:"id"`
	ProductCode     string    `json:"product_code"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Quantity        int       `json:"quantity"`
	Location        string    `json:"location"`
	SerialNumber    string    `json:"serial_number"`
	ConditionStatus string    `json:"condition_status"`
	IsAvailable     bool      `json:"is_available"`
	ImageURL        string    `json:"image_url"`
	QRCodeURL       string    `json:"qr_code_url"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrRequiredFields = errors.NewValidationError("Product code and name are required.", errors.ErrCodeValidationFailed)
	ErrNotFound       = errors.NewNotFoundError("Product not found.", errors.ErrCodeNotFound)
)

// QRCodeURL builds the QR image url for a product code from base, which is
// expected to end with the data parameter.
func QRCodeURL(base, productCode string) string {
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return ""
	}
	return base + url.QueryEscape(productCode)
}

func FromDataModel(p *productDatamodel.Product) *Product {
	return &Product{
		ID:              p.ID,
		ProductCode:     p.ProductCode,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		Price:           p.Price,
		Quantity:        p.Quantity,
		Location:        p.Location,
		SerialNumber:    p.SerialNumber,
		ConditionStatus: p.ConditionStatus,
		IsAvailable:     p.IsAvailable,
		ImageURL:        p.ImageURL,
		QRCodeURL:       p.QRCodeURL,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func FromDataModels(rows []*productDatamodel.Product) []*Product {
	out := make([]*Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out
}
