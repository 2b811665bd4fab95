package product

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

type CreateProductDTO struct {
	ProductCode     string  `json:"product_code"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Price           float64 `json:"price" validate:"gte=0"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
	Location        string  `json:"location"`
	SerialNumber    string  `json:"serial_number"`
	ConditionStatus string  `json:"condition_status"`
	IsAvailable     *bool   `json:"is_available"`
	ImageURL        string  `json:"image_url" validate:"omitempty,url"`
}

func (d *CreateProductDTO) Normalize() {
	d.ProductCode = strings.TrimSpace(d.ProductCode)
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Location = strings.TrimSpace(d.Location)
	d.ConditionStatus = strings.TrimSpace(d.ConditionStatus)
	if d.ConditionStatus == "" {
		d.ConditionStatus = DefaultCondition
	}
}

func (d CreateProductDTO) Validate() error {
	if d.ProductCode == "" || d.Name == "" {
		return ErrRequiredFields
	}
	return validation.Struct(d)
}

// UpdateProductDTO carries the fields editable from the dashboard.
type UpdateProductDTO struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	IsAvailable bool    `json:"is_available"`
}

func (d *UpdateProductDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Location = strings.TrimSpace(d.Location)
}

func (d UpdateProductDTO) Validate() error {
	return validation.Struct(d)
}
