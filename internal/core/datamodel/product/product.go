package product

import "time"

type Product struct {
	ID              int64     `gorm:"primaryKey"`
	ProductCode     string    `gorm:"column:product_code;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	Description     string    `gorm:"column:description"`
	Category        string    `gorm:"column:category"`
	Price           float64   `gorm:"column:price;type:numeric(12,2)"`
	Quantity        int       `gorm:"column:quantity"`
	Location        string    `gorm:"column:location"`
	SerialNumber    string    `gorm:"column:serial_number"`
	ConditionStatus string    `gorm:"column:condition_status"`
	IsAvailable     bool      `gorm:"column:is_available"`
	ImageURL        string    `gorm:"column:image_url"`
	QRCodeURL       string    `gorm:"column:qr_code_url"`
	CreatedBy       *int64    `gorm:"column:created_by"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
