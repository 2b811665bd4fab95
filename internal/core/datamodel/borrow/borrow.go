package borrow

import "time"

type BorrowRequest struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	ProductID   int64      `gorm:"column:product_id;not null;index"`
	Purpose     string     `gorm:"column:purpose"`
	Status      string     `gorm:"column:status;not null"`
	RequestDate time.Time  `gorm:"column:request_date;not null"`
	BorrowDate  *time.Time `gorm:"column:borrow_date"`
	ReturnDate  *time.Time `gorm:"column:return_date"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

// BorrowRequestRow is the joined read shape used by listings.
type BorrowRequestRow struct {
	BorrowRequest
	Username    string `gorm:"column:username"`
	FullName    string `gorm:"column:full_name"`
	ProductCode string `gorm:"column:product_code"`
	ProductName string `gorm:"column:product_name"`
}
