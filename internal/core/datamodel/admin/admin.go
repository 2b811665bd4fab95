package admin

import "time"

type Admin struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Admin) TableName() string {
	return "admins"
}

// AdminKey stores the SHA-256 hex digest of the shared admin secret.
type AdminKey struct {
	ID        int64     `gorm:"primaryKey"`
	KeyHash   string    `gorm:"column:key_hash;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminKey) TableName() string {
	return "admin_keys"
}
