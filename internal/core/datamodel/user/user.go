package user

import "time"

type User struct {
	ID              int64      `gorm:"primaryKey"`
	FullName        string     `gorm:"column:full_name;not null"`
	Email           string     `gorm:"column:email;uniqueIndex;not null"`
	Username        string     `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	Position        string     `gorm:"column:position"`
	IDNumber        string     `gorm:"column:id_number;uniqueIndex"`
	Role            string     `gorm:"column:role;not null"`
	IsEmailVerified bool       `gorm:"column:is_email_verified"`
	IsIDVerified    bool       `gorm:"column:is_id_verified"`
	IsActive        bool       `gorm:"column:is_active"`
	LastLogin       *time.Time `gorm:"column:last_login"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
