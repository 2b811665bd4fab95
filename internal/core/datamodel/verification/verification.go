package verification

import "time"

const TypeLoginOTP = "login_otp"

type VerificationCode struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Type      string    `gorm:"column:type;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	IsUsed    bool      `gorm:"column:is_used"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	IsUsed    bool      `gorm:"column:is_used"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
