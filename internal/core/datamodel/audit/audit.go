package audit

import "time"

const ActionLogin = "Login"
const ActionLogout = "Logout"

type AuditLog struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    *int64    `gorm:"column:user_id;index"`
	Username  string    `gorm:"column:username"`
	Action    string    `gorm:"column:action;not null;index"`
	Entity    string    `gorm:"column:table_name"`
	RecordID  *int64    `gorm:"column:record_id"`
	NewValues string    `gorm:"column:new_values"`
	IPAddress string    `gorm:"column:ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
