package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
)

const (
	DashboardHistoryLimit = 50
	UserHistoryLimit      = 20
)

type Entry struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Entity    string    `json:"table_name,omitempty"`
	RecordID  *int64    `json:"record_id,omitempty"`
	NewValues string    `json:"new_values,omitempty"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

func FromDataModel(l *auditDatamodel.AuditLog) *Entry {
	return &Entry{
		ID:        l.ID,
		UserID:    l.UserID,
		Username:  l.Username,
		Action:    l.Action,
		Entity:    l.Entity,
		RecordID:  l.RecordID,
		NewValues: l.NewValues,
		IPAddress: l.IPAddress,
		CreatedAt: l.CreatedAt,
	}
}

func FromDataModels(logs []*auditDatamodel.AuditLog) []*Entry {
	out := make([]*Entry, 0, len(logs))
	for _, l := range logs {
		out = append(out, FromDataModel(l))
	}
	return out
}
