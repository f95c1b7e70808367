package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

const dispatchTableName = "service_notifiarr_dispatches"

type dispatchRecord struct {
	bun.BaseModel `bun:"table:service_notifiarr_dispatches,alias:snd"`

	ID           string         `bun:"id,pk"`
	Operation    string         `bun:"operation,notnull"`
	InstanceName string         `bun:"instance_name,notnull"`
	Environment  string         `bun:"environment,notnull"`
	Status       string         `bun:"status,notnull"`
	StatusCode   int            `bun:"status_code,notnull"`
	Category     string         `bun:"category,notnull"`
	Message      string         `bun:"message,notnull"`
	FieldCount   int            `bun:"field_count,notnull"`
	DurationMS   int64          `bun:"duration_ms,notnull"`
	Metadata     map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
