package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is an uploaded, already-aggregated table: an ordered column list
// plus one Row per grouping key. Datasets are the only inputs the service
// persists; profile results themselves are never stored durably.
type Dataset struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	TenantID  uuid.UUID `db:"tenant_id"  json:"tenant_id"`
	Name      string    `db:"name"       json:"name"`
	Columns   []string  `db:"columns"    json:"columns"`
	Rows      []Row     `db:"rows"       json:"rows"`
	RowCount  int       `db:"row_count"  json:"row_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
