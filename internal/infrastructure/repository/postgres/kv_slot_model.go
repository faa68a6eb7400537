package postgres

import "time"

const kvSlotsTable = "kv_slots"

type kvSlotTableModel struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
