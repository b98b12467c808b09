package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquipmentStatus string

const (
	EquipmentStatusActive  EquipmentStatus = "ACTIVE"
	EquipmentStatusRetired EquipmentStatus = "RETIRED"
)

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusBorrowed    ItemStatus = "BORROWED"
	ItemStatusMaintenance ItemStatus = "MAINTENANCE"
	ItemStatusDamaged     ItemStatus = "DAMAGED"
	ItemStatusLost        ItemStatus = "LOST"
)

type Equipment struct {
	ID            int32           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CreditPerUnit decimal.Decimal `json:"credit_per_unit"`
	// Quantity is the count of AVAILABLE serialized units. It is always
	// recomputed from equipment_items, never adjusted incrementally.
	Quantity  int32           `json:"quantity"`
	Status    EquipmentStatus `json:"status"`
	CreatedOn time.Time       `json:"created_on"`
}

// EquipmentItem is one physical serialized unit.
type EquipmentItem struct {
	ID           int32      `json:"id"`
	EquipmentID  int32      `json:"equipment_id"`
	SerialNumber string     `json:"serial_number"`
	Status       ItemStatus `json:"status"`
	CreatedOn    time.Time  `json:"created_on"`
}

type Availability struct {
	EquipmentID int32 `json:"equipment_id"`
	Available   int32 `json:"available"`
	Borrowed    int32 `json:"borrowed"`
	Maintenance int32 `json:"maintenance"`
	Damaged     int32 `json:"damaged"`
	Lost        int32 `json:"lost"`
}
