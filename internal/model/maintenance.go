package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecordType string

const (
	RecordTypeReview      RecordType = "Revisão"
	RecordTypeParts       RecordType = "Peças"
	RecordTypeInspection  RecordType = "IPO"
	RecordTypeRepair      RecordType = "Reparação"
	RecordTypeTax         RecordType = "Imposto"
	RecordTypeMaintenance RecordType = "Manutenção"
)

var RecordTypes = []RecordType{
	RecordTypeReview,
	RecordTypeParts,
	RecordTypeInspection,
	RecordTypeRepair,
	RecordTypeTax,
	RecordTypeMaintenance,
}

func (t RecordType) Valid() bool {
	for _, known := range RecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

const DefaultGarage = "Não especificada"

// MaintenanceRecord is an immutable history entry. Seq is assigned by the
// database and preserves insertion order.
type MaintenanceRecord struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID uuid.UUID           `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Seq       int64               `gorm:"->;column:seq" json:"-"`
	Date      string              `gorm:"type:varchar(10);not null" json:"date"`
	Type      RecordType          `gorm:"type:varchar(32);not null" json:"type"`
	Service   string              `gorm:"type:text;not null" json:"service"`
	Garage    string              `gorm:"type:varchar(128)" json:"garage"`
	Km        int                 `gorm:"not null;default:0" json:"km"`
	Cost      decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"cost"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

func (r *MaintenanceRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
