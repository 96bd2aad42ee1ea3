package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusInactive    VehicleStatus = "inactive"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusInactive:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle with its tracked deadlines.
// Deadline dates are stored as YYYY-MM-DD text; nil means untracked.
// The *Status columns are a display cache written on every save and are
// never read back for decisions.
type Vehicle struct {
	ID     uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Make   string        `gorm:"type:varchar(64);not null" json:"make"`
	Model  string        `gorm:"type:varchar(64);not null" json:"model"`
	Year   int           `json:"year"`
	Plate  string        `gorm:"type:varchar(32);not null" json:"plate"`
	VIN    string        `gorm:"column:vin;type:varchar(32)" json:"vin"`
	Fuel   string        `gorm:"type:varchar(32)" json:"fuel"`
	Engine string        `gorm:"type:varchar(64)" json:"engine"`
	Power  string        `gorm:"type:varchar(32)" json:"power"`
	Tires  string        `gorm:"type:varchar(64)" json:"tires"`
	Color  string        `gorm:"type:varchar(32)" json:"color"`
	Image  string        `gorm:"type:text" json:"image"`
	Km     int           `gorm:"not null;default:0" json:"km"`
	Status VehicleStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`

	NextInspectionDate   *string `gorm:"type:varchar(10)" json:"next_inspection_date"`
	NextInspectionStatus string  `gorm:"type:varchar(16)" json:"-"`
	NextIucDate          *string `gorm:"column:next_iuc_date;type:varchar(10)" json:"next_iuc_date"`
	NextIucStatus        string  `gorm:"column:next_iuc_status;type:varchar(16)" json:"-"`
	NextServiceKm        int     `gorm:"not null;default:0" json:"next_service_km"`
	NextServiceDate      *string `gorm:"type:varchar(10)" json:"next_service_date"`
	LastAnnualReviewDate *string `gorm:"type:varchar(10)" json:"last_annual_review_date"`
	NextAnnualReviewDate *string `gorm:"type:varchar(10)" json:"next_annual_review_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	History []MaintenanceRecord `gorm:"foreignKey:VehicleID" json:"history"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v Vehicle) Brief() VehicleBrief {
	return VehicleBrief{
		ID:    v.ID,
		Make:  v.Make,
		Model: v.Model,
		Plate: v.Plate,
	}
}

type VehicleBrief struct {
	ID    uuid.UUID `json:"id"`
	Make  string    `json:"make"`
	Model string    `json:"model"`
	Plate string    `json:"plate"`
}
