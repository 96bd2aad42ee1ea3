package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type VehicleFilter struct {
	Statuses []model.VehicleStatus
	Search   string
	Limit    int
	Offset   int
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&model.Vehicle{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(make ILIKE ? OR model ILIKE ? OR plate ILIKE ?)", like, like, like)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var vehicles []model.Vehicle
	if err := query.
		Order("created_at ASC, id ASC").
		Preload("History", orderBySeq).
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).
		Preload("History", orderBySeq).
		First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create inserts the vehicle and any initial history in one transaction.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := vehicle.History
		if err := tx.Omit(clause.Associations).Create(vehicle).Error; err != nil {
			return err
		}
		for i := range history {
			history[i].VehicleID = vehicle.ID
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		vehicle.History = history
		return nil
	})
}

// Update replaces every column of the vehicle row except id and created_at.
// History is not touched.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	result := r.db.WithContext(ctx).
		Model(&model.Vehicle{ID: vehicle.ID}).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(vehicle)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFields rewrites only the given columns.
func (r *VehicleRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the vehicle and its whole history atomically.
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).Delete(&model.MaintenanceRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Vehicle{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddRecord appends a history record and applies vehicle column updates in
// the same transaction.
func (r *VehicleRepository) AddRecord(ctx context.Context, vehicleID uuid.UUID, record *model.MaintenanceRecord, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.Vehicle{}).Where("id = ?", vehicleID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		record.VehicleID = vehicleID
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&model.Vehicle{}).Where("id = ?", vehicleID).Updates(fields).Error
	})
}

func orderBySeq(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}
