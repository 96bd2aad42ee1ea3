package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/db"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// VehicleStore is the persistence the services need; *repository.VehicleRepository
// implements it.
type VehicleStore interface {
	List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Update(ctx context.Context, vehicle *model.Vehicle) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddRecord(ctx context.Context, vehicleID uuid.UUID, record *model.MaintenanceRecord, fields map[string]interface{}) error
}

var _ VehicleStore = (*repository.VehicleRepository)(nil)

// ImageStore keeps vehicle pictures; *storage.ImageStore implements it.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, ref string) (string, error)
	Remove(ctx context.Context, ref string) error
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrConflict
	default:
		return err
	}
}
