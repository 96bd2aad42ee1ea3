package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/mailer"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type fakeStore struct {
	mu       sync.Mutex
	order    []uuid.UUID
	vehicles map[uuid.UUID]model.Vehicle
	seq      int64
	err      error
}

func newFakeStore(vehicles ...model.Vehicle) *fakeStore {
	s := &fakeStore{vehicles: make(map[uuid.UUID]model.Vehicle)}
	for _, v := range vehicles {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		s.order = append(s.order, v.ID)
		s.vehicles[v.ID] = v
	}
	return s
}

func (s *fakeStore) List(_ context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Vehicle, 0, len(s.order))
	for _, id := range s.order {
		v := s.vehicles[id]
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" &&
			!strings.Contains(strings.ToLower(v.Make+" "+v.Model+" "+v.Plate), q) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v.History = append([]model.MaintenanceRecord(nil), v.History...)
	return &v, nil
}

func (s *fakeStore) Create(_ context.Context, vehicle *model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	if _, exists := s.vehicles[vehicle.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	for _, other := range s.vehicles {
		if strings.EqualFold(other.Plate, vehicle.Plate) {
			return gorm.ErrDuplicatedKey
		}
	}
	for i := range vehicle.History {
		s.seq++
		vehicle.History[i].ID = uuid.New()
		vehicle.History[i].VehicleID = vehicle.ID
		vehicle.History[i].Seq = s.seq
	}
	s.order = append(s.order, vehicle.ID)
	s.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (s *fakeStore) Update(_ context.Context, vehicle *model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.vehicles[vehicle.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *vehicle
	updated.History = current.History
	s.vehicles[vehicle.ID] = updated
	return nil
}

func (s *fakeStore) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := applyFields(&v, fields); err != nil {
		return err
	}
	s.vehicles[id] = v
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.vehicles, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) AddRecord(_ context.Context, vehicleID uuid.UUID, record *model.MaintenanceRecord, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[vehicleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.seq++
	record.ID = uuid.New()
	record.VehicleID = vehicleID
	record.Seq = s.seq
	v.History = append(v.History, *record)
	if err := applyFields(&v, fields); err != nil {
		return err
	}
	s.vehicles[vehicleID] = v
	return nil
}

func applyFields(v *model.Vehicle, fields map[string]interface{}) error {
	for column, value := range fields {
		switch column {
		case "status":
			v.Status = value.(model.VehicleStatus)
		case "image":
			v.Image = value.(string)
		case "km":
			v.Km = value.(int)
		case "next_service_km":
			v.NextServiceKm = value.(int)
		case "next_inspection_date":
			v.NextInspectionDate = strPtr(value.(string))
		case "next_inspection_status":
			v.NextInspectionStatus = value.(string)
		case "next_iuc_date":
			v.NextIucDate = strPtr(value.(string))
		case "next_iuc_status":
			v.NextIucStatus = value.(string)
		case "last_annual_review_date":
			v.LastAnnualReviewDate = strPtr(value.(string))
		case "next_annual_review_date":
			v.NextAnnualReviewDate = strPtr(value.(string))
		default:
			return fmt.Errorf("unexpected column %q", column)
		}
	}
	return nil
}

func containsStatus(statuses []model.VehicleStatus, status model.VehicleStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}

type fakeImages struct {
	objects map[string][]byte
	removed []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: make(map[string][]byte)}
}

func (f *fakeImages) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	ref := "s3://vehicle-images/" + key
	f.objects[ref] = buf.Bytes()
	return ref, nil
}

func (f *fakeImages) URL(_ context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "s3://") {
		return ref, nil
	}
	return "https://files.example.com/" + strings.TrimPrefix(ref, "s3://") + "?sig=1", nil
}

func (f *fakeImages) Remove(_ context.Context, ref string) error {
	delete(f.objects, ref)
	f.removed = append(f.removed, ref)
	return nil
}

type fakeSender struct {
	sent []mailer.Digest
	err  error
}

func (f *fakeSender) Send(_ context.Context, d mailer.Digest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, d)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.Local)
	}
}
