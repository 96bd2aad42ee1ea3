package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleet-service/internal/deadline"
	"fleet-service/internal/lifecycle"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type VehicleService struct {
	store         VehicleStore
	engine        *deadline.Engine
	images        ImageStore
	maxImageBytes int64
	log           zerolog.Logger
	now           func() time.Time
}

// NewVehicleService wires the vehicle use cases. images may be nil, in which
// case uploads fail with ErrStorageDisabled.
func NewVehicleService(
	store VehicleStore,
	engine *deadline.Engine,
	images ImageStore,
	maxImageBytes int64,
	log zerolog.Logger,
) *VehicleService {
	return &VehicleService{
		store:         store,
		engine:        engine,
		images:        images,
		maxImageBytes: maxImageBytes,
		log:           log,
		now:           time.Now,
	}
}

// VehicleView is a vehicle with every derived field recomputed for today.
type VehicleView struct {
	model.Vehicle
	ImageURL           string                       `json:"image_url"`
	InspectionStatus   deadline.Status              `json:"inspection_status"`
	IucStatus          deadline.Status              `json:"iuc_status"`
	AnnualReviewStatus deadline.Status              `json:"annual_review_status"`
	OverallStatus      deadline.Status              `json:"overall_status"`
	DaysMessages       map[deadline.Category]string `json:"days_messages"`
	ServiceKmRemaining *int                         `json:"service_km_remaining,omitempty"`
	AvailableEvents    []string                     `json:"available_events"`
}

type ListVehiclesOptions struct {
	Statuses []model.VehicleStatus
	Search   string
	Limit    int
	Offset   int
}

type VehicleInput struct {
	ID                   string        `json:"id"`
	Make                 string        `json:"make"`
	Model                string        `json:"model"`
	Year                 int           `json:"year"`
	Plate                string        `json:"plate"`
	VIN                  string        `json:"vin"`
	Fuel                 string        `json:"fuel"`
	Engine               string        `json:"engine"`
	Power                string        `json:"power"`
	Tires                string        `json:"tires"`
	Color                string        `json:"color"`
	Image                string        `json:"image"`
	Km                   int           `json:"km"`
	Status               string        `json:"status"`
	NextInspectionDate   string        `json:"next_inspection_date"`
	NextIucDate          string        `json:"next_iuc_date"`
	NextServiceKm        int           `json:"next_service_km"`
	NextServiceDate      string        `json:"next_service_date"`
	LastAnnualReviewDate string        `json:"last_annual_review_date"`
	NextAnnualReviewDate string        `json:"next_annual_review_date"`
	History              []RecordInput `json:"history"`
}

type RecordInput struct {
	Date          string           `json:"date"`
	Type          string           `json:"type"`
	Service       string           `json:"service"`
	Garage        string           `json:"garage"`
	Km            int              `json:"km"`
	Cost          *decimal.Decimal `json:"cost"`
	NextServiceKm int              `json:"next_service_km"`
}

// DeadlineInput marks a deadline as handled. LastReviewDate is only accepted
// for the annual review and derives the next one a year later.
type DeadlineInput struct {
	Date           string `json:"date"`
	LastReviewDate string `json:"last_review_date"`
}

func (s *VehicleService) List(ctx context.Context, opts ListVehiclesOptions) ([]VehicleView, error) {
	for _, st := range opts.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}

	vehicles, err := s.store.List(ctx, repository.VehicleFilter{
		Statuses: opts.Statuses,
		Search:   opts.Search,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	today := deadline.Today(s.now())
	views := make([]VehicleView, 0, len(vehicles))
	for i := range vehicles {
		views = append(views, s.view(ctx, &vehicles[i], today))
	}
	return views, nil
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*VehicleView, error) {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	view := s.view(ctx, vehicle, deadline.Today(s.now()))
	return &view, nil
}

func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*VehicleView, error) {
	vehicle := &model.Vehicle{Status: model.VehicleStatusActive}
	if id := strings.TrimSpace(input.ID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id", ErrInvalidInput)
		}
		vehicle.ID = parsed
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		vehicle.Status = model.VehicleStatus(strings.ToLower(status))
		if !vehicle.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
		}
	}
	if err := applyVehicleInput(vehicle, input); err != nil {
		return nil, err
	}
	image := strings.TrimSpace(input.Image)
	if isStoredRef(image) {
		return nil, fmt.Errorf("%w: stored images can only be set by upload", ErrInvalidInput)
	}
	vehicle.Image = image

	for _, in := range input.History {
		record, err := buildRecord(in)
		if err != nil {
			return nil, err
		}
		vehicle.History = append(vehicle.History, *record)
	}

	today := deadline.Today(s.now())
	s.refreshStatusCache(vehicle, today)

	if err := s.store.Create(ctx, vehicle); err != nil {
		return nil, mapStoreError(err)
	}
	s.log.Info().Str("vehicle_id", vehicle.ID.String()).Str("plate", vehicle.Plate).Msg("vehicle created")

	return s.Get(ctx, vehicle.ID)
}

// Update replaces the descriptive and deadline fields. History and lifecycle
// status are left as they are. An empty image keeps the current one; an
// external url replaces it, and an uploaded picture it replaces is removed.
func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, input VehicleInput) (*VehicleView, error) {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	previous := vehicle.Image
	if err := applyVehicleInput(vehicle, input); err != nil {
		return nil, err
	}
	switch image := strings.TrimSpace(input.Image); {
	case image == "" || image == previous:
		vehicle.Image = previous
	case isStoredRef(image):
		return nil, fmt.Errorf("%w: stored images can only be set by upload", ErrInvalidInput)
	default:
		vehicle.Image = image
	}

	s.refreshStatusCache(vehicle, deadline.Today(s.now()))

	if err := s.store.Update(ctx, vehicle); err != nil {
		return nil, mapStoreError(err)
	}
	if vehicle.Image != previous {
		s.removeImage(ctx, previous)
	}
	return s.Get(ctx, id)
}

func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.removeImage(ctx, vehicle.Image)
	s.log.Info().Str("vehicle_id", id.String()).Msg("vehicle deleted")
	return nil
}

// MarkDeadlineDone rewrites exactly one deadline of the vehicle.
func (s *VehicleService) MarkDeadlineDone(ctx context.Context, id uuid.UUID, category string, input DeadlineInput) (*VehicleView, error) {
	c, err := deadline.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make(map[string]interface{}, 3)
	next, err := optionalDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	last, err := optionalDate("last_review_date", input.LastReviewDate)
	if err != nil {
		return nil, err
	}
	if last != nil {
		if c != deadline.CategoryAnnualReview {
			return nil, fmt.Errorf("%w: last_review_date only applies to annual_review", ErrInvalidInput)
		}
		fields["last_annual_review_date"] = *last
		if next == nil {
			next = deriveNextReview(*last)
		}
	}
	if next == nil {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	today := deadline.Today(s.now())
	due, _ := deadline.ParseDate(*next)
	switch c {
	case deadline.CategoryInspection:
		fields["next_inspection_date"] = *next
		fields["next_inspection_status"] = string(deadline.Classify(due, today))
	case deadline.CategoryIUC:
		fields["next_iuc_date"] = *next
		fields["next_iuc_status"] = string(deadline.Classify(due, today))
	case deadline.CategoryAnnualReview:
		fields["next_annual_review_date"] = *next
	}

	if err := s.store.UpdateFields(ctx, id, fields); err != nil {
		return nil, mapStoreError(err)
	}
	s.log.Info().
		Str("vehicle_id", id.String()).
		Str("category", string(c)).
		Str("date", *next).
		Msg("deadline updated")

	return s.Get(ctx, id)
}

// AddRecord appends a maintenance record. The odometer only moves forward.
func (s *VehicleService) AddRecord(ctx context.Context, id uuid.UUID, input RecordInput) (*VehicleView, error) {
	record, err := buildRecord(input)
	if err != nil {
		return nil, err
	}
	if input.NextServiceKm < 0 {
		return nil, fmt.Errorf("%w: next_service_km must not be negative", ErrInvalidInput)
	}

	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	fields := make(map[string]interface{}, 2)
	if record.Km > vehicle.Km {
		fields["km"] = record.Km
	}
	if input.NextServiceKm > 0 {
		fields["next_service_km"] = input.NextServiceKm
	}

	if err := s.store.AddRecord(ctx, id, record, fields); err != nil {
		return nil, mapStoreError(err)
	}
	return s.Get(ctx, id)
}

// Transition moves the vehicle through its lifecycle.
func (s *VehicleService) Transition(ctx context.Context, id uuid.UUID, event string) (*VehicleView, error) {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	event = strings.ToLower(strings.TrimSpace(event))
	next, err := lifecycle.Transition(ctx, vehicle.Status, event)
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: cannot %s a vehicle in status %s", ErrInvalidStatus, event, vehicle.Status)
		}
		return nil, err
	}

	if err := s.store.UpdateFields(ctx, id, map[string]interface{}{"status": next}); err != nil {
		return nil, mapStoreError(err)
	}
	s.log.Info().
		Str("vehicle_id", id.String()).
		Str("from", string(vehicle.Status)).
		Str("to", string(next)).
		Msg("vehicle status changed")

	return s.Get(ctx, id)
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *VehicleService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*VehicleView, error) {
	if s.images == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", ErrInvalidInput, upload.ContentType)
	}
	if upload.Size <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if s.maxImageBytes > 0 && upload.Size > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, s.maxImageBytes)
	}

	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	key := fmt.Sprintf("vehicles/%s/%s%s", id, uuid.New(), strings.ToLower(filepath.Ext(upload.Filename)))
	ref, err := s.images.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateFields(ctx, id, map[string]interface{}{"image": ref}); err != nil {
		s.removeImage(ctx, ref)
		return nil, mapStoreError(err)
	}
	s.removeImage(ctx, vehicle.Image)

	return s.Get(ctx, id)
}

func (s *VehicleService) view(ctx context.Context, v *model.Vehicle, today deadline.Date) VehicleView {
	statuses := s.engine.Statuses(v, today)
	messages := make(map[deadline.Category]string, len(deadline.Categories))
	for _, c := range deadline.Categories {
		messages[c] = deadline.DaysMessage(s.engine.Due(v, c), today)
	}

	view := VehicleView{
		Vehicle:            *v,
		ImageURL:           s.imageURL(ctx, v),
		InspectionStatus:   statuses[deadline.CategoryInspection],
		IucStatus:          statuses[deadline.CategoryIUC],
		AnnualReviewStatus: statuses[deadline.CategoryAnnualReview],
		DaysMessages:       messages,
		ServiceKmRemaining: serviceKmRemaining(v),
		AvailableEvents:    lifecycle.Available(v.Status),
	}
	view.OverallStatus = deadline.Worst(view.InspectionStatus, view.IucStatus, view.AnnualReviewStatus)
	view.History = sortedHistory(v.History)
	if view.AvailableEvents == nil {
		view.AvailableEvents = []string{}
	}
	return view
}

func (s *VehicleService) imageURL(ctx context.Context, v *model.Vehicle) string {
	if v.Image == "" {
		return ""
	}
	if s.images == nil {
		if isStoredRef(v.Image) {
			return ""
		}
		return v.Image
	}
	url, err := s.images.URL(ctx, v.Image)
	if err != nil {
		s.log.Warn().Err(err).Str("vehicle_id", v.ID.String()).Msg("failed to resolve image url")
		return ""
	}
	return url
}

func (s *VehicleService) removeImage(ctx context.Context, ref string) {
	if s.images == nil || !isStoredRef(ref) {
		return
	}
	if err := s.images.Remove(ctx, ref); err != nil {
		s.log.Warn().Err(err).Str("image", ref).Msg("failed to remove image")
	}
}

// refreshStatusCache writes the stored status columns shown by older clients.
func (s *VehicleService) refreshStatusCache(v *model.Vehicle, today deadline.Date) {
	statuses := s.engine.Statuses(v, today)
	v.NextInspectionStatus = string(statuses[deadline.CategoryInspection])
	v.NextIucStatus = string(statuses[deadline.CategoryIUC])
}

// sortedHistory orders records newest first; same-day records keep the most
// recently inserted on top.
func sortedHistory(records []model.MaintenanceRecord) []model.MaintenanceRecord {
	out := make([]model.MaintenanceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}

// serviceKmRemaining is nil when no service threshold is tracked.
func serviceKmRemaining(v *model.Vehicle) *int {
	if v.NextServiceKm <= 0 {
		return nil
	}
	remaining := v.NextServiceKm - v.Km
	return &remaining
}

// isStoredRef reports whether image addresses the object store rather than
// an external url.
func isStoredRef(image string) bool {
	return strings.HasPrefix(strings.ToLower(image), "s3://")
}

func applyVehicleInput(v *model.Vehicle, input VehicleInput) error {
	v.Make = strings.TrimSpace(input.Make)
	v.Model = strings.TrimSpace(input.Model)
	v.Plate = strings.ToUpper(strings.TrimSpace(input.Plate))
	if v.Make == "" || v.Model == "" || v.Plate == "" {
		return fmt.Errorf("%w: make, model and plate are required", ErrInvalidInput)
	}
	if input.Year < 0 || input.Km < 0 || input.NextServiceKm < 0 {
		return fmt.Errorf("%w: year, km and next_service_km must not be negative", ErrInvalidInput)
	}

	v.Year = input.Year
	v.VIN = strings.TrimSpace(input.VIN)
	v.Fuel = strings.TrimSpace(input.Fuel)
	v.Engine = strings.TrimSpace(input.Engine)
	v.Power = strings.TrimSpace(input.Power)
	v.Tires = strings.TrimSpace(input.Tires)
	v.Color = strings.TrimSpace(input.Color)
	v.Km = input.Km
	v.NextServiceKm = input.NextServiceKm

	dates := []struct {
		name string
		raw  string
		dst  **string
	}{
		{"next_inspection_date", input.NextInspectionDate, &v.NextInspectionDate},
		{"next_iuc_date", input.NextIucDate, &v.NextIucDate},
		{"next_service_date", input.NextServiceDate, &v.NextServiceDate},
		{"last_annual_review_date", input.LastAnnualReviewDate, &v.LastAnnualReviewDate},
		{"next_annual_review_date", input.NextAnnualReviewDate, &v.NextAnnualReviewDate},
	}
	for _, d := range dates {
		value, err := optionalDate(d.name, d.raw)
		if err != nil {
			return err
		}
		*d.dst = value
	}

	if v.LastAnnualReviewDate != nil && v.NextAnnualReviewDate == nil {
		v.NextAnnualReviewDate = deriveNextReview(*v.LastAnnualReviewDate)
	}
	return nil
}

func buildRecord(input RecordInput) (*model.MaintenanceRecord, error) {
	date, err := optionalDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, fmt.Errorf("%w: record date is required", ErrInvalidInput)
	}
	recordType := model.RecordType(strings.TrimSpace(input.Type))
	if !recordType.Valid() {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, input.Type)
	}
	service := strings.TrimSpace(input.Service)
	if service == "" {
		return nil, fmt.Errorf("%w: service is required", ErrInvalidInput)
	}
	if input.Km < 0 {
		return nil, fmt.Errorf("%w: km must not be negative", ErrInvalidInput)
	}

	record := &model.MaintenanceRecord{
		Date:    *date,
		Type:    recordType,
		Service: service,
		Garage:  strings.TrimSpace(input.Garage),
		Km:      input.Km,
	}
	if record.Garage == "" {
		record.Garage = model.DefaultGarage
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
		}
		record.Cost = decimal.NewNullDecimal(input.Cost.Round(2))
	}
	return record, nil
}

// optionalDate normalizes a YYYY-MM-DD field; blank means absent.
func optionalDate(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := deadline.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	value := d.String()
	return &value, nil
}

func deriveNextReview(last string) *string {
	d, err := deadline.ParseDate(last)
	if err != nil {
		return nil
	}
	next := d.AddYears(1).String()
	return &next
}
