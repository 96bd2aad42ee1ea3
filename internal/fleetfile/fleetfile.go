package fleetfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"fleet-service/internal/service"
)

// File is a fleet import document:
//
//	vehicles:
//	  - make: Renault
//	    model: Clio
//	    plate: AA-00-BB
//	    deadlines:
//	      inspection: "2025-06-01"
type File struct {
	Vehicles []Vehicle `yaml:"vehicles"`
}

type Vehicle struct {
	ID            string    `yaml:"id"`
	Make          string    `yaml:"make"`
	Model         string    `yaml:"model"`
	Year          int       `yaml:"year"`
	Plate         string    `yaml:"plate"`
	VIN           string    `yaml:"vin"`
	Fuel          string    `yaml:"fuel"`
	Engine        string    `yaml:"engine"`
	Power         string    `yaml:"power"`
	Tires         string    `yaml:"tires"`
	Color         string    `yaml:"color"`
	Image         string    `yaml:"image"`
	Km            int       `yaml:"km"`
	Status        string    `yaml:"status"`
	NextServiceKm int       `yaml:"nextServiceKm"`
	Deadlines     Deadlines `yaml:"deadlines"`
	History       []Record  `yaml:"history"`
}

type Deadlines struct {
	Inspection       string `yaml:"inspection"`
	IUC              string `yaml:"iuc"`
	Service          string `yaml:"service"`
	LastAnnualReview string `yaml:"lastAnnualReview"`
	AnnualReview     string `yaml:"annualReview"`
}

type Record struct {
	Date    string `yaml:"date"`
	Type    string `yaml:"type"`
	Service string `yaml:"service"`
	Garage  string `yaml:"garage"`
	Km      int    `yaml:"km"`
	Cost    string `yaml:"cost"`
}

func Load(filename string) (*File, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading fleet file: %w", err)
	}
	return Parse(buf)
}

func Parse(buf []byte) (*File, error) {
	f := &File{}
	if err := yaml.UnmarshalWithOptions(buf, f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(f.Vehicles) == 0 {
		return nil, errors.New("fleet file has no vehicles")
	}
	return f, nil
}

// Input converts the entry to the service create payload.
func (v Vehicle) Input() (service.VehicleInput, error) {
	input := service.VehicleInput{
		ID:                   v.ID,
		Make:                 v.Make,
		Model:                v.Model,
		Year:                 v.Year,
		Plate:                v.Plate,
		VIN:                  v.VIN,
		Fuel:                 v.Fuel,
		Engine:               v.Engine,
		Power:                v.Power,
		Tires:                v.Tires,
		Color:                v.Color,
		Image:                v.Image,
		Km:                   v.Km,
		Status:               v.Status,
		NextServiceKm:        v.NextServiceKm,
		NextInspectionDate:   v.Deadlines.Inspection,
		NextIucDate:          v.Deadlines.IUC,
		NextServiceDate:      v.Deadlines.Service,
		LastAnnualReviewDate: v.Deadlines.LastAnnualReview,
		NextAnnualReviewDate: v.Deadlines.AnnualReview,
	}
	for _, r := range v.History {
		record := service.RecordInput{
			Date:    r.Date,
			Type:    r.Type,
			Service: r.Service,
			Garage:  r.Garage,
			Km:      r.Km,
		}
		if cost := strings.TrimSpace(r.Cost); cost != "" {
			d, err := decimal.NewFromString(cost)
			if err != nil {
				return service.VehicleInput{}, fmt.Errorf("%s: invalid cost %q", v.Plate, r.Cost)
			}
			record.Cost = &d
		}
		input.History = append(input.History, record)
	}
	return input, nil
}

type Creator interface {
	Create(ctx context.Context, input service.VehicleInput) (*service.VehicleView, error)
}

type Result struct {
	Created []string
	Skipped []string
}

// Import creates every vehicle of the file. Plates that already exist are
// skipped; any other failure stops the import.
func Import(ctx context.Context, creator Creator, f *File) (Result, error) {
	var result Result
	for i, v := range f.Vehicles {
		input, err := v.Input()
		if err != nil {
			return result, fmt.Errorf("vehicle #%d: %w", i+1, err)
		}
		view, err := creator.Create(ctx, input)
		if err != nil {
			if errors.Is(err, service.ErrConflict) {
				result.Skipped = append(result.Skipped, v.Plate)
				continue
			}
			return result, fmt.Errorf("vehicle #%d (%s): %w", i+1, v.Plate, err)
		}
		result.Created = append(result.Created, view.Plate)
	}
	return result, nil
}
