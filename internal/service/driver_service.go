package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/repository"
)

// DriverService wraps roster administration. Scans never come through
// here; the kiosk path resolves drivers inside CheckinService.
type DriverService struct {
	drivers *repository.DriverRepository
}

func NewDriverService(drivers *repository.DriverRepository) *DriverService {
	return &DriverService{drivers: drivers}
}

func (s *DriverService) List(ctx context.Context) ([]model.Driver, error) {
	return s.drivers.List(ctx)
}

func (s *DriverService) Save(ctx context.Context, driver *model.Driver) error {
	if strings.TrimSpace(driver.ID) == "" {
		return fmt.Errorf("%w: driver id is required", ErrInvalidInput)
	}
	return s.drivers.Save(ctx, driver)
}

func (s *DriverService) Delete(ctx context.Context, id string) error {
	removed, err := s.drivers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: driver %s", ErrNotFound, id)
	}
	return nil
}

func (s *DriverService) ReplaceAll(ctx context.Context, drivers []model.Driver) error {
	return s.drivers.ReplaceAll(ctx, drivers)
}

// ImportCSV parses a roster export and replaces the stored roster.
// Expected columns: Nom, Sous-traitant, Plaque, Tournée, Identifiant,
// Téléphone; the first row is a header and is skipped.
func (s *DriverService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var drivers []model.Driver
	for i, cols := range records {
		if i == 0 {
			continue
		}
		if len(cols) < 5 {
			continue
		}
		driver := model.Driver{
			Name:          strings.TrimSpace(cols[0]),
			Subcontractor: strings.TrimSpace(cols[1]),
			Plate:         strings.TrimSpace(cols[2]),
			Tour:          strings.TrimSpace(cols[3]),
			ID:            strings.TrimSpace(cols[4]),
		}
		if len(cols) > 5 {
			driver.Telephone = strings.TrimSpace(cols[5])
		}
		if driver.ID == "" {
			continue
		}
		drivers = append(drivers, driver)
	}

	if len(drivers) == 0 {
		return 0, fmt.Errorf("%w: no drivers in file", ErrInvalidInput)
	}
	if err := s.drivers.ReplaceAll(ctx, drivers); err != nil {
		return 0, err
	}
	return len(drivers), nil
}
