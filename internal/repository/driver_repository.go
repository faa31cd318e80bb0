package repository

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/identity"
	"github.com/nurpe/depot-checkins/internal/model"
)

// Legacy duplicate rows that slipped into production rosters; removed on
// every load.
var bannedDriverIDs = []string{"C841047_2", "C294104_2"}

// seedDrivers is the built-in roster used when the store is empty on
// first run.
var seedDrivers = []model.Driver{
	{ID: "C132132", Name: "Karim Mekki", Subcontractor: "BA", Telephone: "+33(0)6.04.14.83.06"},
	{ID: "C068480", Name: "Mohammad Amin Rekan", Subcontractor: "BA", Tour: "9008", Telephone: "+33(0)7.69.59.32.94"},
	{ID: "C178508", Name: "IDRISS Abdelkader", Subcontractor: "BA", Tour: "9004", Telephone: "+33(0)6.04.14.42.18"},
	{ID: "C333554", Name: "SAID BARTOUTILE", Subcontractor: "BA", Tour: "9003", Telephone: "+33(0)6.50.97.76.40"},
	{ID: "C416861", Name: "TAOURIT El-Amine", Subcontractor: "BA", Tour: "9007", Telephone: "+33(0)6.04.09.42.33"},
	{ID: "C552108", Name: "Mustafa AL-SAADI", Subcontractor: "BA", Tour: "9006", Telephone: "+33(0)7.58.90.30.36"},
	{ID: "C711100", Name: "Nicolas Aoun", Subcontractor: "BA", Tour: "9001", Telephone: "+33(0)6.74.66.32.12"},
	{ID: "C950100", Name: "Lotfi Medallel", Subcontractor: "M&A", Tour: "5001", Telephone: "+33(0)7.45.92.73.83"},
	{ID: "C708361", Name: "Isak Abraham", Subcontractor: "M&A", Tour: "5002", Telephone: "+33(0)7.66.86.39.41"},
	{ID: "C103730", Name: "Yassine Lakhdar", Subcontractor: "M&A", Tour: "5003", Telephone: "+33(0)6.59.32.57.45"},
	{ID: "C841047", Name: "Alsadig MOHAMED", Subcontractor: "M&A", Tour: "5006"},
	{ID: "C118995", Name: "Merakeb Merakeb", Subcontractor: "TM", Tour: "2002", Telephone: "+33(0)7.82.61.16.22"},
	{ID: "C818669", Name: "mohammed babas", Subcontractor: "TM", Tour: "2001", Telephone: "+33(0)6.52.07.93.47"},
	{ID: "C998756", Name: "Youssouf Camara", Subcontractor: "Boue", Tour: "6002", Telephone: "+33(0)7.44.20.57.11"},
	{ID: "C092055", Name: "CAMARA MOUSTAPHA", Subcontractor: "Boue", Tour: "6001", Telephone: "+33(0)7.51.23.16.84"},
	{ID: "C281563", Name: "Mohamed KAHLA", Subcontractor: "KARR", Tour: "7999", Telephone: "+33(0)7.51.38.39.59"},
	{ID: "C294104", Name: "karim BELGACEM", Subcontractor: "KARR", Tour: "7005", Telephone: "+33(0)7.80.80.54.81"},
	{ID: "C082977", Name: "NASSIM LAURACH", Subcontractor: "PADO", Tour: "8003", Telephone: "+33(0)6.51.19.17.11"},
	{ID: "C189221", Name: "Abdelillah Fatri", Subcontractor: "PADO", Tour: "8002", Telephone: "+33(0)6.41.11.94.95"},
	{ID: "C953340", Name: "Souleymane Sylla", Subcontractor: "PADO", Tour: "8001", Telephone: "+33(0)6.51.23.08.81"},
}

type DriverRepository struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewDriverRepository(db *gorm.DB, log zerolog.Logger) *DriverRepository {
	return &DriverRepository{db: db, log: log}
}

// EnsureSeeded populates the built-in roster on first run, or runs the
// roster hygiene pass against whatever is already stored. Hygiene failures
// are logged and swallowed; a dirty roster is better than no service.
func (r *DriverRepository) EnsureSeeded(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Driver{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := r.db.WithContext(ctx).Create(&seedDrivers).Error; err != nil {
			return err
		}
		r.log.Info().Int("drivers", len(seedDrivers)).Msg("seeded built-in roster")
		return nil
	}

	if err := r.cleanRoster(ctx); err != nil {
		r.log.Warn().Err(err).Msg("roster cleanup failed, continuing with stored roster")
	}
	return nil
}

// cleanRoster trims identifiers, drops denylisted legacy IDs and removes
// duplicates, keeping the first occurrence of each normalized identifier.
func (r *DriverRepository) cleanRoster(ctx context.Context) error {
	drivers, err := r.List(ctx)
	if err != nil {
		return err
	}

	banned := make(map[string]struct{}, len(bannedDriverIDs))
	for _, id := range bannedDriverIDs {
		banned[identity.Normalize(id)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(drivers))
	clean := make([]model.Driver, 0, len(drivers))
	changed := false

	for _, d := range drivers {
		norm := identity.Normalize(d.ID)
		if _, isBanned := banned[norm]; isBanned {
			changed = true
			continue
		}
		if _, dup := seen[norm]; dup {
			changed = true
			continue
		}
		seen[norm] = struct{}{}

		trimmed := d
		trimmed.ID = strings.TrimSpace(d.ID)
		if trimmed.ID != d.ID {
			changed = true
		}
		clean = append(clean, trimmed)
	}

	if !changed {
		return nil
	}

	if err := r.ReplaceAll(ctx, clean); err != nil {
		return err
	}
	r.log.Info().
		Int("before", len(drivers)).
		Int("after", len(clean)).
		Msg("cleaned duplicate or banned drivers from roster")
	return nil
}

func (r *DriverRepository) List(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	if err := r.db.WithContext(ctx).Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// FindByScan resolves a scanned code against the roster using normalized
// comparison. Returns nil when no driver matches.
func (r *DriverRepository) FindByScan(ctx context.Context, scanned string) (*model.Driver, error) {
	drivers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range drivers {
		if identity.Same(drivers[i].ID, scanned) {
			return &drivers[i], nil
		}
	}
	return nil, nil
}

// Save upserts a roster entry by exact ID.
func (r *DriverRepository) Save(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

// Delete removes every roster entry whose normalized ID matches. Loose
// matching mirrors the scan lookup so messy stored IDs stay deletable.
func (r *DriverRepository) Delete(ctx context.Context, id string) (int64, error) {
	drivers, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range drivers {
			if !identity.Same(d.ID, id) {
				continue
			}
			result := tx.Where("id = ?", d.ID).Delete(&model.Driver{})
			if result.Error != nil {
				return result.Error
			}
			removed += result.RowsAffected
		}
		return nil
	})
	return removed, err
}

// ReplaceAll swaps the whole roster, used by CSV import and cleanup.
func (r *DriverRepository) ReplaceAll(ctx context.Context, drivers []model.Driver) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Driver{}).Error; err != nil {
			return err
		}
		if len(drivers) == 0 {
			return nil
		}
		return tx.Create(&drivers).Error
	})
}
