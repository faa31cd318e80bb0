package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaturationItem records a saturated locker observed during a tour.
type SaturationItem struct {
	LockerName    string `json:"locker_name"`
	Sacs          int    `json:"sacs"`
	Vracs         int    `json:"vracs"`
	IsReplacement bool   `json:"is_replacement"`
}

// MissingItem records deliveries that could not be dropped at a PUDO/APM.
type MissingItem struct {
	PudoApmName string `json:"pudo_apm_name"`
	Sacs        int    `json:"sacs"`
	Vracs       int    `json:"vracs"`
}

// RefusalItem records parcels refused by a PUDO.
type RefusalItem struct {
	PudoApmName string `json:"pudo_apm_name"`
	Sacs        int    `json:"sacs"`
	Vracs       int    `json:"vracs"`
}

type ClosedReason string

const (
	ClosedReasonUnplanned ClosedReason = "Fermeture sauvage"
	ClosedReasonBreakdown ClosedReason = "Panne"
)

// ClosedItem records a PUDO/APM found closed.
type ClosedItem struct {
	PudoApmName string       `json:"pudo_apm_name"`
	Reason      ClosedReason `json:"reason"`
}

// DivertedCount is the global count of parcels diverted to the wrong point.
type DivertedCount struct {
	Sacs  int `json:"sacs"`
	Vracs int `json:"vracs"`
}

type SaturationItems []SaturationItem
type MissingItems []MissingItem
type RefusalItems []RefusalItem
type ClosedItems []ClosedItem

// IncidentReport is the structured debrief attached to a return scan.
// At most one report exists per check-in; upserts are keyed by CheckinID.
type IncidentReport struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CheckinID string `gorm:"uniqueIndex;size:36;not null" json:"checkin_id"`

	TamponDuRelais         bool `json:"tampon_du_relais"`
	HoraireDePassageLocker bool `json:"horaire_de_passage_locker"`

	SaturationLockers SaturationItems `gorm:"type:text" json:"saturation_lockers"`
	MissingDeliveries MissingItems    `gorm:"type:text" json:"missing_deliveries"`
	ClosedPudos       ClosedItems     `gorm:"type:text" json:"closed_pudos"`
	Refusals          RefusalItems    `gorm:"type:text" json:"refusals"`
	Diverted          DivertedCount   `gorm:"type:text" json:"diverted"`

	Notes    string `gorm:"type:text" json:"notes"`
	Reviewed bool   `json:"reviewed"`
}

func (IncidentReport) TableName() string {
	return "incident_reports"
}

// IncidentCount is the single incident-tally definition shared by the
// dashboard and every export. One incident per collection entry, plus one
// when any parcels were diverted.
func (r *IncidentReport) IncidentCount() int {
	count := len(r.SaturationLockers) + len(r.MissingDeliveries) +
		len(r.ClosedPudos) + len(r.Refusals)
	if r.Diverted.Sacs+r.Diverted.Vracs > 0 {
		count++
	}
	return count
}

// The collection fields persist as JSON text columns.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func (s SaturationItems) Value() (driver.Value, error)  { return jsonValue([]SaturationItem(s)) }
func (s *SaturationItems) Scan(value interface{}) error { return jsonScan(s, value) }

func (m MissingItems) Value() (driver.Value, error)  { return jsonValue([]MissingItem(m)) }
func (m *MissingItems) Scan(value interface{}) error { return jsonScan(m, value) }

func (r RefusalItems) Value() (driver.Value, error)  { return jsonValue([]RefusalItem(r)) }
func (r *RefusalItems) Scan(value interface{}) error { return jsonScan(r, value) }

func (c ClosedItems) Value() (driver.Value, error)  { return jsonValue([]ClosedItem(c)) }
func (c *ClosedItems) Scan(value interface{}) error { return jsonScan(c, value) }

func (d DivertedCount) Value() (driver.Value, error)  { return jsonValue(d) }
func (d *DivertedCount) Scan(value interface{}) error { return jsonScan(d, value) }
