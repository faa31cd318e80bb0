package model

import (
	"time"
)

type EventKind string

const (
	KindDeparture EventKind = "DEPARTURE"
	KindReturn    EventKind = "RETURN"
)

// CheckinEvent is a single kiosk scan, either a departure or a return.
// Records are immutable once written except for DepartureComment and Tour,
// which admins may amend afterwards.
type CheckinEvent struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	DriverID      string    `gorm:"size:64;index" json:"driver_id"`
	DriverName    string    `gorm:"size:255" json:"driver_name"`
	Subcontractor string    `gorm:"size:64" json:"subcontractor"`
	Tour          string    `gorm:"size:32" json:"tour"`
	Timestamp     time.Time `gorm:"index" json:"timestamp"`
	Kind          EventKind `gorm:"size:16;index" json:"kind"`

	// Departure only.
	HasUniform       bool   `json:"has_uniform"`
	DepartureComment string `gorm:"type:text" json:"departure_comment"`

	// Return only.
	DriverReportedIssue bool   `json:"driver_reported_issue"`
	IssueDetails        string `gorm:"type:text" json:"issue_details"`
}

func (CheckinEvent) TableName() string {
	return "checkin_events"
}

// SameDay reports whether both instants fall on the same calendar date in
// local time. The retention rule and all "today" filters depend on it.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
