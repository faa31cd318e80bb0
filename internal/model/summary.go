package model

import "time"

// PendingReturn is a driver presumed still out: their latest event of the
// day is a departure. Elapsed time is decomposed into whole hours and
// remaining minutes for display.
type PendingReturn struct {
	Event   CheckinEvent `json:"event"`
	Hours   int          `json:"hours"`
	Minutes int          `json:"minutes"`
}

// TodayStats are the dashboard counters for the current day.
type TodayStats struct {
	TotalPointages int `json:"total_pointages"`
	UniqueDrivers  int `json:"unique_drivers"`
	PendingReturns int `json:"pending_returns"`
}

// SubcontractorStat aggregates one subcontractor's returns for a day.
type SubcontractorStat struct {
	Subcontractor string `json:"subcontractor"`
	Tours         int    `json:"tours"`
	Reports       int    `json:"reports"`
	Incidents     int    `json:"incidents"`
	Saturations   int    `json:"saturations"`
	Missing       int    `json:"missing"`
	Refusals      int    `json:"refusals"`
	Closed        int    `json:"closed"`
}

// ReportSummary is the aggregated view rendered by the incident-report
// export and the daily summary PDF. All incident figures come from
// IncidentReport.IncidentCount so screen and export never disagree.
type ReportSummary struct {
	Date           time.Time
	UniqueDrivers  int
	TotalTours     int
	TotalReturns   int
	CompletionRate int
	TotalReports   int

	DivertedSacs  int
	DivertedVracs int

	SubStats []SubcontractorStat
	Returns  []ReturnWithReport
}

// ReturnWithReport pairs a return event with its report, if any.
type ReturnWithReport struct {
	Event  CheckinEvent
	Report *IncidentReport
}

// DailySummary feeds the printable end-of-day PDF.
type DailySummary struct {
	GeneratedAt time.Time
	Stats       TodayStats
	Pending     []PendingReturn
	SubStats    []SubcontractorStat
}
