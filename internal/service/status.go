package service

import (
	"context"
	"sort"
	"time"

	"github.com/nurpe/depot-checkins/internal/model"
)

// PendingReturns derives the set of drivers currently out as of the given
// instant, oldest departure first. It is a pure read over the event log;
// calling it twice without an intervening append yields identical output.
func (s *CheckinService) PendingReturns(ctx context.Context, asOf time.Time) ([]model.PendingReturn, error) {
	events, err := s.checkins.ListOnDate(ctx, asOf)
	if err != nil {
		return nil, err
	}

	// Latest event per driver; id breaks timestamp ties deterministically.
	latest := make(map[string]model.CheckinEvent)
	for _, e := range events {
		current, ok := latest[e.DriverID]
		if !ok || e.Timestamp.After(current.Timestamp) ||
			(e.Timestamp.Equal(current.Timestamp) && e.ID > current.ID) {
			latest[e.DriverID] = e
		}
	}

	pending := make([]model.PendingReturn, 0, len(latest))
	for _, e := range latest {
		if e.Kind != model.KindDeparture {
			continue
		}
		elapsed := asOf.Sub(e.Timestamp)
		if elapsed < 0 {
			elapsed = 0
		}
		pending = append(pending, model.PendingReturn{
			Event:   e,
			Hours:   int(elapsed.Hours()),
			Minutes: int(elapsed.Minutes()) % 60,
		})
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Event.Timestamp.Equal(pending[j].Event.Timestamp) {
			return pending[i].Event.ID < pending[j].Event.ID
		}
		return pending[i].Event.Timestamp.Before(pending[j].Event.Timestamp)
	})

	return pending, nil
}

// StatsToday computes the dashboard counters as of now.
func (s *CheckinService) StatsToday(ctx context.Context) (*model.TodayStats, error) {
	now := s.now()
	events, err := s.checkins.ListOnDate(ctx, now)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingReturns(ctx, now)
	if err != nil {
		return nil, err
	}

	unique := make(map[string]struct{})
	for _, e := range events {
		unique[e.DriverID] = struct{}{}
	}

	return &model.TodayStats{
		TotalPointages: len(events),
		UniqueDrivers:  len(unique),
		PendingReturns: len(pending),
	}, nil
}
