package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncidentCount(t *testing.T) {
	tests := []struct {
		name   string
		report IncidentReport
		want   int
	}{
		{
			name:   "empty report",
			report: IncidentReport{},
			want:   0,
		},
		{
			name: "one entry per collection",
			report: IncidentReport{
				SaturationLockers: SaturationItems{{LockerName: "L1", Sacs: 3}},
				MissingDeliveries: MissingItems{{PudoApmName: "P1", Vracs: 2}},
				ClosedPudos:       ClosedItems{{PudoApmName: "P2", Reason: ClosedReasonBreakdown}},
				Refusals:          RefusalItems{{PudoApmName: "P3", Sacs: 1}},
			},
			want: 4,
		},
		{
			name: "diverted parcels count once",
			report: IncidentReport{
				Diverted: DivertedCount{Sacs: 2, Vracs: 1},
			},
			want: 1,
		},
		{
			name: "zero diverted counts do not count",
			report: IncidentReport{
				SaturationLockers: SaturationItems{{LockerName: "L1"}},
				Diverted:          DivertedCount{Sacs: 0, Vracs: 0},
			},
			want: 1,
		},
		{
			name: "vracs alone trigger the diverted incident",
			report: IncidentReport{
				Diverted: DivertedCount{Vracs: 5},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.IncidentCount())
		})
	}
}
