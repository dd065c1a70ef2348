package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequest_EffectiveDeadline(t *testing.T) {
	planned := time.Now().Add(48 * time.Hour)
	extended := time.Now().Add(96 * time.Hour)

	request := &Request{}
	require.Nil(t, request.EffectiveDeadline())

	request.Deadline = &planned
	require.Equal(t, planned, *request.EffectiveDeadline())

	request.ExtendedDeadline = &extended
	require.Equal(t, extended, *request.EffectiveDeadline())
}

func TestRequest_RiskState(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	at := func(offset time.Duration) *time.Time {
		d := now.Add(offset)
		return &d
	}

	cases := []struct {
		name    string
		request Request
		want    RiskState
	}{
		{"completed carries no signal", Request{Status: RequestStatusCompleted, Deadline: at(-time.Hour)}, RiskNone},
		{"no deadline", Request{Status: RequestStatusOpen}, RiskNone},
		{"past deadline", Request{Status: RequestStatusInRepair, Deadline: at(-time.Minute)}, RiskOverdue},
		{"inside the warning window", Request{Status: RequestStatusOpen, Deadline: at(23 * time.Hour)}, RiskAtRisk},
		{"exactly at the window edge", Request{Status: RequestStatusOpen, Deadline: at(24 * time.Hour)}, RiskAtRisk},
		{"comfortably ahead", Request{Status: RequestStatusAwaitingParts, Deadline: at(25 * time.Hour)}, RiskOnTrack},
		{"extension moves the signal", Request{Status: RequestStatusOpen, Deadline: at(-time.Hour), ExtendedDeadline: at(48 * time.Hour)}, RiskOnTrack},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.request.RiskState(now))
		})
	}
}

func TestRequestStatus_Valid(t *testing.T) {
	for _, status := range []RequestStatus{RequestStatusOpen, RequestStatusInRepair, RequestStatusAwaitingParts, RequestStatusCompleted} {
		require.True(t, status.Valid())
	}
	require.False(t, RequestStatus("repaired").Valid())
	require.False(t, RequestStatus("").Valid())
}
