package engine

import "time"

// Slot is one bookable start time as emitted to the caller. Time is
// always a UTC instant; grouping into booker-local dates happens on the
// Result map keys only.
type Slot struct {
	Time       time.Time `json:"time"`
	Attendees  int       `json:"attendees,omitempty"`
	BookingUID string    `json:"bookingUid,omitempty"`
	Away       bool      `json:"away,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Emoji      string    `json:"emoji,omitempty"`
}

// Troubleshooting carries the host-resolution trail for support tooling.
type Troubleshooting struct {
	RoutedTeamMemberIDs    []int64  `json:"routedTeamMemberIds,omitempty"`
	ContactOwnerConsidered bool     `json:"contactOwnerConsidered"`
	ContactOwnerAsked      string   `json:"contactOwnerAsked,omitempty"`
	RoutedHosts            []string `json:"routedHosts,omitempty"`
	PostSegmentHosts       []string `json:"postSegmentMatchingHosts,omitempty"`
	UsedFallbackHosts      bool     `json:"usedFallbackHosts"`
}

// Result maps booker-local dates (YYYY-MM-DD) to ordered slots.
type Result struct {
	Slots           map[string][]Slot `json:"slots"`
	Troubleshooting *Troubleshooting  `json:"troubleshooting,omitempty"`
}
