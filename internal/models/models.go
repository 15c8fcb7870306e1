package models

import (
	"fmt"
	"strings"
)

// Coordinate is a latitude/longitude pair. Equality is exact.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Facility struct {
	ID        int     `json:"id,omitempty"`
	Name      string  `json:"name"`
	OrgName   string  `json:"org_name,omitempty"`
	Address   string  `json:"address1,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CableReference ties a hop to a submarine cable it enters or exits.
type CableReference struct {
	ID         string     `json:"id"`
	EntryPoint Coordinate `json:"entry_point"`
}

type Hop struct {
	IPs       []string  `json:"ips"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	ISP       string    `json:"isp"`
	Facility  *Facility `json:"facility"`

	// ExitCable is set when the path departs this hop through a cable,
	// EntryCable when it arrives through one.
	ExitCable  *CableReference `json:"source_cable"`
	EntryCable *CableReference `json:"dest_cable"`

	DistanceTo   float64 `json:"distance_to,omitempty"`
	DistanceFrom float64 `json:"distance_from,omitempty"`
}

// Position returns where the hop is drawn. Facility coordinates win over
// the hop's own geolocation.
func (h Hop) Position() Coordinate {
	if h.Facility != nil {
		return Coordinate{Lat: h.Facility.Latitude, Lon: h.Facility.Longitude}
	}
	return Coordinate{Lat: h.Latitude, Lon: h.Longitude}
}

// NavigationState is the result of a cursor transition.
type NavigationState struct {
	Hop   Hop `json:"hop"`
	Index int `json:"index"`
	Count int `json:"count"`
}

const unavailable = "Unavailable"

// Describe renders the info panel text for the state.
func (s NavigationState) Describe() string {
	facName, facOrg := unavailable, unavailable
	if fac := s.Hop.Facility; fac != nil {
		if fac.Name != "" {
			facName = fac.Name
		}
		if fac.OrgName != "" {
			facOrg = fac.OrgName
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d / %d:\n", s.Index+1, s.Count)
	fmt.Fprintf(&b, "Location: %s, %s\n", s.Hop.City, s.Hop.Country)
	fmt.Fprintf(&b, "IP(s): %s\n", strings.Join(s.Hop.IPs, ", "))
	fmt.Fprintf(&b, "ISP: %s\n", s.Hop.ISP)
	fmt.Fprintf(&b, "Data Facility Name: %s\n", facName)
	fmt.Fprintf(&b, "Data Facility Org: %s", facOrg)
	return b.String()
}

// TimeInfo carries the timing summary of the traceroute that produced a run.
type TimeInfo struct {
	LongestDiff float64 `json:"longest_diff"`
	TotalTime   float64 `json:"total_time"`
}

// Run is one traceroute result resolved to hops.
type Run struct {
	Target      string    `json:"target"`
	Hops        []Hop     `json:"hops"`
	TimeInfo    *TimeInfo `json:"time_info,omitempty"`
	CacheStatus string    `json:"cache_status,omitempty"`
}

// Summary renders the static header shown next to the navigation panel.
func (r Run) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target: %s\n", r.Target)
	fmt.Fprintf(&b, "Hops: %d", len(r.Hops))
	if r.TimeInfo != nil {
		fmt.Fprintf(&b, "\nMax time between hops: %.2f ms", r.TimeInfo.LongestDiff)
		fmt.Fprintf(&b, "\nTotal time to target: %.2f ms", r.TimeInfo.TotalTime)
	}
	return b.String()
}
