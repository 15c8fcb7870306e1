// Package cables holds the static submarine cable feature collection and
// matches hop pairs to the cable most likely connecting them.
package cables

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/models"
)

var ErrNoCable = errors.New("no cable within tolerance")

type Cable struct {
	ID    string
	Name  string
	Color string
	// Endpoints holds both ends of every sub-path. Which end is the landing
	// point varies, so both are kept.
	Endpoints []models.Coordinate
}

// Match is the result of a nearest cable lookup.
type Match struct {
	ID        string
	EndpointA models.Coordinate
	EndpointB models.Coordinate
	// AvgDistanceKm is the mean distance of the two positions to their
	// nearest endpoints.
	AvgDistanceKm float64
}

type Catalog struct {
	collection *geojson.FeatureCollection
	cables     map[string]*Cable
	order      []string
	raw        []byte
}

// LoadFile reads a cable feature collection from disk.
func LoadFile(path string, logger *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cable collection: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("cable catalog loaded", zap.String("path", path), zap.Int("cables", c.Len()))
	}
	return c, nil
}

// Parse builds a catalog from GeoJSON. Features without an id are skipped.
func Parse(data []byte) (*Catalog, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cable collection: %w", err)
	}

	c := &Catalog{
		collection: fc,
		cables:     make(map[string]*Cable),
		raw:        data,
	}
	for _, f := range fc.Features {
		id := f.Properties.MustString("id", "")
		if id == "" {
			continue
		}
		cable := &Cable{
			ID:    id,
			Name:  f.Properties.MustString("name", ""),
			Color: f.Properties.MustString("color", ""),
		}
		for _, ls := range subPaths(f.Geometry) {
			if len(ls) == 0 {
				continue
			}
			cable.Endpoints = append(cable.Endpoints, toCoordinate(ls[0]), toCoordinate(ls[len(ls)-1]))
		}
		if _, dup := c.cables[id]; !dup {
			c.order = append(c.order, id)
		}
		c.cables[id] = cable
	}
	return c, nil
}

func subPaths(g orb.Geometry) []orb.LineString {
	switch geom := g.(type) {
	case orb.MultiLineString:
		return geom
	case orb.LineString:
		return []orb.LineString{geom}
	default:
		return nil
	}
}

// geojson positions are [lon, lat]
func toCoordinate(p orb.Point) models.Coordinate {
	return models.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

func toPoint(c models.Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func (c *Catalog) Len() int {
	return len(c.cables)
}

func (c *Catalog) Get(id string) (*Cable, bool) {
	cable, ok := c.cables[id]
	return cable, ok
}

// Collection returns the feature collection as loaded.
func (c *Catalog) Collection() *geojson.FeatureCollection {
	return c.collection
}

// Raw returns the original GeoJSON bytes.
func (c *Catalog) Raw() []byte {
	return c.raw
}

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(a, b models.Coordinate) float64 {
	return geo.DistanceHaversine(toPoint(a), toPoint(b)) / 1000
}

// Nearest finds the cable whose endpoints lie closest on average to a and
// b. Cables where both positions are nearest to the same endpoint cannot
// connect them and are skipped.
func (c *Catalog) Nearest(a, b models.Coordinate, toleranceKm float64) (Match, error) {
	best := Match{AvgDistanceKm: math.Inf(1)}

	for _, id := range c.order {
		cable := c.cables[id]
		if len(cable.Endpoints) == 0 {
			continue
		}

		minA, minB := math.Inf(1), math.Inf(1)
		var endA, endB models.Coordinate
		for _, ep := range cable.Endpoints {
			if d := DistanceKm(a, ep); d < minA {
				minA, endA = d, ep
			}
			if d := DistanceKm(b, ep); d < minB {
				minB, endB = d, ep
			}
		}

		avg := (minA + minB) / 2
		if endA != endB && avg < best.AvgDistanceKm {
			best = Match{ID: id, EndpointA: endA, EndpointB: endB, AvgDistanceKm: avg}
		}
	}

	if best.ID == "" || best.AvgDistanceKm > toleranceKm {
		return Match{}, ErrNoCable
	}
	return best, nil
}

// Annotate fills missing cable references and distances on consecutive hop
// pairs, anchoring each hop at its resolved position (facility first). The
// returned slice is a copy; existing references are kept.
func (c *Catalog) Annotate(hops []models.Hop, toleranceKm float64) []models.Hop {
	out := append([]models.Hop(nil), hops...)

	for i := 1; i < len(out); i++ {
		prev, cur := &out[i-1], &out[i]
		a, b := prev.Position(), cur.Position()

		if prev.ExitCable == nil && cur.EntryCable == nil {
			if m, err := c.Nearest(a, b, toleranceKm); err == nil {
				prev.ExitCable = &models.CableReference{ID: m.ID, EntryPoint: m.EndpointA}
				cur.EntryCable = &models.CableReference{ID: m.ID, EntryPoint: m.EndpointB}
			}
		}

		dist := DistanceKm(a, b)
		prev.DistanceFrom = dist
		cur.DistanceTo = dist
	}

	return out
}
