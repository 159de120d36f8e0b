package kernel

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	// LatitudeMin is the smallest accepted latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the largest accepted latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the smallest accepted longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the largest accepted longitude in decimal degrees.
	LongitudeMax = 180.0
)

// ErrGeoPointIsNotConstructed is returned when a zero-value GeoPoint is used.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is a WGS84 coordinate reported by a driver device.
// It is an immutable value object; the zero value fails Validate because (0,0)
// is a real place in the Gulf of Guinea and must never be mistaken for "unknown".
//
// Example:
//
//	p, err := kernel.NewGeoPoint(-6.2088, 106.8456)
//	if err != nil {
//	    // out of range
//	}
//	fmt.Println(p) // GeoPoint(-6.208800,106.845600)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates and returns the point.
//
// Parameters:
//   - lat: latitude within [LatitudeMin..LatitudeMax]
//   - lng: longitude within [LongitudeMin..LongitudeMax]
//
// Returns:
//   - GeoPoint: a valid point
//   - error: ValueIsOutOfRangeError for each coordinate that is out of bounds
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate reports whether the point was built by NewGeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two constructed points coordinate by coordinate.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}
	p.lng = lng
	return nil
}
