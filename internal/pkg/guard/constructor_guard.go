// Package guard holds ConstructorGuard, the marker embedded in value objects,
// commands and queries so a zero-value instance can be told apart from one built
// through its constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes no error of its own.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded by value; its zero value reports "not constructed".
//
// Example usage:
//
//	var ErrPingNotConstructed = errors.New("Ping must be created via NewPing")
//
//	type Ping struct {
//	    point kernel.GeoPoint
//	    guard guard.ConstructorGuard
//	}
//
//	func NewPing(point kernel.GeoPoint) Ping {
//	    return Ping{point: point, guard: guard.NewConstructorGuard()}
//	}
//
//	func (p Ping) Validate() error {
//	    return p.guard.Validate(ErrPingNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the enclosing object as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
