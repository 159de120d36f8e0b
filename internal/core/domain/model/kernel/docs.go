// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain:
//   - UUID: identifier of orders, driver tasks, tracking samples and outbox rows
//   - GeoPoint: a validated WGS84 coordinate reported by a driver device
//   - Recipient: the name, phone and address a parcel is delivered to
//
// Value objects are immutable and can only be obtained through their
// constructors; zero values fail Validate.
package kernel
