// Package task models DriverTask, a single delivery attempt assigned to one
// driver, with its forward-only status, cached position and proof of delivery.
package task
