// Package order contains the Order aggregate and its two state machines:
// Status, the fulfillment progress seen by the customer, and PaymentStatus,
// which merges gateway reconciliation and manual proof review.
//
// The aggregate enforces the transition graphs; deciding which transition a
// payment outcome or a driver task update implies belongs to the order
// orchestrator in the domain services package.
package order
