// Package services holds the domain services of the fulfillment flow:
//   - OrderOrchestrator: the single authority deriving Order transitions from
//     payment outcomes, manual payment review and driver task progress
//   - OrderDispatcher: hands an order to a driver by opening a DriverTask
//
// Services are stateless and never touch storage; application handlers load
// aggregates, call a service and persist the result in one transaction.
package services
