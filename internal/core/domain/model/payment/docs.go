// Package payment describes what the external payment gateway reports.
// Nothing here is persisted; outcomes are folded into the order aggregate.
package payment
