// Package notification defines the notification kinds the fulfillment flow emits
// and the outbox Message that carries them to the messaging sink.
package notification
