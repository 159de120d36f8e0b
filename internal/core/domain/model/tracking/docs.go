// Package tracking holds the append-only GPS sample history of driver tasks.
package tracking
