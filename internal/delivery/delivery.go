// Package delivery defines the contract every inbound transport implements.
package delivery

import "context"

// Delivery is a serving surface of the application, started by the
// composition root and stopped through its lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
