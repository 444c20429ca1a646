package notify

import "errors"

// ErrDelivery wraps every failed notification: transport errors, rejected
// status codes and short-circuited calls while the webhook breaker is open.
var ErrDelivery = errors.New("notification delivery failed")
