package model

import "time"

// Message is a rendered notification, independent of the delivery transport.
type Message struct {
	Title       string
	Description string
	Color       int
	Timestamp   time.Time
	Footer      string
}
