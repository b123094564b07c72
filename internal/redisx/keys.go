package redisx

import "time"

const (
	// Dedup of gateway webhook events: dedup:webhook:{event_id}
	KeyWebhookDedup = "dedup:webhook:%s"

	// Cache for the public order lookup: order_status:{order_number}
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLWebhookDedup = 48 * time.Hour
	TTLStatusCache  = 5 * time.Minute
)
