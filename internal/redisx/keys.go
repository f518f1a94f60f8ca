package redisx

import "time"

const (
	// Cached order aggregate JSON: order:{order_id}
	KeyOrder = "order:%d"

	// Cached recommendation payload for the storefront landing page.
	KeyRecommend = "catalog:recommend"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLRecommend  = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
