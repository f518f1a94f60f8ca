// Package stock keeps product stock counts in line with placed orders by
// consuming the order.placed stream.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/sudanchapagain/okhati-backend/internal/catalog"
	kafkax "github.com/sudanchapagain/okhati-backend/internal/kafka"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/redisx"
)

type Service struct {
	Catalog     *catalog.Repo
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler. It decrements the
// stock of every item on the order, once per event.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	// dedup on event_id so a redelivered event is not applied twice
	dkey := fmt.Sprintf(redisx.KeyDedup, "stock", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, it := range p.Items {
		if err := s.Catalog.DecrementStock(ctx, it.Name, it.Quantity); err != nil {
			return fmt.Errorf("decrement %q: %w", it.Name, err)
		}
	}

	if err := s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err(); err != nil {
		log.Printf("[stock] mark dedup %s: %v", env.EventID, err)
	}
	log.Printf("[stock] order %d applied, %d item(s)", p.OrderID, len(p.Items))
	return nil
}
