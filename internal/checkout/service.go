// Package checkout implements the order placement workflow: validate the
// cart, open a payment session with the gateway, then persist the order
// aggregate tagged with the gateway's transaction reference.
package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/sudanchapagain/okhati-backend/internal/kafka"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
)

// ValidationError rejects a malformed or inconsistent cart before any
// external call is made.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return "invalid order: " + e.Reason }

// Gateway is the slice of the payment client the workflow needs.
type Gateway interface {
	Initiate(ctx context.Context, req khalti.InitiateRequest) (khalti.InitiateResponse, error)
}

// Store persists the order aggregate as one unit.
type Store interface {
	Create(ctx context.Context, o orders.Order) (int64, error)
}

// Publisher is the slice of the kafka producer the workflow needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CartItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type Card struct {
	AddressLine1   string `json:"address_line1"`
	AddressCity    string `json:"address_city"`
	AddressCountry string `json:"address_country"`
	AddressZip     string `json:"address_zip"`
}

// Token mirrors the payment method token posted by the storefront; the card
// block carries the billing address copied onto the order.
type Token struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Card  Card   `json:"card"`
}

type Buyer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

type PlaceOrderRequest struct {
	Token       Token      `json:"token"`
	CartItems   []CartItem `json:"cartItems"`
	CurrentUser Buyer      `json:"currentUser"`
	Subtotal    int64      `json:"subtotal"`
}

type PlaceOrderResult struct {
	PaymentURL string `json:"payment_url"`
	Pidx       string `json:"pidx"`
	OrderID    int64  `json:"order_id"`
}

type Service struct {
	Gateway  Gateway
	Store    Store
	Producer Publisher // optional
	// PublicBaseURL builds the provider's return/website URLs.
	PublicBaseURL string
	ServiceName   string
}

// PlaceOrder runs the whole checkout sequence. A gateway failure aborts
// before any persistence; a persistence failure after a successful initiate
// leaves an orphaned provider session, which is logged (the provider has no
// cancel API).
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error) {
	subtotal, err := validate(req)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	purchaseOrderID := "order_" + uuid.NewString()

	names := make([]string, 0, len(req.CartItems))
	details := make([]khalti.ProductDetail, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		names = append(names, it.Name)
		details = append(details, khalti.ProductDetail{
			Identity:   purchaseOrderID,
			Name:       it.Name,
			TotalPrice: it.Price * int64(it.Quantity),
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
		})
	}

	initReq := khalti.InitiateRequest{
		ReturnURL:         s.PublicBaseURL + "/payment-status",
		WebsiteURL:        s.PublicBaseURL,
		Amount:            subtotal * khalti.PaisaPerUnit,
		PurchaseOrderID:   purchaseOrderID,
		PurchaseOrderName: strings.Join(names, ", "),
		CustomerInfo: khalti.CustomerInfo{
			Name:  req.CurrentUser.Name,
			Email: req.CurrentUser.Email,
			// the storefront token has no phone field; its email rides along
			Phone: req.Token.Email,
		},
		ProductDetails: details,
	}

	initResp, err := s.Gateway.Initiate(ctx, initReq)
	if err != nil {
		return PlaceOrderResult{}, fmt.Errorf("initiate payment: %w", err)
	}

	order := orders.Order{
		UserID:        req.CurrentUser.ID,
		Name:          req.CurrentUser.Name,
		Email:         req.CurrentUser.Email,
		OrderAmount:   subtotal,
		TransactionID: initResp.Pidx,
		ShippingAddress: &orders.ShippingAddress{
			Address:    req.Token.Card.AddressLine1,
			City:       req.Token.Card.AddressCity,
			Country:    req.Token.Card.AddressCountry,
			PostalCode: req.Token.Card.AddressZip,
		},
	}
	for _, it := range req.CartItems {
		order.Items = append(order.Items, orders.LineItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	orderID, err := s.Store.Create(ctx, order)
	if err != nil {
		// payment session pidx is now orphaned on the provider side
		log.Printf("order persist failed after initiate, orphaned pidx=%s: %v", initResp.Pidx, err)
		return PlaceOrderResult{}, fmt.Errorf("persist order: %w", err)
	}

	s.publishPlaced(orderID, req, subtotal)

	return PlaceOrderResult{
		PaymentURL: initResp.PaymentURL,
		Pidx:       initResp.Pidx,
		OrderID:    orderID,
	}, nil
}

// publishPlaced emits the order.placed event, fire-and-forget. A lost event
// only delays the stock adjustment; the database row is the source of truth.
func (s *Service) publishPlaced(orderID int64, req PlaceOrderRequest, subtotal int64) {
	if s.Producer == nil {
		return
	}
	items := make([]orders.PlacedItem, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		items = append(items, orders.PlacedItem{Name: it.Name, Quantity: it.Quantity})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: fmt.Sprintf("%d", orderID),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID: orderID,
			UserID:  req.CurrentUser.ID,
			Amount:  subtotal,
			Items:   items,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// validate checks the cart and recomputes the subtotal server-side. The
// client's subtotal, when present, must agree with the recomputed one.
func validate(req PlaceOrderRequest) (int64, error) {
	if len(req.CartItems) == 0 {
		return 0, &ValidationError{Reason: "cart is empty"}
	}
	if req.CurrentUser.Email == "" {
		return 0, &ValidationError{Reason: "buyer email is required"}
	}

	var subtotal int64
	for _, it := range req.CartItems {
		switch {
		case it.Name == "":
			return 0, &ValidationError{Reason: "cart item name is required"}
		case it.Quantity <= 0:
			return 0, &ValidationError{Reason: fmt.Sprintf("invalid quantity for %q", it.Name)}
		case it.Price <= 0:
			return 0, &ValidationError{Reason: fmt.Sprintf("invalid price for %q", it.Name)}
		}
		subtotal += it.Price * int64(it.Quantity)
	}

	if req.Subtotal != 0 && req.Subtotal != subtotal {
		return 0, &ValidationError{
			Reason: fmt.Sprintf("subtotal mismatch: sent %d, cart totals %d", req.Subtotal, subtotal),
		}
	}
	return subtotal, nil
}
