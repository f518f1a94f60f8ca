package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudanchapagain/okhati-backend/internal/auth"
	"github.com/sudanchapagain/okhati-backend/internal/checkout"
	"github.com/sudanchapagain/okhati-backend/internal/khalti"
	"github.com/sudanchapagain/okhati-backend/internal/orders"
	"github.com/sudanchapagain/okhati-backend/internal/users"
)

type stubGateway struct {
	initReq khalti.InitiateRequest
	lookup  khalti.LookupResponse
}

func (g *stubGateway) Initiate(_ context.Context, req khalti.InitiateRequest) (khalti.InitiateResponse, error) {
	g.initReq = req
	return khalti.InitiateResponse{Pidx: "pidx-t", PaymentURL: "https://pay.example.com/t"}, nil
}

func (g *stubGateway) Lookup(_ context.Context, pidx string) (khalti.LookupResponse, error) {
	resp := g.lookup
	resp.Pidx = pidx
	return resp, nil
}

type stubCheckoutStore struct{ created []orders.Order }

func (s *stubCheckoutStore) Create(_ context.Context, o orders.Order) (int64, error) {
	s.created = append(s.created, o)
	return 31, nil
}

func paymentsServer(t *testing.T) (*httptest.Server, auth.Tokens, *stubGateway, *stubCheckoutStore) {
	t.Helper()
	tokens := auth.Tokens{Secret: []byte("payments-test-secret")}
	authn := &Authenticator{
		Tokens: tokens,
		Users: &fakeUserLoader{byEmail: map[string]users.User{
			"buyer@example.com": {ID: 7, Name: "Sita", Email: "buyer@example.com", IsActive: true},
			"admin@example.com": {ID: 1, Name: "Admin", Email: "admin@example.com", IsStaff: true, IsActive: true},
		}},
	}
	gw := &stubGateway{lookup: khalti.LookupResponse{Status: "Completed", TotalAmount: 25000}}
	st := &stubCheckoutStore{}
	svc := &checkout.Service{
		Gateway:       gw,
		Store:         st,
		PublicBaseURL: "https://shop.example.com",
		ServiceName:   "okhati-api-test",
	}
	r := NewRouter(nil)
	(&PaymentsHandler{Checkout: svc, Gateway: gw, Auth: authn}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, tokens, gw, st
}

func TestInitiate_PlacesOrder(t *testing.T) {
	srv, tokens, gw, st := paymentsServer(t)

	payload := `{
		"token": {"id":"tok_1","email":"token@example.com","card":{"address_line1":"Main St","address_city":"Kathmandu","address_country":"Nepal","address_zip":"44600"}},
		"cartItems": [{"name":"Paracetamol","quantity":2,"price":50},{"name":"Bandage","quantity":1,"price":150}],
		"currentUser": {"id":999,"name":"Spoofed","email":"spoof@example.com"},
		"subtotal": 250
	}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/initiate", strings.NewReader(payload))
	require.NoError(t, err)
	tok, err := tokens.Issue("buyer@example.com")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out checkout.PlaceOrderResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "pidx-t", out.Pidx)
	assert.Equal(t, int64(31), out.OrderID)

	// the order is attributed to the authenticated user, not the posted one
	require.Len(t, st.created, 1)
	assert.Equal(t, int64(7), st.created[0].UserID)
	assert.Equal(t, "buyer@example.com", st.created[0].Email)
	assert.Equal(t, int64(25000), gw.initReq.Amount)
}

func TestInitiate_RequiresAuth(t *testing.T) {
	srv, _, _, _ := paymentsServer(t)
	res, err := srv.Client().Post(srv.URL+"/api/initiate", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLookup_StaffOnly(t *testing.T) {
	srv, tokens, _, _ := paymentsServer(t)

	res := get(t, srv, tokens, "/api/payment/lookup/pidx-x", "buyer@example.com")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = get(t, srv, tokens, "/api/payment/lookup/pidx-x", "admin@example.com")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out khalti.LookupResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "pidx-x", out.Pidx)
	assert.Equal(t, "Completed", out.Status)
}
