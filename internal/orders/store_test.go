package orders_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sudanchapagain/okhati-backend/internal/orders"
)

type orderStoreSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	store     *orders.Store
	container testcontainers.Container
}

func TestOrderStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(orderStoreSuite))
}

func (s *orderStoreSuite) SetupSuite() {
	ctx := s.T().Context()

	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("okhati"),
		postgres.WithUsername("app"),
		postgres.WithPassword("secret"),
		postgres.WithInitScripts(filepath.Join("..", "..", "migrations", "001_init.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	s.Require().NoError(err)
	s.container = ctr

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	s.store = &orders.Store{DB: s.pool}
}

func (s *orderStoreSuite) TearDownSuite() {
	ctx := context.Background()

	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(ctx))
	}
}

func (s *orderStoreSuite) createUser() int64 {
	ctx := s.T().Context()
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users(name, email, password, is_active)
		VALUES ($1, $2, 'x', TRUE) RETURNING id`,
		gofakeit.Name(), gofakeit.Email()).Scan(&id)
	s.Require().NoError(err)
	return id
}

func fakeOrder(userID int64) orders.Order {
	return orders.Order{
		UserID:        userID,
		Name:          gofakeit.Name(),
		Email:         gofakeit.Email(),
		OrderAmount:   250,
		TransactionID: gofakeit.UUID(),
		Items: []orders.LineItem{
			{Name: "Paracetamol", Quantity: 2, Price: 50},
			{Name: "Bandage", Quantity: 1, Price: 150},
		},
		ShippingAddress: &orders.ShippingAddress{
			Address:    gofakeit.Street(),
			City:       gofakeit.City(),
			Country:    "Nepal",
			PostalCode: gofakeit.Zip(),
		},
	}
}

func (s *orderStoreSuite) TestCreateAndGetByID() {
	t := s.T()
	ctx := t.Context()

	userID := s.createUser()
	in := fakeOrder(userID)

	id, err := s.store.Create(ctx, in)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.store.GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.OrderAmount, got.OrderAmount)
	assert.Equal(t, in.TransactionID, got.TransactionID)
	assert.False(t, got.IsDelivered)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Paracetamol", got.Items[0].Name)
	assert.Equal(t, 2, got.Items[0].Quantity)

	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, in.ShippingAddress.City, got.ShippingAddress.City)
}

func (s *orderStoreSuite) TestCreateRejectsEmptyCart() {
	t := s.T()

	in := fakeOrder(s.createUser())
	in.Items = nil

	_, err := s.store.Create(t.Context(), in)
	require.Error(t, err)
}

func (s *orderStoreSuite) TestCreateRejectsDuplicateTransaction() {
	t := s.T()
	ctx := t.Context()

	userID := s.createUser()
	in := fakeOrder(userID)

	_, err := s.store.Create(ctx, in)
	require.NoError(t, err)

	dup := fakeOrder(userID)
	dup.TransactionID = in.TransactionID
	_, err = s.store.Create(ctx, dup)
	require.Error(t, err)
}

func (s *orderStoreSuite) TestGetByIDNotFound() {
	t := s.T()

	_, err := s.store.GetByID(t.Context(), 99999999)
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func (s *orderStoreSuite) TestGetByUser() {
	t := s.T()
	ctx := t.Context()

	userID := s.createUser()
	otherID := s.createUser()

	for i := 0; i < 3; i++ {
		_, err := s.store.Create(ctx, fakeOrder(userID))
		require.NoError(t, err)
	}
	_, err := s.store.Create(ctx, fakeOrder(otherID))
	require.NoError(t, err)

	got, err := s.store.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, o := range got {
		assert.Equal(t, userID, o.UserID)
	}
}

func (s *orderStoreSuite) TestMarkDelivered() {
	t := s.T()
	ctx := t.Context()

	id, err := s.store.Create(ctx, fakeOrder(s.createUser()))
	require.NoError(t, err)

	require.NoError(t, s.store.MarkDelivered(ctx, id))

	got, err := s.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsDelivered)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func (s *orderStoreSuite) TestMarkDeliveredNotFound() {
	t := s.T()

	err := s.store.MarkDelivered(t.Context(), 99999999)
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func (s *orderStoreSuite) TestCascadeDelete() {
	t := s.T()
	ctx := t.Context()

	id, err := s.store.Create(ctx, fakeOrder(s.createUser()))
	require.NoError(t, err)

	_, err = s.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.pool.QueryRow(ctx,
		`SELECT count(*) FROM order_items WHERE order_id=$1`, id).Scan(&n))
	assert.Zero(t, n)
}
