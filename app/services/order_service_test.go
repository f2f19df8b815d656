package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/motomart/app/jobs"
	"github.com/shashiranjanraj/motomart/app/models"
	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/queue"
)

// ─── In-memory fakes ──────────────────────────────────────────────────────────

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
	finds  int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]models.Order{}}
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, mongo.ErrNoDocuments
	}
	return o, nil
}

func (s *fakeOrderStore) FindByUser(_ context.Context, user primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.User == user {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) MarkPaid(_ context.Context, id primitive.ObjectID, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	o.IsPaid = true
	o.PaidAt = &paidAt
	s.orders[id] = o
	return nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

type fakeProductStore struct {
	products map[primitive.ObjectID]models.Product
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	s := &fakeProductStore{products: map[primitive.ObjectID]models.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) All(context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func (s *fakeProductStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) Update(_ context.Context, id primitive.ObjectID, _ bson.M) (bool, error) {
	_, ok := s.products[id]
	return ok, nil
}

func (s *fakeProductStore) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := s.products[id]
	delete(s.products, id)
	return ok, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func testIdentity() middleware.Identity {
	return middleware.Identity{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Ayesha Rahman",
		Email: "ayesha@example.com",
	}
}

func setup(t *testing.T) (*services.OrderService, *fakeOrderStore, *fakeProductStore, models.Product) {
	t.Helper()
	product := models.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Toyota Corolla",
		Category: "sedan",
		Price:    1000,
		Image:    "https://example.com/corolla.jpg",
	}
	orders := newFakeOrderStore()
	products := newFakeProductStore(product)
	return services.NewOrderService(orders, products), orders, products, product
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestCreateStoresSubmittedTotalVerbatim(t *testing.T) {
	svc, store, _, product := setup(t)
	caller := testIdentity()

	// Total deliberately disagrees with qty*price; the server does not
	// recompute it.
	view, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 2, Price: 1000}},
		TotalPrice: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), view.TotalPrice)
	assert.False(t, view.IsPaid)

	id, _ := primitive.ObjectIDFromHex(view.ID)
	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, float64(1), stored.TotalPrice)
}

func TestCreateDefaultsQtyToOne(t *testing.T) {
	svc, _, _, product := setup(t)
	caller := testIdentity()

	view, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)
	require.Len(t, view.Products, 1)
	assert.Equal(t, 1, view.Products[0].Qty)
}

func TestListExpandsLineItems(t *testing.T) {
	svc, _, _, product := setup(t)
	caller := testIdentity()

	_, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	views, err := svc.List(context.Background(), caller.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Products, 1)
	assert.Equal(t, "Toyota Corolla", views[0].Products[0].Product.Name)
	assert.Equal(t, float64(1000), views[0].Products[0].Price)
}

func TestPaySetsPaidAtAndReportsSuccess(t *testing.T) {
	svc, store, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	view, err := svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err)
	assert.True(t, view.IsPaid)
	require.NotNil(t, view.PaidAt)

	id, _ := primitive.ObjectIDFromHex(created.ID)
	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestPayTwiceRefreshesPaidAt(t *testing.T) {
	svc, _, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	first, err := svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err)

	// Re-paying is not rejected; the timestamp simply moves forward.
	assert.True(t, second.PaidAt.After(*first.PaidAt))
}

func TestOrderAccessProtocol(t *testing.T) {
	svc, store, _, product := setup(t)
	owner := testIdentity()
	stranger := testIdentity()

	created, err := svc.Create(context.Background(), owner.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	t.Run("malformed id fails before the store is touched", func(t *testing.T) {
		before := store.finds
		_, err := svc.Pay(context.Background(), owner, "not-an-object-id")
		var se *services.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 400, se.Status)
		assert.Equal(t, "Invalid order ID", se.Message)
		assert.Equal(t, before, store.finds)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		_, err := svc.Pay(context.Background(), owner, primitive.NewObjectID().Hex())
		var se *services.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 404, se.Status)
		assert.Equal(t, "Order not found", se.Message)
	})

	t.Run("foreign order is a 403 and nothing mutates", func(t *testing.T) {
		_, err := svc.Pay(context.Background(), stranger, created.ID)
		var se *services.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 403, se.Status)
		assert.Equal(t, "Forbidden: not your order", se.Message)

		err = svc.Cancel(context.Background(), stranger.ID, created.ID)
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 403, se.Status)

		id, _ := primitive.ObjectIDFromHex(created.ID)
		stored, err := store.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, stored.IsPaid, "foreign pay must not flip the paid flag")
	})
}

func TestCancelDeletesEvenWhenPaid(t *testing.T) {
	svc, store, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err)

	// No invariant blocks cancelling a paid order.
	require.NoError(t, svc.Cancel(context.Background(), caller.ID, created.ID))

	id, _ := primitive.ObjectIDFromHex(created.ID)
	_, err = store.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

// ─── Invoice pipeline ─────────────────────────────────────────────────────────

// captureDriver records dispatched payloads instead of queueing them, and
// never hands anything to a worker.
type captureDriver struct {
	mu     sync.Mutex
	pushed [][]byte
	err    error
}

func (d *captureDriver) Push(payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.pushed = append(d.pushed, payload)
	return nil
}

func (d *captureDriver) Pop(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPayQueuesInvoiceEmailForCaller(t *testing.T) {
	driver := &captureDriver{}
	queue.SetDriver(driver)
	t.Cleanup(func() { queue.SetDriver(queue.NewMemoryDriver()) })

	svc, _, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err)

	driver.mu.Lock()
	defer driver.mu.Unlock()
	require.Len(t, driver.pushed, 1, "paying must dispatch exactly one email job")

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(driver.pushed[0], &env))
	assert.Equal(t, jobs.InvoiceEmailJobName, env.Type)

	var job jobs.InvoiceEmailJob
	require.NoError(t, json.Unmarshal(env.Payload, &job))
	assert.Equal(t, caller.Email, job.To)
	assert.Equal(t, "Your invoice for order "+created.ID, job.Subject)
	assert.Equal(t, "invoice_"+created.ID+".pdf", job.Filename)
	assert.True(t, bytes.HasPrefix(job.PDF, []byte("%PDF")), "attachment must be a PDF")
}

func TestPaySucceedsWhenEmailDispatchFails(t *testing.T) {
	queue.SetDriver(&captureDriver{err: errors.New("queue down")})
	t.Cleanup(func() { queue.SetDriver(queue.NewMemoryDriver()) })

	svc, store, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	view, err := svc.Pay(context.Background(), caller, created.ID)
	require.NoError(t, err, "delivery is best effort; the confirmation must not fail")
	assert.True(t, view.IsPaid)

	id, _ := primitive.ObjectIDFromHex(created.ID)
	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestPaySucceedsWhenArchiveDiskNeverBooted(t *testing.T) {
	// STORAGE_DISK selects the s3 disk, but without a bucket that disk never
	// boots. Archiving has to skip, not take down the confirmation.
	config.Set("INVOICE_ARCHIVE", "true")
	config.Set("STORAGE_DISK", "s3")
	t.Cleanup(func() {
		config.Set("INVOICE_ARCHIVE", "false")
		config.Set("STORAGE_DISK", "local")
	})

	svc, store, _, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 1, Price: 1000}},
		TotalPrice: 1000,
	})
	require.NoError(t, err)

	var view services.OrderView
	require.NotPanics(t, func() {
		view, err = svc.Pay(context.Background(), caller, created.ID)
	})
	require.NoError(t, err)
	assert.True(t, view.IsPaid)

	id, _ := primitive.ObjectIDFromHex(created.ID)
	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestInvoiceDataUsesCapturedPrices(t *testing.T) {
	svc, _, products, product := setup(t)
	caller := testIdentity()

	created, err := svc.Create(context.Background(), caller.ID, services.OrderInput{
		Products:   []services.OrderItemInput{{Product: product.ID.Hex(), Qty: 2, Price: 1000}},
		TotalPrice: 2000,
	})
	require.NoError(t, err)

	// Reprice the listing after the order was placed.
	product.Price = 9999
	products.products[product.ID] = product

	data, err := svc.InvoiceData(context.Background(), caller, created.ID)
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Equal(t, float64(1000), data.Items[0].UnitPrice)
	assert.Equal(t, float64(2000), data.Total)
	assert.Equal(t, caller.Name, data.CustomerName)
	assert.Equal(t, caller.Email, data.CustomerEmail)
}
