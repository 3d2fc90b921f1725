package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ravinder1302/ARS-Kart/models"
	"github.com/ravinder1302/ARS-Kart/notifier"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// --- Mock product repository ---

type mockProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	findErr  error
}

func newMockProductRepo(products ...models.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[primitive.ObjectID]models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (m *mockProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var found []models.Product
	seen := make(map[primitive.ObjectID]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := m.products[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (m *mockProductRepo) Find(_ context.Context, _ bson.M, _, _ int) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Product
	for _, p := range m.products {
		all = append(all, p)
	}
	return all, int64(len(all)), nil
}

func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = *p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, id primitive.ObjectID, _ bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	delete(m.products, id)
	return 1, nil
}

// --- Mock order repository ---

type mockOrderRepo struct {
	mu       sync.Mutex
	orders   map[primitive.ObjectID]models.Order
	payments map[primitive.ObjectID]models.Payment
	lines    []models.OrderLine

	failCommit bool
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:   make(map[primitive.ObjectID]models.Order),
		payments: make(map[primitive.ObjectID]models.Payment),
	}
}

// CreateAggregate is all-or-nothing like the real transaction: when commit
// fails, nothing is recorded.
func (m *mockOrderRepo) CreateAggregate(_ context.Context, order *models.Order, payment *models.Payment, lines []models.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCommit {
		return errors.New("order commit aborted: simulated storage fault")
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	payment.OrderID = order.ID
	m.orders[order.ID] = *order
	m.payments[order.ID] = *payment
	for i := range lines {
		lines[i].OrderID = order.ID
		m.lines = append(m.lines, lines[i])
	}
	return nil
}

func (m *mockOrderRepo) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) FindAll(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

func (m *mockOrderRepo) FindByIDAndUser(_ context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	return &o, nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &o, nil
}

func (m *mockOrderRepo) FindLinesByOrderIDs(_ context.Context, orderIDs []primitive.ObjectID) ([]models.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[primitive.ObjectID]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	var result []models.OrderLine
	for _, l := range m.lines {
		if want[l.OrderID] {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	o.Status = status
	m.orders[orderID] = o
	return &o, nil
}

func (m *mockOrderRepo) payment(orderID primitive.ObjectID) (models.Payment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[orderID]
	return p, ok
}

func (m *mockOrderRepo) counts() (orders, payments, lines int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), len(m.payments), len(m.lines)
}

// --- Mock cart repository ---

type cartKey struct {
	user    primitive.ObjectID
	product primitive.ObjectID
}

type mockCartRepo struct {
	mu    sync.Mutex
	items map[cartKey]int

	failDeletes int // fail this many DeleteByUserAndProducts calls
	deleteCalls int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: make(map[cartKey]int)}
}

func (m *mockCartRepo) put(user, product primitive.ObjectID, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[cartKey{user, product}] = qty
}

func (m *mockCartRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *mockCartRepo) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lines []models.CartLine
	for k, qty := range m.items {
		if k.user == userID {
			lines = append(lines, models.CartLine{UserID: k.user, ProductID: k.product, Quantity: qty})
		}
	}
	return lines, nil
}

func (m *mockCartRepo) AddLine(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[cartKey{userID, productID}] += quantity
	return nil
}

func (m *mockCartRepo) SetQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cartKey{userID, productID}
	if _, ok := m.items[k]; !ok {
		return 0, nil
	}
	m.items[k] = quantity
	return 1, nil
}

func (m *mockCartRepo) DeleteLine(_ context.Context, userID, productID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cartKey{userID, productID}
	if _, ok := m.items[k]; !ok {
		return 0, nil
	}
	delete(m.items, k)
	return 1, nil
}

func (m *mockCartRepo) DeleteByUserAndProducts(_ context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteCalls <= m.failDeletes {
		return errors.New("simulated cart store outage")
	}
	for _, pid := range productIDs {
		delete(m.items, cartKey{userID, pid})
	}
	return nil
}

func (m *mockCartRepo) DeleteAllByUser(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if k.user == userID {
			delete(m.items, k)
		}
	}
	return nil
}

// --- Mock notifier ---

type mockNotifier struct {
	mu sync.Mutex

	failConfirmation bool

	confirmations []mockConfirmation
	statusUpdates []string
}

type mockConfirmation struct {
	Email   string
	OrderID string
	Lines   []notifier.ConfirmationLine
	Total   models.Money
}

func (m *mockNotifier) SendOrderConfirmation(_ context.Context, email, orderID string, lines []notifier.ConfirmationLine, total models.Money, _ models.ShippingSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failConfirmation {
		return errors.New("simulated smtp failure")
	}
	m.confirmations = append(m.confirmations, mockConfirmation{Email: email, OrderID: orderID, Lines: lines, Total: total})
	return nil
}

func (m *mockNotifier) SendOrderStatusUpdate(_ context.Context, _, orderID, newStatus, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, orderID+":"+newStatus)
	return nil
}

func (m *mockNotifier) confirmationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.confirmations)
}
