package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ravinder1302/ARS-Kart/events"
	"github.com/ravinder1302/ARS-Kart/models"
	"github.com/ravinder1302/ARS-Kart/notifier"
	"github.com/ravinder1302/ARS-Kart/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	// Price is the client-asserted unit price. It is informational only and
	// never used for the total; the server resolves authoritative prices.
	Price *models.Money `json:"price,omitempty"`
}

type ShippingRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	ZipCode   string `json:"zipCode" binding:"required"`
}

type PlaceOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,dive"`
	Shipping      ShippingRequest    `json:"shipping" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	// Total is the client-declared total. The server value always wins; a
	// mismatch is not an error.
	Total *models.Money `json:"total,omitempty"`
}

type PlaceOrderResult struct {
	OrderID string `json:"orderId"`
}

// OrderLineDetail is the wire shape of one line in an order response,
// decorated with the current product record where it still exists.
type OrderLineDetail struct {
	ProductID   string       `json:"productId"`
	Name        string       `json:"name"`
	Quantity    int          `json:"quantity"`
	Price       models.Money `json:"price"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Category    string       `json:"category,omitempty"`
}

type OrderDetail struct {
	ID            string                  `json:"_id"`
	TotalAmount   models.Money            `json:"total_amount"`
	PaymentMethod models.PaymentMethod    `json:"payment_method"`
	PaymentStatus models.PaymentStatus    `json:"payment_status"`
	Status        models.OrderStatus      `json:"status"`
	Shipping      models.ShippingSnapshot `json:"shipping"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Items         []OrderLineDetail       `json:"items"`
}

// OrderConfig bounds the orchestrator's interactions with storage and the
// notifier. Zero values fall back to sane defaults.
type OrderConfig struct {
	CommitTimeout    time.Duration
	NotifyTimeout    time.Duration
	CartClearRetries int
	CartClearBackoff time.Duration
}

func (c *OrderConfig) applyDefaults() {
	if c.CommitTimeout <= 0 {
		c.CommitTimeout = 5 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 3 * time.Second
	}
	if c.CartClearRetries <= 0 {
		c.CartClearRetries = 3
	}
	if c.CartClearBackoff <= 0 {
		c.CartClearBackoff = 500 * time.Millisecond
	}
}

// OrderService orchestrates order placement: validate, resolve authoritative
// prices, commit the order aggregate atomically, then clear the cart and
// notify as best-effort follow-ups.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	notifier    notifier.Notifier
	producer    *events.Producer
	cfg         OrderConfig

	bg sync.WaitGroup
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	n notifier.Notifier,
	producer *events.Producer,
	cfg OrderConfig,
) *OrderService {
	cfg.applyDefaults()
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		notifier:    n,
		producer:    producer,
		cfg:         cfg,
	}
}

// Drain waits for in-flight background work (cart-clear retries, emails).
// Called on shutdown so fire-and-forget work is not cut off mid-write.
func (s *OrderService) Drain() {
	s.bg.Wait()
}

// PlaceOrder runs one order-creation attempt. Failures before the commit
// leave no writes behind; a commit failure aborts atomically, so the caller
// may retry the whole request.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req *PlaceOrderRequest) (*PlaceOrderResult, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}

	// Validating
	if serviceErr := validatePlaceOrder(req); serviceErr != nil {
		return nil, serviceErr
	}

	productIDs, missing := parseProductIDs(req.Items)
	var products map[primitive.ObjectID]models.Product
	if len(missing) == 0 {
		products, missing, err = s.resolveProducts(ctx, productIDs)
		if err != nil {
			zap.L().Error("Catalog lookup failed", zap.Error(err))
			return nil, newServiceError(http.StatusInternalServerError, "Failed to place order")
		}
	}
	if len(missing) > 0 {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Some products in your cart no longer exist: " + strings.Join(missing, ", "),
			Details:    map[string]interface{}{"missing_products": missing},
		}
	}

	// Reserving: authoritative total from server-side prices.
	method := models.PaymentMethod(req.PaymentMethod)
	total := models.ZeroMoney()
	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		oid, _ := primitive.ObjectIDFromHex(item.ProductID)
		price := products[oid].Price
		total = total.Add(price.MulQty(item.Quantity))
		lines = append(lines, models.OrderLine{
			ID:        primitive.NewObjectID(),
			ProductID: oid,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	order := &models.Order{
		UserID:        userOID,
		TotalAmount:   total,
		PaymentMethod: method,
		PaymentStatus: paymentStatusFor(method),
		Status:        models.OrderStatusPending,
		Shipping: models.ShippingSnapshot{
			FirstName: req.Shipping.FirstName,
			LastName:  defaultIfEmpty(req.Shipping.LastName, "-"),
			Email:     req.Shipping.Email,
			Address:   req.Shipping.Address,
			City:      req.Shipping.City,
			State:     req.Shipping.State,
			ZipCode:   req.Shipping.ZipCode,
		},
	}
	payment := &models.Payment{
		ID:     primitive.NewObjectID(),
		Amount: total,
		Method: method,
		Status: order.PaymentStatus,
	}
	if method == models.PaymentMethodCard {
		payment.TransactionID = uuid.NewString()
	}

	// Committing: one atomic unit, bounded by its own timeout.
	commitCtx, cancel := context.WithTimeout(ctx, s.cfg.CommitTimeout)
	defer cancel()
	if err := s.orderRepo.CreateAggregate(commitCtx, order, payment, lines); err != nil {
		zap.L().Error("Order commit failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to place order")
	}

	zap.L().Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.String("total", total.StringFixed(2)))

	// Clearing Cart: non-fatal; retried in the background on failure.
	s.clearCart(ctx, userOID, productIDs)

	// Notifying: fire-and-forget with its own timeout.
	s.notifyConfirmation(order, lines, products)

	s.publishPlaced(order, len(lines))

	return &PlaceOrderResult{OrderID: order.ID.Hex()}, nil
}

// resolveProducts maps requested IDs to current product records and reports
// the IDs that no longer exist.
func (s *OrderService) resolveProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, []string, error) {
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id.Hex())
		}
	}
	return products, missing, nil
}

func (s *OrderService) clearCart(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) {
	clearCtx, cancel := context.WithTimeout(ctx, s.cfg.CommitTimeout)
	defer cancel()

	err := s.cartRepo.DeleteByUserAndProducts(clearCtx, userID, productIDs)
	if err == nil {
		return
	}
	zap.L().Warn("Cart clear failed, retrying in background",
		zap.String("user_id", userID.Hex()),
		zap.Error(err))

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		for attempt := 1; attempt <= s.cfg.CartClearRetries; attempt++ {
			time.Sleep(s.cfg.CartClearBackoff * time.Duration(attempt))

			retryCtx, cancel := context.WithTimeout(context.Background(), s.cfg.CommitTimeout)
			err := s.cartRepo.DeleteByUserAndProducts(retryCtx, userID, productIDs)
			cancel()
			if err == nil {
				return
			}
			zap.L().Warn("Cart clear retry failed",
				zap.String("user_id", userID.Hex()),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}()
}

func (s *OrderService) notifyConfirmation(order *models.Order, lines []models.OrderLine, products map[primitive.ObjectID]models.Product) {
	if s.notifier == nil {
		return
	}

	confLines := make([]notifier.ConfirmationLine, 0, len(lines))
	for _, l := range lines {
		confLines = append(confLines, notifier.ConfirmationLine{
			Name:     products[l.ProductID].Name,
			Quantity: l.Quantity,
			Price:    l.Price,
		})
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		err := s.notifier.SendOrderConfirmation(ctx, order.Shipping.Email, order.ID.Hex(), confLines, order.TotalAmount, order.Shipping)
		if err != nil {
			zap.L().Warn("Order confirmation email failed",
				zap.String("order_id", order.ID.Hex()),
				zap.Error(err))
		}
	}()
}

func (s *OrderService) publishPlaced(order *models.Order, itemCount int) {
	if s.producer == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		err := s.producer.PublishOrderPlaced(ctx, events.OrderPlacedEvent{
			OrderID:   order.ID.Hex(),
			UserID:    order.UserID.Hex(),
			Total:     order.TotalAmount.StringFixed(2),
			ItemCount: itemCount,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			zap.L().Warn("Order placed event publish failed",
				zap.String("order_id", order.ID.Hex()),
				zap.Error(err))
		}
	}()
}

// GetUserOrders returns the caller's orders with their line items, newest
// first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]OrderDetail, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}

	orders, err := s.orderRepo.FindByUser(ctx, userOID)
	if err != nil {
		zap.L().Error("Failed to fetch orders", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch orders")
	}
	if len(orders) == 0 {
		return []OrderDetail{}, nil
	}

	orderIDs := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	lines, err := s.orderRepo.FindLinesByOrderIDs(ctx, orderIDs)
	if err != nil {
		zap.L().Error("Failed to fetch order items", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	details, err := s.decorateLines(ctx, lines)
	if err != nil {
		zap.L().Error("Failed to decorate order items", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	result := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderDetail(o, details[o.ID]))
	}
	return result, nil
}

// GetOrderByID returns one order, 404 when it does not exist or belongs to
// another user.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID string) (*OrderDetail, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	orderOID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid order ID format")
	}

	order, err := s.orderRepo.FindByIDAndUser(ctx, orderOID, userOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newServiceError(http.StatusNotFound, "Order not found")
		}
		zap.L().Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch order details")
	}

	lines, err := s.orderRepo.FindLinesByOrderIDs(ctx, []primitive.ObjectID{order.ID})
	if err != nil {
		zap.L().Error("Failed to fetch order items", zap.String("order_id", orderID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch order details")
	}

	details, err := s.decorateLines(ctx, lines)
	if err != nil {
		zap.L().Error("Failed to decorate order items", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch order details")
	}

	detail := toOrderDetail(*order, details[order.ID])
	return &detail, nil
}

// GetAllOrders lists every order for the admin panel.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]OrderDetail, *ServiceError) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch all orders", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	result := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderDetail(o, nil))
	}
	return result, nil
}

// UpdateStatus performs an admin fulfillment-status transition. The status
// change is a single-field update; the follow-up email is best-effort.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*OrderDetail, *ServiceError) {
	orderOID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid order ID format")
	}
	next := models.OrderStatus(newStatus)
	if !next.Valid() {
		return nil, newServiceError(http.StatusBadRequest, "Invalid order status")
	}

	order, err := s.orderRepo.FindByID(ctx, orderOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newServiceError(http.StatusNotFound, "Order not found")
		}
		zap.L().Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to update order status")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, newServiceError(http.StatusBadRequest,
			"Cannot transition order from "+string(order.Status)+" to "+string(next))
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderOID, next)
	if err != nil {
		zap.L().Error("Failed to update order status", zap.String("order_id", orderID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to update order status")
	}

	s.notifyStatusChange(updated)
	s.publishStatusChange(updated)

	detail := toOrderDetail(*updated, nil)
	return &detail, nil
}

func (s *OrderService) notifyStatusChange(order *models.Order) {
	if s.notifier == nil || order.Shipping.Email == "" {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		err := s.notifier.SendOrderStatusUpdate(ctx, order.Shipping.Email, order.ID.Hex(), string(order.Status), order.Shipping.FirstName)
		if err != nil {
			zap.L().Warn("Order status email failed",
				zap.String("order_id", order.ID.Hex()),
				zap.Error(err))
		}
	}()
}

func (s *OrderService) publishStatusChange(order *models.Order) {
	if s.producer == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		err := s.producer.PublishOrderStatusChanged(ctx, events.OrderStatusChangedEvent{
			OrderID:   order.ID.Hex(),
			NewStatus: string(order.Status),
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			zap.L().Warn("Order status event publish failed",
				zap.String("order_id", order.ID.Hex()),
				zap.Error(err))
		}
	}()
}

// decorateLines joins order lines with current product records, grouped by
// order. Deleted products keep the snapshot price but fall back to a
// placeholder name.
func (s *OrderService) decorateLines(ctx context.Context, lines []models.OrderLine) (map[primitive.ObjectID][]OrderLineDetail, error) {
	if len(lines) == 0 {
		return map[primitive.ObjectID][]OrderLineDetail{}, nil
	}

	productIDs := make([]primitive.ObjectID, 0, len(lines))
	seen := make(map[primitive.ObjectID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			productIDs = append(productIDs, l.ProductID)
		}
	}

	found, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	byOrder := make(map[primitive.ObjectID][]OrderLineDetail)
	for _, l := range lines {
		detail := OrderLineDetail{
			ProductID: l.ProductID.Hex(),
			Name:      "Unknown Product",
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
		if p, ok := products[l.ProductID]; ok {
			detail.Name = p.Name
			detail.Description = p.Description
			detail.ImageURL = p.ImageURL
			detail.Category = p.Category
		}
		byOrder[l.OrderID] = append(byOrder[l.OrderID], detail)
	}
	return byOrder, nil
}

func toOrderDetail(o models.Order, items []OrderLineDetail) OrderDetail {
	if items == nil {
		items = []OrderLineDetail{}
	}
	return OrderDetail{
		ID:            o.ID.Hex(),
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
		Shipping:      o.Shipping,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         items,
	}
}

func validatePlaceOrder(req *PlaceOrderRequest) *ServiceError {
	if len(req.Items) == 0 {
		return newServiceError(http.StatusBadRequest, "Cart is empty")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return newServiceError(http.StatusBadRequest, "Item quantity must be at least 1")
		}
	}
	if !models.PaymentMethod(req.PaymentMethod).Valid() {
		return newServiceError(http.StatusBadRequest, "Invalid payment method")
	}
	sh := req.Shipping
	if sh.FirstName == "" || sh.Email == "" || sh.Address == "" || sh.City == "" || sh.State == "" || sh.ZipCode == "" {
		return newServiceError(http.StatusBadRequest, "Incomplete shipping details")
	}
	return nil
}

// parseProductIDs converts requested product IDs, reporting malformed IDs as
// missing (a non-hex ID cannot exist in the catalog).
func parseProductIDs(items []OrderItemRequest) ([]primitive.ObjectID, []string) {
	ids := make([]primitive.ObjectID, 0, len(items))
	var missing []string
	for _, item := range items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			missing = append(missing, item.ProductID)
			continue
		}
		ids = append(ids, oid)
	}
	return ids, missing
}

func paymentStatusFor(method models.PaymentMethod) models.PaymentStatus {
	if method == models.PaymentMethodCard {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPending
}

func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
