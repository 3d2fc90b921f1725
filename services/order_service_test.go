package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ravinder1302/ARS-Kart/models"
	"github.com/ravinder1302/ARS-Kart/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fastOrderConfig() services.OrderConfig {
	return services.OrderConfig{
		CommitTimeout:    time.Second,
		NotifyTimeout:    time.Second,
		CartClearRetries: 3,
		CartClearBackoff: time.Millisecond,
	}
}

func testProduct(name, price string) models.Product {
	return models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Brand:    "TestBrand",
		Category: "laptops",
		Price:    models.MustMoney(price),
	}
}

func validShipping() services.ShippingRequest {
	return services.ShippingRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   "12 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "E1 6AN",
	}
}

func TestPlaceOrderComputesAuthoritativeTotal(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	mouse := testProduct("Wireless Mouse", "2.51")

	productRepo := newMockProductRepo(laptop, mouse)
	orderRepo := newMockOrderRepo()
	cartRepo := newMockCartRepo()
	notif := &mockNotifier{}
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 2)
	cartRepo.put(userID, mouse.ID, 2)

	svc := services.NewOrderService(orderRepo, productRepo, cartRepo, notif, nil, fastOrderConfig())

	// Client-asserted prices are lies; the server must ignore them.
	tampered := models.MustMoney("0.01")
	result, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: laptop.ID.Hex(), Quantity: 2, Price: &tampered},
			{ProductID: mouse.ID.Hex(), Quantity: 2, Price: &tampered},
		},
		Shipping:      validShipping(),
		PaymentMethod: "card",
		Total:         &tampered,
	})
	require.Nil(t, svcErr)
	require.NotNil(t, result)
	svc.Drain()

	orderOID, err := primitive.ObjectIDFromHex(result.OrderID)
	require.NoError(t, err)

	order := orderRepo.orders[orderOID]
	assert.Equal(t, "45.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "Lovelace", order.Shipping.LastName)

	payment, ok := orderRepo.payment(orderOID)
	require.True(t, ok)
	assert.Equal(t, "45.00", payment.Amount.StringFixed(2))
	assert.Equal(t, models.PaymentMethodCard, payment.Method)
	assert.NotEmpty(t, payment.TransactionID)

	lines, err := orderRepo.FindLinesByOrderIDs(context.Background(), []primitive.ObjectID{orderOID})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		switch l.ProductID {
		case laptop.ID:
			assert.Equal(t, "19.99", l.Price.StringFixed(2))
		case mouse.ID:
			assert.Equal(t, "2.51", l.Price.StringFixed(2))
		default:
			t.Fatalf("unexpected product in order lines: %s", l.ProductID.Hex())
		}
		assert.Equal(t, 2, l.Quantity)
	}

	// The purchased lines are gone from the cart.
	assert.Equal(t, 0, cartRepo.size())

	// Confirmation email carried the authoritative total.
	require.Equal(t, 1, notif.confirmationCount())
	assert.Equal(t, "ada@example.com", notif.confirmations[0].Email)
	assert.Equal(t, "45.00", notif.confirmations[0].Total.StringFixed(2))
}

func TestPlaceOrderPayOnDeliveryLeavesPaymentPending(t *testing.T) {
	phone := testProduct("Phone X", "299.00")
	productRepo := newMockProductRepo(phone)
	orderRepo := newMockOrderRepo()
	userID := primitive.NewObjectID()

	svc := services.NewOrderService(orderRepo, productRepo, newMockCartRepo(), nil, nil, fastOrderConfig())

	shipping := validShipping()
	shipping.LastName = ""
	result, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: phone.ID.Hex(), Quantity: 1}},
		Shipping:      shipping,
		PaymentMethod: "pay_on_delivery",
	})
	require.Nil(t, svcErr)
	svc.Drain()

	orderOID, _ := primitive.ObjectIDFromHex(result.OrderID)
	payment, ok := orderRepo.payment(orderOID)
	require.True(t, ok)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Empty(t, payment.TransactionID)
	assert.Equal(t, "-", orderRepo.orders[orderOID].Shipping.LastName)
}

func TestPlaceOrderMissingProductsWritesNothing(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	productRepo := newMockProductRepo(laptop)
	orderRepo := newMockOrderRepo()
	cartRepo := newMockCartRepo()
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 1)

	svc := services.NewOrderService(orderRepo, productRepo, cartRepo, &mockNotifier{}, nil, fastOrderConfig())

	deleted := primitive.NewObjectID()
	_, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: laptop.ID.Hex(), Quantity: 1},
			{ProductID: deleted.Hex(), Quantity: 3},
		},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	require.NotNil(t, svcErr)
	svc.Drain()

	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.True(t, strings.Contains(svcErr.Message, "no longer exist"))
	assert.True(t, strings.Contains(svcErr.Message, deleted.Hex()))
	assert.False(t, strings.Contains(svcErr.Message, laptop.ID.Hex()))
	require.NotNil(t, svcErr.Details)
	assert.Equal(t, []string{deleted.Hex()}, svcErr.Details["missing_products"])

	orders, payments, lines := orderRepo.counts()
	assert.Zero(t, orders)
	assert.Zero(t, payments)
	assert.Zero(t, lines)
	assert.Equal(t, 1, cartRepo.size(), "cart must be untouched on rejection")
}

func TestPlaceOrderMalformedProductIDReportedAsMissing(t *testing.T) {
	svc := services.NewOrderService(newMockOrderRepo(), newMockProductRepo(), newMockCartRepo(), nil, nil, fastOrderConfig())

	_, svcErr := svc.PlaceOrder(context.Background(), primitive.NewObjectID().Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: "not-a-hex-id", Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, []string{"not-a-hex-id"}, svcErr.Details["missing_products"])
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := services.NewOrderService(newMockOrderRepo(), newMockProductRepo(), newMockCartRepo(), nil, nil, fastOrderConfig())
	userID := primitive.NewObjectID().Hex()
	pid := primitive.NewObjectID().Hex()

	cases := []struct {
		name string
		req  services.PlaceOrderRequest
	}{
		{"empty cart", services.PlaceOrderRequest{
			Shipping: validShipping(), PaymentMethod: "card",
		}},
		{"zero quantity", services.PlaceOrderRequest{
			Items:    []services.OrderItemRequest{{ProductID: pid, Quantity: 0}},
			Shipping: validShipping(), PaymentMethod: "card",
		}},
		{"unknown payment method", services.PlaceOrderRequest{
			Items:    []services.OrderItemRequest{{ProductID: pid, Quantity: 1}},
			Shipping: validShipping(), PaymentMethod: "bitcoin",
		}},
		{"missing shipping city", services.PlaceOrderRequest{
			Items: []services.OrderItemRequest{{ProductID: pid, Quantity: 1}},
			Shipping: services.ShippingRequest{
				FirstName: "Ada", Email: "ada@example.com",
				Address: "12 Analytical Way", State: "LDN", ZipCode: "E1 6AN",
			},
			PaymentMethod: "card",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, svcErr := svc.PlaceOrder(context.Background(), userID, &tc.req)
			require.NotNil(t, svcErr)
			assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
		})
	}
}

func TestPlaceOrderCommitFailureLeavesNoPartialState(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	productRepo := newMockProductRepo(laptop)
	orderRepo := newMockOrderRepo()
	orderRepo.failCommit = true
	cartRepo := newMockCartRepo()
	notif := &mockNotifier{}
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 1)

	svc := services.NewOrderService(orderRepo, productRepo, cartRepo, notif, nil, fastOrderConfig())

	result, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: laptop.ID.Hex(), Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	svc.Drain()

	assert.Nil(t, result)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Equal(t, "Failed to place order", svcErr.Message)

	orders, payments, lines := orderRepo.counts()
	assert.Zero(t, orders)
	assert.Zero(t, payments)
	assert.Zero(t, lines)
	assert.Equal(t, 1, cartRepo.size(), "cart must survive a failed commit")
	assert.Zero(t, notif.confirmationCount())
}

func TestPlaceOrderSucceedsWhenNotifierFails(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	orderRepo := newMockOrderRepo()
	notif := &mockNotifier{failConfirmation: true}
	userID := primitive.NewObjectID()

	svc := services.NewOrderService(orderRepo, newMockProductRepo(laptop), newMockCartRepo(), notif, nil, fastOrderConfig())

	result, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: laptop.ID.Hex(), Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	svc.Drain()

	require.Nil(t, svcErr)
	require.NotNil(t, result)
	orders, _, _ := orderRepo.counts()
	assert.Equal(t, 1, orders)
}

func TestPlaceOrderSucceedsWhenCartClearFails(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	orderRepo := newMockOrderRepo()
	cartRepo := newMockCartRepo()
	cartRepo.failDeletes = 2 // sync attempt and first retry fail
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 1)

	svc := services.NewOrderService(orderRepo, newMockProductRepo(laptop), cartRepo, nil, nil, fastOrderConfig())

	result, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: laptop.ID.Hex(), Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	require.Nil(t, svcErr)
	require.NotNil(t, result)

	svc.Drain()
	assert.Equal(t, 0, cartRepo.size(), "retry must eventually clear the cart")
	assert.Equal(t, 3, cartRepo.deleteCalls)
}

func TestCartClearIsIdempotent(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	keyboard := testProduct("Mechanical Keyboard", "59.00")
	cartRepo := newMockCartRepo()
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 2)
	cartRepo.put(userID, keyboard.ID, 1)

	ordered := []primitive.ObjectID{laptop.ID}

	require.NoError(t, cartRepo.DeleteByUserAndProducts(context.Background(), userID, ordered))
	afterFirst, err := cartRepo.FindByUser(context.Background(), userID)
	require.NoError(t, err)

	// A concurrent placement racing on the same lines clears again; the
	// second clear matches nothing, reports no error, and changes nothing.
	require.NoError(t, cartRepo.DeleteByUserAndProducts(context.Background(), userID, ordered))
	afterSecond, err := cartRepo.FindByUser(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, afterFirst, afterSecond)
	require.Len(t, afterSecond, 1)
	assert.Equal(t, keyboard.ID, afterSecond[0].ProductID)
}

func TestPlaceOrderCartClearIsScopedToOrderedProducts(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	keyboard := testProduct("Mechanical Keyboard", "59.00")
	cartRepo := newMockCartRepo()
	userID := primitive.NewObjectID()
	cartRepo.put(userID, laptop.ID, 1)
	cartRepo.put(userID, keyboard.ID, 1) // added after checkout began

	svc := services.NewOrderService(newMockOrderRepo(), newMockProductRepo(laptop, keyboard), cartRepo, nil, nil, fastOrderConfig())

	_, svcErr := svc.PlaceOrder(context.Background(), userID.Hex(), &services.PlaceOrderRequest{
		Items:         []services.OrderItemRequest{{ProductID: laptop.ID.Hex(), Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "card",
	})
	require.Nil(t, svcErr)
	svc.Drain()

	lines, err := cartRepo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, keyboard.ID, lines[0].ProductID)
}

func TestGetUserOrdersDecoratesLines(t *testing.T) {
	laptop := testProduct("Laptop Pro", "19.99")
	productRepo := newMockProductRepo(laptop)
	orderRepo := newMockOrderRepo()
	userID := primitive.NewObjectID()

	deletedProduct := primitive.NewObjectID()
	order := &models.Order{
		UserID:        userID,
		TotalAmount:   models.MustMoney("29.99"),
		PaymentMethod: models.PaymentMethodCard,
		PaymentStatus: models.PaymentStatusPaid,
		Status:        models.OrderStatusPending,
	}
	payment := &models.Payment{Amount: order.TotalAmount, Method: order.PaymentMethod, Status: order.PaymentStatus}
	require.NoError(t, orderRepo.CreateAggregate(context.Background(), order, payment, []models.OrderLine{
		{ProductID: laptop.ID, Quantity: 1, Price: models.MustMoney("19.99")},
		{ProductID: deletedProduct, Quantity: 1, Price: models.MustMoney("10.00")},
	}))

	svc := services.NewOrderService(orderRepo, productRepo, newMockCartRepo(), nil, nil, fastOrderConfig())

	details, svcErr := svc.GetUserOrders(context.Background(), userID.Hex())
	require.Nil(t, svcErr)
	require.Len(t, details, 1)
	require.Len(t, details[0].Items, 2)

	byID := make(map[string]services.OrderLineDetail)
	for _, item := range details[0].Items {
		byID[item.ProductID] = item
	}
	assert.Equal(t, "Laptop Pro", byID[laptop.ID.Hex()].Name)
	assert.Equal(t, "Unknown Product", byID[deletedProduct.Hex()].Name)
	assert.Equal(t, "10.00", byID[deletedProduct.Hex()].Price.StringFixed(2), "snapshot price survives product deletion")
}

func TestGetOrderByIDNotFound(t *testing.T) {
	svc := services.NewOrderService(newMockOrderRepo(), newMockProductRepo(), newMockCartRepo(), nil, nil, fastOrderConfig())

	_, svcErr := svc.GetOrderByID(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, "Order not found", svcErr.Message)
}

func TestGetOrderByIDOtherUsersOrderIsNotFound(t *testing.T) {
	orderRepo := newMockOrderRepo()
	owner := primitive.NewObjectID()
	order := &models.Order{UserID: owner, TotalAmount: models.MustMoney("5.00"), Status: models.OrderStatusPending}
	payment := &models.Payment{Amount: order.TotalAmount}
	require.NoError(t, orderRepo.CreateAggregate(context.Background(), order, payment, nil))

	svc := services.NewOrderService(orderRepo, newMockProductRepo(), newMockCartRepo(), nil, nil, fastOrderConfig())

	stranger := primitive.NewObjectID()
	_, svcErr := svc.GetOrderByID(context.Background(), stranger.Hex(), order.ID.Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestUpdateStatusTransitions(t *testing.T) {
	orderRepo := newMockOrderRepo()
	notif := &mockNotifier{}
	order := &models.Order{
		UserID:      primitive.NewObjectID(),
		TotalAmount: models.MustMoney("5.00"),
		Status:      models.OrderStatusPending,
		Shipping:    models.ShippingSnapshot{FirstName: "Ada", Email: "ada@example.com"},
	}
	require.NoError(t, orderRepo.CreateAggregate(context.Background(), order, &models.Payment{Amount: order.TotalAmount}, nil))

	svc := services.NewOrderService(orderRepo, newMockProductRepo(), newMockCartRepo(), notif, nil, fastOrderConfig())

	detail, svcErr := svc.UpdateStatus(context.Background(), order.ID.Hex(), "processing")
	require.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusProcessing, detail.Status)

	// Skipping straight to delivered is not a legal transition.
	_, svcErr = svc.UpdateStatus(context.Background(), order.ID.Hex(), "delivered")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	detail, svcErr = svc.UpdateStatus(context.Background(), order.ID.Hex(), "shipped")
	require.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusShipped, detail.Status)

	detail, svcErr = svc.UpdateStatus(context.Background(), order.ID.Hex(), "delivered")
	require.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusDelivered, detail.Status)

	// Delivered is terminal.
	_, svcErr = svc.UpdateStatus(context.Background(), order.ID.Hex(), "cancelled")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	svc.Drain()
	assert.Len(t, notif.statusUpdates, 3)
}

func TestUpdateStatusRejectsUnknownStatusAndMissingOrder(t *testing.T) {
	svc := services.NewOrderService(newMockOrderRepo(), newMockProductRepo(), newMockCartRepo(), nil, nil, fastOrderConfig())

	_, svcErr := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "teleported")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "processing")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
