package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/inbox"
	"github.com/vladislavdragonenkov/orders/internal/service/order"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	store.SeedVariant(domain.Variant{
		ID:          "v-tap",
		SKU:         "TAP-01",
		Name:        "Chrome Tap",
		ProductName: "Taps",
		UnitPrice:   decimal.RequireFromString("2.50"),
	})

	writer := order.NewWriter(store, nil, nil, nil)
	reader := order.NewReader(store)
	inboxHandler := inbox.NewHandler(store.Variants(), nil)

	router := gin.New()
	NewHandler(writer, reader, inboxHandler, nil).Register(router)
	return router, store
}

func createOrderBody() []byte {
	body, _ := json.Marshal(CreateOrderRequestDto{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		PhoneNumber: "01234 567890",
		Created:     time.Now().UTC(),
		BillingAddress: AddressDto{
			LineOne:  "10 Downing Street",
			PostCode: "SW1A 2AA",
		},
		ShippingAddress: AddressDto{
			LineOne:  "221B Baker Street",
			PostCode: "NW1 6XE",
		},
		OrderItems: []OrderItemDto{{SKU: "TAP-01", Quantity: 2}},
	})
	return body
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandler_CreateAndGetOrder(t *testing.T) {
	router, _ := newTestRouter(t)

	created := doRequest(router, http.MethodPost, "/orders", createOrderBody())
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body)
	}

	var result order.OrderResult
	if err := json.Unmarshal(created.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.OrderNumber == "" {
		t.Fatal("expected order number in response")
	}
	if !result.TotalCost.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected total 5.00, got %s", result.TotalCost)
	}

	fetched := doRequest(router, http.MethodGet, "/orders/"+result.OrderNumber, nil)
	if fetched.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", fetched.Code, fetched.Body)
	}
}

func TestHandler_CreateOrder_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(CreateOrderRequestDto{Email: "broken"})
	resp := doRequest(router, http.MethodPost, "/orders", body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body)
	}

	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(payload.Errors) == 0 {
		t.Fatal("expected field errors in response")
	}
	if _, ok := payload.Errors["name"]; !ok {
		t.Fatalf("expected name violation, got %v", payload.Errors)
	}
}

func TestHandler_CreateOrder_UnknownSKU(t *testing.T) {
	router, _ := newTestRouter(t)

	var dto CreateOrderRequestDto
	if err := json.Unmarshal(createOrderBody(), &dto); err != nil {
		t.Fatalf("unmarshal dto: %v", err)
	}
	dto.OrderItems = []OrderItemDto{{SKU: "GHOST-99", Quantity: 1}}
	body, _ := json.Marshal(dto)

	resp := doRequest(router, http.MethodPost, "/orders", body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body)
	}
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/orders/ORD-MISSING00000", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body)
	}
}

func TestHandler_UpdateOrder(t *testing.T) {
	router, _ := newTestRouter(t)

	created := doRequest(router, http.MethodPost, "/orders", createOrderBody())
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body)
	}
	var result order.OrderResult
	if err := json.Unmarshal(created.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	updateBody, _ := json.Marshal(UpdateOrderRequestDto{
		ShippingAddress: AddressDto{LineOne: "1 New Street", PostCode: "NW1 6XE"},
		OrderItems:      []OrderItemDto{{SKU: "TAP-01", Quantity: 4}},
	})
	resp := doRequest(router, http.MethodPut, "/orders/"+result.OrderNumber, updateBody)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var updated order.OrderResult
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !updated.TotalCost.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", updated.TotalCost)
	}
}

func TestHandler_InboundIntake(t *testing.T) {
	router, store := newTestRouter(t)

	body := []byte(`{"kind":"price.updated","payload":{"sku":"TAP-01","price":"9.99"}}`)
	resp := doRequest(router, http.MethodPost, "/inbox", body)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body)
	}

	found, err := store.Variants().FindBySKUs(context.Background(), []string{"TAP-01"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || !found[0].UnitPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("expected updated price, got %+v", found)
	}

	unknown := doRequest(router, http.MethodPost, "/inbox", []byte(`{"kind":"mystery","payload":{}}`))
	if unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d: %s", unknown.Code, unknown.Body)
	}
}
