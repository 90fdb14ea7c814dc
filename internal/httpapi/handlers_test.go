package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billbook/backend/internal/cache"
	"billbook/backend/internal/domain"
	"billbook/backend/internal/events"
	"billbook/backend/internal/service"
	"billbook/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	dispatcher := events.NewDispatcher(repo, events.Options{
		QueueSize:    64,
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
	})
	t.Cleanup(dispatcher.Close)

	svc := service.New(repo, dispatcher, cache.NoopReportCache{}, service.Options{})
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	return body.AccessToken
}

func doJSON(t *testing.T, handler http.Handler, token, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, "", http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	handler := newTestAPI(t).Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatalf("expected access_token in response")
	}
	if body.ShopName != "Acme Traders" {
		t.Fatalf("shop_name = %q, want Acme Traders", body.ShopName)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, "", http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	handler := newTestAPI(t).Handler()

	// The limiter allows 5 attempts per minute from one address; the 6th
	// must be rejected.
	var last int
	for i := 0; i < 6; i++ {
		rec := doJSON(t, handler, "", http.MethodPost, "/api/v1/auth/login", map[string]string{
			"username": "admin",
			"password": "badpass",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 6th attempt, got %d", last)
	}
}

func TestBillsRequireAuth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, "", http.MethodGet, "/api/v1/bills", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, handler, "not-a-token", http.MethodGet, "/api/v1/bills", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestBillLifecycleOverHTTP(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer:        &domain.CustomerCreateRequest{Name: "Ibu Ratna", Phone: "0812000111"},
		Items:           []domain.BillItemInput{{ProductID: "prod-rice-5kg", Quantity: 2}},
		DiscountCents:   1000_00,
		AmountPaidCents: 100_00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var bill domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if bill.SubtotalCents != 2*689_00 {
		t.Fatalf("subtotal = %d", bill.SubtotalCents)
	}
	if bill.Status != domain.BillStatusPending {
		t.Fatalf("status = %s, want Pending", bill.Status)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/bills/"+bill.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get bill: expected 200, got %d", rec.Code)
	}
	var fetched domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if fetched.BillNumber != bill.BillNumber {
		t.Fatalf("bill number mismatch: %s vs %s", fetched.BillNumber, bill.BillNumber)
	}
	if fetched.Customer == nil || fetched.Customer.Name != "Ibu Ratna" {
		t.Fatalf("customer not populated: %+v", fetched.Customer)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/bills?page=1&limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list bills: expected 200, got %d", rec.Code)
	}
	var page domain.BillPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.TotalPages != 1 {
		t.Fatalf("page totals = %d/%d, want 1/1", page.Total, page.TotalPages)
	}

	paid := bill.TotalCents
	rec = doJSON(t, handler, token, http.MethodPatch, "/api/v1/bills/"+bill.ID, domain.BillUpdateRequest{
		AmountPaidCents: &paid,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch bill: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var updated domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if updated.Status != domain.BillStatusPaid {
		t.Fatalf("status = %s, want Paid after full payment", updated.Status)
	}

	rec = doJSON(t, handler, token, http.MethodDelete, "/api/v1/bills/"+bill.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete bill: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/bills/"+bill.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted bill: expected 404, got %d", rec.Code)
	}
}

func TestCreateBillErrorMapping(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty items: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
		Items:    []domain.BillItemInput{{ProductID: "prod-missing", Quantity: 1}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
		Items:    []domain.BillItemInput{{ProductID: "prod-coffee-250g", Quantity: 500}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("insufficient stock: expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestSalesReportEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
		Items:    []domain.BillItemInput{{ProductID: "prod-tea-box", Quantity: 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/bills/reports?window=day", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var report domain.SalesReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalOrders != 1 || report.TotalSalesCents != 3*98_00 {
		t.Fatalf("report = %+v", report)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/bills/reports?window=fortnight", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad window: expected 400, got %d", rec.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/bills/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var totals domain.DashboardTotals
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.TotalBills != 0 {
		t.Fatalf("bills = %d, want 0 on fresh store", totals.TotalBills)
	}
}

// waitForNotifications polls until the notification count reaches want; the
// dispatcher delivers asynchronously.
func waitForNotifications(t *testing.T, handler http.Handler, token string, want int) domain.NotificationPage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/notifications?page=1&limit=50", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list notifications: got %d", rec.Code)
		}
		var page domain.NotificationPage
		if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
			t.Fatalf("decode notifications: %v", err)
		}
		if page.Total >= want {
			return page
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d notifications, have %d", want, page.Total)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	// Coffee drops from 7 to 4, so this produces a bill-created plus a
	// low-stock notification.
	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
		Items:    []domain.BillItemInput{{ProductID: "prod-coffee-250g", Quantity: 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: got %d", rec.Code)
	}

	page := waitForNotifications(t, handler, token, 2)
	if page.UnreadCount != 2 {
		t.Fatalf("unread = %d, want 2", page.UnreadCount)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unread-count: got %d", rec.Code)
	}

	first := page.Notifications[0]
	rec = doJSON(t, handler, token, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%s/read", first.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/notifications/read-all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read-all: got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodDelete, "/api/v1/notifications/"+first.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete one: got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodDelete, "/api/v1/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete all: got %d", rec.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/bills", domain.BillCreateRequest{
		Customer: &domain.CustomerCreateRequest{Name: "Walk-in"},
		Items:    []domain.BillItemInput{{ProductID: "prod-oil-1l", Quantity: 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: got %d", rec.Code)
	}
	var bill domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/transactions/bill/"+bill.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("transactions by bill: got %d", rec.Code)
		}
		var transactions []domain.Transaction
		if err := json.NewDecoder(rec.Body).Decode(&transactions); err != nil {
			t.Fatalf("decode transactions: %v", err)
		}
		if len(transactions) == 1 {
			if transactions[0].Type != domain.EventBillCreated {
				t.Fatalf("transaction type = %s", transactions[0].Type)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for audit transaction")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions: got %d", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/brands", map[string]string{"name": "Fresh Farm"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create brand: got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var brand domain.Brand
	if err := json.NewDecoder(rec.Body).Decode(&brand); err != nil {
		t.Fatalf("decode brand: %v", err)
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Dairy"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: got %d", rec.Code)
	}
	var category domain.Category
	if err := json.NewDecoder(rec.Body).Decode(&category); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{
		Name:       "Milk 1L",
		PriceCents: 120_00,
		Stock:      30,
		BrandID:    brand.ID,
		CategoryID: category.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: got %d", rec.Code)
	}
	var products []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	// 5 seeded plus the one just created.
	if len(products) != 6 {
		t.Fatalf("products = %d, want 6", len(products))
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/brands", map[string]string{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank brand name: expected 400, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodPut, "/api/v1/bills", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, "", http.MethodGet, "/healthz", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
