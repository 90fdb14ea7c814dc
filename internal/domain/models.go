package domain

import "time"

// All monetary values are integer cents to avoid floating point drift in
// ledger math.

type Brand struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	BrandID     string    `json:"brand_id,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	BrandID     string `json:"brand_id,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// LineItem is owned exclusively by its bill. PriceCents is the product price
// snapshotted at creation time and is never re-read afterwards.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type Bill struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	BillNumber      string     `json:"bill_number"`
	CustomerID      string     `json:"customer_id"`
	Customer        *Customer  `json:"customer,omitempty"`
	Items           []LineItem `json:"items"`
	SubtotalCents   int64      `json:"subtotal_cents"`
	DiscountCents   int64      `json:"discount_cents"`
	TotalCents      int64      `json:"total_cents"`
	PaymentMethod   string     `json:"payment_method"`
	AmountPaidCents int64      `json:"amount_paid_cents"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type BillItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type BillCreateRequest struct {
	CustomerID      string                 `json:"customer_id,omitempty"`
	Customer        *CustomerCreateRequest `json:"customer,omitempty"`
	Items           []BillItemInput        `json:"items"`
	DiscountCents   int64                  `json:"discount_cents"`
	PaymentMethod   string                 `json:"payment_method"`
	AmountPaidCents int64                  `json:"amount_paid_cents"`
}

// BillUpdateRequest is a partial update. Status is only a recompute trigger:
// the stored status is always derived from amount paid vs total, never taken
// verbatim from the caller.
type BillUpdateRequest struct {
	AmountPaidCents *int64  `json:"amount_paid_cents,omitempty"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
	Status          *string `json:"status,omitempty"`
}

type BillPage struct {
	Bills      []Bill `json:"bills"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// StockDelta is one signed stock adjustment for a product.
type StockDelta struct {
	ProductID string
	Delta     int
}

// StockLevel reports the stock remaining after an adjustment landed.
type StockLevel struct {
	ProductID string
	Stock     int
}

// SequenceCounter is the per-tenant bill serial state. One row per tenant;
// the count resets to 1 whenever the observed year changes.
type SequenceCounter struct {
	TenantID string
	Year     int
	Count    int
}

type BillEventItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

// BillEventData is the typed snapshot attached to bill lifecycle
// notifications and audit transactions.
type BillEventData struct {
	BillID          string          `json:"bill_id"`
	BillNumber      string          `json:"bill_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	SubtotalCents   int64           `json:"subtotal_cents"`
	DiscountCents   int64           `json:"discount_cents"`
	TotalCents      int64           `json:"total_cents"`
	AmountPaidCents int64           `json:"amount_paid_cents"`
	RemainingCents  int64           `json:"remaining_cents"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	ItemCount       int             `json:"item_count"`
	Items           []BillEventItem `json:"items,omitempty"`
}

// LowStockData is the typed payload of a LOW_STOCK notification.
type LowStockData struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	BrandID     string `json:"brand_id,omitempty"`
	BrandName   string `json:"brand_name,omitempty"`
}

type Notification struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Bill      *BillEventData `json:"bill,omitempty"`
	LowStock  *LowStockData  `json:"low_stock,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	UnreadCount   int            `json:"unread_count"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	TotalPages    int            `json:"total_pages"`
}

// Transaction is an immutable audit record of a bill lifecycle event.
type Transaction struct {
	ID        string        `json:"id"`
	TenantID  string        `json:"tenant_id"`
	BillID    string        `json:"bill_id"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Data      BillEventData `json:"data"`
	CreatedAt time.Time     `json:"created_at"`
}

type DailyStat struct {
	Date   string `json:"date"`
	Sales  int64  `json:"sales_cents"`
	Orders int    `json:"orders"`
}

type TopProduct struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

type SalesReport struct {
	TotalSalesCents        int64        `json:"total_sales_cents"`
	TotalOrders            int          `json:"total_orders"`
	AverageOrderValueCents int64        `json:"average_order_value_cents"`
	TotalCustomers         int          `json:"total_customers"`
	TotalProductsSold      int          `json:"total_products_sold"`
	DailyStats             []DailyStat  `json:"daily_stats"`
	TopProducts            []TopProduct `json:"top_products"`
	Window                 string       `json:"window"`
}

type DashboardTotals struct {
	TotalSalesCents   int64 `json:"total_sales_cents"`
	TotalPendingCents int64 `json:"total_pending_cents"`
	TotalBills        int   `json:"total_bills"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ShopName    string `json:"shop_name"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor is the authenticated tenant principal resolved from a bearer token.
type Actor struct {
	Username string
	TenantID string
	ShopName string
}

// UserAccount is an internal persistence model for auth credentials. Each
// account owns one tenant; ShopName feeds the invoice number slug.
type UserAccount struct {
	Username  string
	Password  string
	TenantID  string
	ShopName  string
	CreatedAt time.Time
}

const (
	PaymentMethodCash   = "Cash"
	PaymentMethodOnline = "Online"
)

const (
	BillStatusPaid    = "Paid"
	BillStatusPending = "Pending"
)

const (
	EventBillCreated    = "BILL_CREATED"
	EventBillUpdated    = "BILL_UPDATED"
	EventBillDeleted    = "BILL_DELETED"
	EventLowStock       = "LOW_STOCK"
	EventProductCreated = "PRODUCT_CREATED"
)

const (
	ReportWindowDay   = "day"
	ReportWindowWeek  = "week"
	ReportWindowMonth = "month"
	ReportWindowAll   = "all"
)
