package store

import (
	"context"
	"errors"
	"time"

	"billbook/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	GetBrand(ctx context.Context, tenantID string, id string) (*domain.Brand, error)
	ListBrands(ctx context.Context, tenantID string) ([]domain.Brand, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error)

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, tenantID string, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, tenantID string, ids []string) (map[string]domain.Product, error)
	ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error)

	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, tenantID string, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, tenantID string) ([]domain.Customer, error)

	// NextBillSerial performs a single atomic conditional update of the
	// tenant's counter row: same year increments, a new year resets to 1.
	// Two concurrent callers must never observe the same serial.
	NextBillSerial(ctx context.Context, tenantID string, year int) (int, error)

	// CreateBill persists the bill with its line items and applies every
	// line item's stock decrement in the same atomic unit. It returns the
	// stock level of each affected product after its decrement landed.
	CreateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, []domain.StockLevel, error)
	GetBill(ctx context.Context, tenantID string, id string) (*domain.Bill, error)
	ListBillsPaginated(ctx context.Context, tenantID string, page int, limit int) ([]domain.Bill, int, error)
	ListBillsBetween(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.Bill, error)
	UpdateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error)
	// DeleteBillRestoringStock removes the bill and increments stock back by
	// each line item's quantity in the same atomic unit. The deleted bill is
	// returned for audit emission.
	DeleteBillRestoringStock(ctx context.Context, tenantID string, id string) (*domain.Bill, error)

	CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
	ListNotifications(ctx context.Context, tenantID string, page int, limit int) ([]domain.Notification, int, int, error)
	UnreadNotificationCount(ctx context.Context, tenantID string) (int, error)
	MarkNotificationRead(ctx context.Context, tenantID string, id string) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, tenantID string) error
	DeleteNotification(ctx context.Context, tenantID string, id string) error
	DeleteAllNotifications(ctx context.Context, tenantID string) error

	CreateTransaction(ctx context.Context, transaction domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, tenantID string) ([]domain.Transaction, error)
	ListTransactionsByBill(ctx context.Context, tenantID string, billID string) ([]domain.Transaction, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
