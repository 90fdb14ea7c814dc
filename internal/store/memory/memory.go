package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"billbook/backend/internal/domain"
	"billbook/backend/internal/store"
	"billbook/backend/internal/xid"
)

type Store struct {
	mu                sync.RWMutex
	brandsByID        map[string]domain.Brand
	categoriesByID    map[string]domain.Category
	productsByID      map[string]domain.Product
	customersByID     map[string]domain.Customer
	billsByID         map[string]domain.Bill
	counters          map[string]*domain.SequenceCounter
	notificationsByID map[string]domain.Notification
	transactionsByID  map[string]domain.Transaction
	usersByUsername   map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		brandsByID:        make(map[string]domain.Brand),
		categoriesByID:    make(map[string]domain.Category),
		productsByID:      make(map[string]domain.Product),
		customersByID:     make(map[string]domain.Customer),
		billsByID:         make(map[string]domain.Bill),
		counters:          make(map[string]*domain.SequenceCounter),
		notificationsByID: make(map[string]domain.Notification),
		transactionsByID:  make(map[string]domain.Transaction),
		usersByUsername:   make(map[string]domain.UserAccount),
	}
}

// SeedTenantID is the tenant created by NewSeeded for dev/demo mode.
const SeedTenantID = "tenant-acme"

// seedUser builds the initial dev account. The password comes from
// SEED_ADMIN_PASSWORD; a hardcoded default is used with a warning when unset.
// Production deployments use PostgreSQL and never hit this path.
func seedUser() domain.UserAccount {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD to override.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}
	return domain.UserAccount{
		Username:  "admin",
		Password:  string(hash),
		TenantID:  SeedTenantID,
		ShopName:  "Acme Traders",
		CreatedAt: time.Now().UTC(),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	brands := []domain.Brand{
		{ID: "brand-sari", TenantID: SeedTenantID, Name: "Sari Harum", CreatedAt: now},
		{ID: "brand-mega", TenantID: SeedTenantID, Name: "Mega Jaya", CreatedAt: now},
	}
	categories := []domain.Category{
		{ID: "cat-grocery", TenantID: SeedTenantID, Name: "Grocery", CreatedAt: now},
		{ID: "cat-beverage", TenantID: SeedTenantID, Name: "Beverage", CreatedAt: now},
	}
	products := []domain.Product{
		{ID: "prod-rice-5kg", TenantID: SeedTenantID, Name: "Rice 5kg", PriceCents: 689_00, Stock: 40, BrandID: "brand-sari", CategoryID: "cat-grocery"},
		{ID: "prod-oil-1l", TenantID: SeedTenantID, Name: "Cooking Oil 1L", PriceCents: 185_00, Stock: 60, BrandID: "brand-sari", CategoryID: "cat-grocery"},
		{ID: "prod-sugar-1kg", TenantID: SeedTenantID, Name: "Sugar 1kg", PriceCents: 174_00, Stock: 35, BrandID: "brand-mega", CategoryID: "cat-grocery"},
		{ID: "prod-tea-box", TenantID: SeedTenantID, Name: "Tea Box", PriceCents: 98_00, Stock: 25, BrandID: "brand-mega", CategoryID: "cat-beverage"},
		{ID: "prod-coffee-250g", TenantID: SeedTenantID, Name: "Coffee 250g", PriceCents: 260_00, Stock: 7, BrandID: "brand-mega", CategoryID: "cat-beverage"},
	}

	for _, b := range brands {
		s.brandsByID[b.ID] = b
	}
	for _, c := range categories {
		s.categoriesByID[c.ID] = c
	}
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		s.productsByID[p.ID] = p
	}
	user := seedUser()
	s.usersByUsername[user.Username] = user
	return s
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// newestFirst orders by created-at descending with the id as a stable
// tie-break for records created in the same instant.
func newestFirst(aAt, bAt time.Time, aID, bID string) int {
	if aAt.Equal(bAt) {
		return cmpString(bID, aID)
	}
	if aAt.After(bAt) {
		return -1
	}
	return 1
}

func (s *Store) CreateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if brand.TenantID == "" || brand.Name == "" {
		return nil, store.ErrValidation
	}
	if brand.ID == "" {
		brand.ID = xid.New("brand")
	}
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = time.Now().UTC()
	}
	s.brandsByID[brand.ID] = brand
	created := brand
	return &created, nil
}

func (s *Store) GetBrand(_ context.Context, tenantID string, id string) (*domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brand, exists := s.brandsByID[id]
	if !exists || brand.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	copyBrand := brand
	return &copyBrand, nil
}

func (s *Store) ListBrands(_ context.Context, tenantID string) ([]domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brands := make([]domain.Brand, 0, len(s.brandsByID))
	for _, b := range s.brandsByID {
		if b.TenantID == tenantID {
			brands = append(brands, b)
		}
	}
	slices.SortFunc(brands, func(a, b domain.Brand) int {
		return cmpString(a.Name, b.Name)
	})
	return brands, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.TenantID == "" || category.Name == "" {
		return nil, store.ErrValidation
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	s.categoriesByID[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) ListCategories(_ context.Context, tenantID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categoriesByID))
	for _, c := range s.categoriesByID {
		if c.TenantID == tenantID {
			categories = append(categories, c)
		}
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return cmpString(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.TenantID == "" || product.Name == "" || product.PriceCents < 0 || product.Stock < 0 {
		return nil, store.ErrValidation
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, tenantID string, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[id]
	if !exists || product.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, tenantID string, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		product, exists := s.productsByID[id]
		if !exists || product.TenantID != tenantID {
			continue
		}
		result[id] = product
	}
	return result, nil
}

func (s *Store) ListProducts(_ context.Context, tenantID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if p.TenantID == tenantID {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.TenantID == "" || strings.TrimSpace(customer.Name) == "" {
		return nil, store.ErrValidation
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	s.customersByID[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) GetCustomer(_ context.Context, tenantID string, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customersByID[id]
	if !exists || customer.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

func (s *Store) ListCustomers(_ context.Context, tenantID string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customersByID))
	for _, c := range s.customersByID {
		if c.TenantID == tenantID {
			customers = append(customers, c)
		}
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return customers, nil
}

func (s *Store) NextBillSerial(_ context.Context, tenantID string, year int) (int, error) {
	if tenantID == "" {
		return 0, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, exists := s.counters[tenantID]
	if !exists {
		counter = &domain.SequenceCounter{TenantID: tenantID}
		s.counters[tenantID] = counter
	}
	if counter.Year != year {
		counter.Year = year
		counter.Count = 1
	} else {
		counter.Count++
	}
	return counter.Count, nil
}

func (s *Store) CreateBill(_ context.Context, bill domain.Bill) (*domain.Bill, []domain.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.TenantID == "" || bill.BillNumber == "" || len(bill.Items) == 0 {
		return nil, nil, store.ErrValidation
	}
	for _, existing := range s.billsByID {
		if existing.TenantID == bill.TenantID && existing.BillNumber == bill.BillNumber {
			return nil, nil, store.ErrConflict
		}
	}

	// Validate every decrement before applying any, so a mid-batch failure
	// cannot leave stock partially adjusted.
	for _, item := range bill.Items {
		product, exists := s.productsByID[item.ProductID]
		if !exists || product.TenantID != bill.TenantID {
			return nil, nil, store.ErrNotFound
		}
		if product.Stock < item.Quantity {
			return nil, nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	levels := make([]domain.StockLevel, 0, len(bill.Items))
	for _, item := range bill.Items {
		product := s.productsByID[item.ProductID]
		product.Stock -= item.Quantity
		product.UpdatedAt = now
		s.productsByID[item.ProductID] = product
		levels = append(levels, domain.StockLevel{ProductID: product.ID, Stock: product.Stock})
	}

	if bill.ID == "" {
		bill.ID = xid.New("bill")
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now
	bill.Items = slices.Clone(bill.Items)
	s.billsByID[bill.ID] = bill

	created := bill
	created.Items = slices.Clone(bill.Items)
	return &created, levels, nil
}

func (s *Store) GetBill(_ context.Context, tenantID string, id string) (*domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, exists := s.billsByID[id]
	if !exists || bill.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	copyBill := bill
	copyBill.Items = slices.Clone(bill.Items)
	return &copyBill, nil
}

func (s *Store) tenantBillsLocked(tenantID string) []domain.Bill {
	bills := make([]domain.Bill, 0, len(s.billsByID))
	for _, b := range s.billsByID {
		if b.TenantID != tenantID {
			continue
		}
		copyBill := b
		copyBill.Items = slices.Clone(b.Items)
		bills = append(bills, copyBill)
	}
	slices.SortFunc(bills, func(a, b domain.Bill) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return bills
}

func (s *Store) ListBillsPaginated(_ context.Context, tenantID string, page int, limit int) ([]domain.Bill, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := s.tenantBillsLocked(tenantID)
	total := len(bills)

	start := (page - 1) * limit
	if start >= total {
		return []domain.Bill{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return bills[start:end], total, nil
}

func (s *Store) ListBillsBetween(_ context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := make([]domain.Bill, 0, len(s.billsByID))
	for _, b := range s.billsByID {
		if b.TenantID != tenantID {
			continue
		}
		if from != nil && b.CreatedAt.Before(*from) {
			continue
		}
		if b.CreatedAt.After(to) {
			continue
		}
		copyBill := b
		copyBill.Items = slices.Clone(b.Items)
		bills = append(bills, copyBill)
	}
	slices.SortFunc(bills, func(a, b domain.Bill) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return bills, nil
}

// UpdateBill persists the amendable fields only. Line items, totals and the
// bill number are immutable once created.
func (s *Store) UpdateBill(_ context.Context, bill domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.billsByID[bill.ID]
	if !exists || existing.TenantID != bill.TenantID {
		return nil, store.ErrNotFound
	}

	existing.AmountPaidCents = bill.AmountPaidCents
	existing.PaymentMethod = bill.PaymentMethod
	existing.Status = bill.Status
	existing.UpdatedAt = time.Now().UTC()
	s.billsByID[bill.ID] = existing

	updated := existing
	updated.Items = slices.Clone(existing.Items)
	return &updated, nil
}

func (s *Store) DeleteBillRestoringStock(_ context.Context, tenantID string, id string) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, exists := s.billsByID[id]
	if !exists || bill.TenantID != tenantID {
		return nil, store.ErrNotFound
	}

	now := time.Now().UTC()
	for _, item := range bill.Items {
		product, exists := s.productsByID[item.ProductID]
		if !exists {
			continue
		}
		product.Stock += item.Quantity
		product.UpdatedAt = now
		s.productsByID[item.ProductID] = product
	}
	delete(s.billsByID, id)

	deleted := bill
	deleted.Items = slices.Clone(bill.Items)
	return &deleted, nil
}

func (s *Store) CreateNotification(_ context.Context, notification domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.TenantID == "" || notification.Type == "" {
		return nil, store.ErrValidation
	}
	if notification.ID == "" {
		notification.ID = xid.New("notif")
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	s.notificationsByID[notification.ID] = notification
	created := notification
	return &created, nil
}

func (s *Store) ListNotifications(_ context.Context, tenantID string, page int, limit int) ([]domain.Notification, int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]domain.Notification, 0, len(s.notificationsByID))
	unread := 0
	for _, n := range s.notificationsByID {
		if n.TenantID != tenantID {
			continue
		}
		if !n.Read {
			unread++
		}
		notifications = append(notifications, n)
	}
	slices.SortFunc(notifications, func(a, b domain.Notification) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	total := len(notifications)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Notification{}, total, unread, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return notifications[start:end], total, unread, nil
}

func (s *Store) UnreadNotificationCount(_ context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notificationsByID {
		if n.TenantID == tenantID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, tenantID string, id string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, exists := s.notificationsByID[id]
	if !exists || notification.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	notification.Read = true
	s.notificationsByID[id] = notification
	updated := notification
	return &updated, nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notificationsByID {
		if n.TenantID == tenantID && !n.Read {
			n.Read = true
			s.notificationsByID[id] = n
		}
	}
	return nil
}

func (s *Store) DeleteNotification(_ context.Context, tenantID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, exists := s.notificationsByID[id]
	if !exists || notification.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(s.notificationsByID, id)
	return nil
}

func (s *Store) DeleteAllNotifications(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notificationsByID {
		if n.TenantID == tenantID {
			delete(s.notificationsByID, id)
		}
	}
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, transaction domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if transaction.TenantID == "" || transaction.BillID == "" || transaction.Type == "" {
		return nil, store.ErrValidation
	}
	if transaction.ID == "" {
		transaction.ID = xid.New("txn")
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	s.transactionsByID[transaction.ID] = transaction
	created := transaction
	return &created, nil
}

func (s *Store) ListTransactions(_ context.Context, tenantID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]domain.Transaction, 0, len(s.transactionsByID))
	for _, t := range s.transactionsByID {
		if t.TenantID == tenantID {
			transactions = append(transactions, t)
		}
	}
	slices.SortFunc(transactions, func(a, b domain.Transaction) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return transactions, nil
}

func (s *Store) ListTransactionsByBill(_ context.Context, tenantID string, billID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]domain.Transaction, 0, 4)
	for _, t := range s.transactionsByID {
		if t.TenantID == tenantID && t.BillID == billID {
			transactions = append(transactions, t)
		}
	}
	slices.SortFunc(transactions, func(a, b domain.Transaction) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return transactions, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" || user.TenantID == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrConflict
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
