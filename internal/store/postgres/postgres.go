package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"billbook/backend/internal/domain"
	"billbook/backend/internal/store"
	"billbook/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (s *Store) CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	if brand.TenantID == "" || brand.Name == "" {
		return nil, store.ErrValidation
	}
	if brand.ID == "" {
		brand.ID = xid.New("brand")
	}
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brands (id, tenant_id, name, created_at)
		VALUES ($1,$2,$3,$4)
	`, brand.ID, brand.TenantID, brand.Name, brand.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := brand
	return &created, nil
}

func (s *Store) GetBrand(ctx context.Context, tenantID string, id string) (*domain.Brand, error) {
	var brand domain.Brand
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, created_at
		FROM brands
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&brand.ID, &brand.TenantID, &brand.Name, &brand.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &brand, nil
}

func (s *Store) ListBrands(ctx context.Context, tenantID string) ([]domain.Brand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, created_at
		FROM brands
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := make([]domain.Brand, 0, 32)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.TenantID == "" || category.Name == "" {
		return nil, store.ErrValidation
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, tenant_id, name, created_at)
		VALUES ($1,$2,$3,$4)
	`, category.ID, category.TenantID, category.Name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := category
	return &created, nil
}

func (s *Store) ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, created_at
		FROM categories
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 32)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, tenant_id, name, description, price_cents, stock, brand_id, category_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, product.ID, product.TenantID, product.Name, product.Description, product.PriceCents,
		product.Stock, nullString(product.BrandID), nullString(product.CategoryID), product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := product
	return &created, nil
}

const productColumns = `id, tenant_id, name, description, price_cents, stock, brand_id, category_id, created_at, updated_at`

type rowScanner interface{ Scan(...any) error }

func scanProduct(scanner rowScanner) (domain.Product, error) {
	var p domain.Product
	var brandID, categoryID sql.NullString
	err := scanner.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.PriceCents,
		&p.Stock, &brandID, &categoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.BrandID = brandID.String
	p.CategoryID = categoryID.String
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, tenantID string, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, tenantID string, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE tenant_id = $1 AND id = ANY($2)
	`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[product.ID] = product
	}
	return result, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.TenantID == "" || customer.Name == "" {
		return nil, store.ErrValidation
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, tenant_id, name, phone, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, customer.ID, customer.TenantID, customer.Name, customer.Phone, customer.Address, customer.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := customer
	return &created, nil
}

func (s *Store) GetCustomer(ctx context.Context, tenantID string, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, phone, address, created_at
		FROM customers
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, phone, address, created_at
		FROM customers
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// NextBillSerial is a single conditional upsert so two concurrent callers can
// never read the same stale count. A year rollover resets the count to 1.
func (s *Store) NextBillSerial(ctx context.Context, tenantID string, year int) (int, error) {
	if tenantID == "" {
		return 0, store.ErrValidation
	}
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bill_counters (tenant_id, year, count, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (tenant_id) DO UPDATE
		SET count = CASE WHEN bill_counters.year = EXCLUDED.year THEN bill_counters.count + 1 ELSE 1 END,
		    year = EXCLUDED.year,
		    updated_at = now()
		RETURNING count
	`, tenantID, year).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBill writes the bill, its line items and every stock decrement in one
// serializable transaction: a failure on any line item rolls back the lot.
func (s *Store) CreateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, []domain.StockLevel, error) {
	if bill.TenantID == "" || bill.BillNumber == "" || len(bill.Items) == 0 {
		return nil, nil, store.ErrValidation
	}
	if bill.ID == "" {
		bill.ID = xid.New("bill")
	}
	now := time.Now().UTC()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	productIDs := make([]string, 0, len(bill.Items))
	for _, item := range bill.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	stockRows, err := tx.QueryContext(ctx, `
		SELECT id, stock
		FROM products
		WHERE tenant_id = $1 AND id = ANY($2)
		FOR UPDATE
	`, bill.TenantID, productIDs)
	if err != nil {
		return nil, nil, err
	}
	stockMap := make(map[string]int, len(productIDs))
	for stockRows.Next() {
		var id string
		var stock int
		if err := stockRows.Scan(&id, &stock); err != nil {
			_ = stockRows.Close()
			return nil, nil, err
		}
		stockMap[id] = stock
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, nil, err
	}
	_ = stockRows.Close()

	for _, item := range bill.Items {
		if item.Quantity < 1 {
			return nil, nil, store.ErrValidation
		}
		stock, exists := stockMap[item.ProductID]
		if !exists {
			return nil, nil, store.ErrNotFound
		}
		if stock < item.Quantity {
			return nil, nil, store.ErrInsufficientStock
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bills (id, tenant_id, bill_number, customer_id, subtotal_cents, discount_cents,
		                   total_cents, payment_method, amount_paid_cents, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, bill.ID, bill.TenantID, bill.BillNumber, bill.CustomerID, bill.SubtotalCents, bill.DiscountCents,
		bill.TotalCents, bill.PaymentMethod, bill.AmountPaidCents, bill.Status, bill.CreatedAt, bill.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, store.ErrConflict
		}
		return nil, nil, err
	}

	levels := make([]domain.StockLevel, 0, len(bill.Items))
	for position, item := range bill.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bill_items (bill_id, position, product_id, quantity, price_cents)
			VALUES ($1,$2,$3,$4,$5)
		`, bill.ID, position, item.ProductID, item.Quantity, item.PriceCents)
		if err != nil {
			return nil, nil, err
		}

		var remaining int
		err = tx.QueryRowContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE tenant_id = $2 AND id = $3
			RETURNING stock
		`, item.Quantity, bill.TenantID, item.ProductID).Scan(&remaining)
		if err != nil {
			return nil, nil, err
		}
		levels = append(levels, domain.StockLevel{ProductID: item.ProductID, Stock: remaining})
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	created := bill
	return &created, levels, nil
}

const billColumns = `id, tenant_id, bill_number, customer_id, subtotal_cents, discount_cents,
	total_cents, payment_method, amount_paid_cents, status, created_at, updated_at`

func scanBill(scanner rowScanner) (domain.Bill, error) {
	var b domain.Bill
	err := scanner.Scan(&b.ID, &b.TenantID, &b.BillNumber, &b.CustomerID, &b.SubtotalCents, &b.DiscountCents,
		&b.TotalCents, &b.PaymentMethod, &b.AmountPaidCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (s *Store) loadBillItems(ctx context.Context, billIDs []string) (map[string][]domain.LineItem, error) {
	if len(billIDs) == 0 {
		return map[string][]domain.LineItem{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, product_id, quantity, price_cents
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY bill_id, position
	`, billIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.LineItem, len(billIDs))
	for rows.Next() {
		var billID string
		var item domain.LineItem
		if err := rows.Scan(&billID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, err
		}
		items[billID] = append(items[billID], item)
	}
	return items, rows.Err()
}

func (s *Store) GetBill(ctx context.Context, tenantID string, id string) (*domain.Bill, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	items, err := s.loadBillItems(ctx, []string{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.Items = items[bill.ID]
	return &bill, nil
}

func (s *Store) ListBillsPaginated(ctx context.Context, tenantID string, page int, limit int) ([]domain.Bill, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM bills WHERE tenant_id = $1
	`, tenantID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bills := make([]domain.Bill, 0, limit)
	billIDs := make([]string, 0, limit)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		bills = append(bills, bill)
		billIDs = append(billIDs, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := s.loadBillItems(ctx, billIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range bills {
		bills[i].Items = items[bills[i].ID]
	}
	return bills, total, nil
}

func (s *Store) ListBillsBetween(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE tenant_id = $1 AND created_at <= $2
		ORDER BY created_at DESC, id DESC
	`
	args := []any{tenantID, to}
	if from != nil {
		query = `
			SELECT ` + billColumns + `
			FROM bills
			WHERE tenant_id = $1 AND created_at <= $2 AND created_at >= $3
			ORDER BY created_at DESC, id DESC
		`
		args = append(args, *from)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]domain.Bill, 0, 256)
	billIDs := make([]string, 0, 256)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
		billIDs = append(billIDs, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.loadBillItems(ctx, billIDs)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items = items[bills[i].ID]
	}
	return bills, nil
}

// UpdateBill persists the amendable fields only; line items and totals stay
// as written at creation.
func (s *Store) UpdateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bills
		SET amount_paid_cents = $3, payment_method = $4, status = $5, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`, bill.TenantID, bill.ID, bill.AmountPaidCents, bill.PaymentMethod, bill.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetBill(ctx, bill.TenantID, bill.ID)
}

// DeleteBillRestoringStock restores each line item's quantity and removes the
// bill in one transaction. Notifications and audit transactions referencing
// the bill are left in place as historical record.
func (s *Store) DeleteBillRestoringStock(ctx context.Context, tenantID string, id string) (*domain.Bill, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`, tenantID, id)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	itemRows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity, price_cents
		FROM bill_items
		WHERE bill_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, 8)
	for itemRows.Next() {
		var item domain.LineItem
		if err := itemRows.Scan(&item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			_ = itemRows.Close()
			return nil, err
		}
		items = append(items, item)
	}
	if err := itemRows.Err(); err != nil {
		_ = itemRows.Close()
		return nil, err
	}
	_ = itemRows.Close()
	bill.Items = items

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1, updated_at = now()
			WHERE tenant_id = $2 AND id = $3
		`, item.Quantity, tenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bills WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Store) CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	if notification.TenantID == "" || notification.Type == "" {
		return nil, store.ErrValidation
	}
	if notification.ID == "" {
		notification.ID = xid.New("notif")
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	billData, err := marshalNullable(notification.Bill)
	if err != nil {
		return nil, err
	}
	lowStockData, err := marshalNullable(notification.LowStock)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, tenant_id, type, title, message, bill_data, low_stock_data, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, notification.ID, notification.TenantID, notification.Type, notification.Title, notification.Message,
		billData, lowStockData, notification.Read, notification.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := notification
	return &created, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch payload := v.(type) {
	case *domain.BillEventData:
		if payload == nil {
			return nil, nil
		}
	case *domain.LowStockData:
		if payload == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func scanNotification(scanner rowScanner) (domain.Notification, error) {
	var n domain.Notification
	var billData, lowStockData []byte
	err := scanner.Scan(&n.ID, &n.TenantID, &n.Type, &n.Title, &n.Message, &billData, &lowStockData, &n.Read, &n.CreatedAt)
	if err != nil {
		return domain.Notification{}, err
	}
	if len(billData) > 0 {
		n.Bill = &domain.BillEventData{}
		if err := json.Unmarshal(billData, n.Bill); err != nil {
			return domain.Notification{}, err
		}
	}
	if len(lowStockData) > 0 {
		n.LowStock = &domain.LowStockData{}
		if err := json.Unmarshal(lowStockData, n.LowStock); err != nil {
			return domain.Notification{}, err
		}
	}
	return n, nil
}

const notificationColumns = `id, tenant_id, type, title, message, bill_data, low_stock_data, read, created_at`

func (s *Store) ListNotifications(ctx context.Context, tenantID string, page int, limit int) ([]domain.Notification, int, int, error) {
	var total, unread int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE NOT read)
		FROM notifications
		WHERE tenant_id = $1
	`, tenantID).Scan(&total, &unread)
	if err != nil {
		return nil, 0, 0, err
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, unread, rows.Err()
}

func (s *Store) UnreadNotificationCount(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM notifications WHERE tenant_id = $1 AND NOT read
	`, tenantID).Scan(&count)
	return count, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, tenantID string, id string) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE notifications
		SET read = true
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+notificationColumns+`
	`, tenantID, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, tenantID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE tenant_id = $1 AND NOT read
	`, tenantID)
	return err
}

func (s *Store) DeleteNotification(ctx context.Context, tenantID string, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAllNotifications(ctx context.Context, tenantID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE tenant_id = $1
	`, tenantID)
	return err
}

func (s *Store) CreateTransaction(ctx context.Context, transaction domain.Transaction) (*domain.Transaction, error) {
	if transaction.TenantID == "" || transaction.BillID == "" || transaction.Type == "" {
		return nil, store.ErrValidation
	}
	if transaction.ID == "" {
		transaction.ID = xid.New("txn")
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(transaction.Data)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, tenant_id, bill_id, type, title, message, data, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, transaction.ID, transaction.TenantID, transaction.BillID, transaction.Type,
		transaction.Title, transaction.Message, data, transaction.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := transaction
	return &created, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		var t domain.Transaction
		var data []byte
		if err := rows.Scan(&t.ID, &t.TenantID, &t.BillID, &t.Type, &t.Title, &t.Message, &data, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &t.Data); err != nil {
				return nil, err
			}
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *Store) ListTransactions(ctx context.Context, tenantID string) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, tenant_id, bill_id, type, title, message, data, created_at
		FROM transactions
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
	`, tenantID)
}

func (s *Store) ListTransactionsByBill(ctx context.Context, tenantID string, billID string) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, tenant_id, bill_id, type, title, message, data, created_at
		FROM transactions
		WHERE tenant_id = $1 AND bill_id = $2
		ORDER BY created_at DESC, id DESC
	`, tenantID, billID)
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" || user.TenantID == "" {
		return store.ErrValidation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, tenant_id, shop_name, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.TenantID, user.ShopName, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, tenant_id, shop_name, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.TenantID, &u.ShopName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
