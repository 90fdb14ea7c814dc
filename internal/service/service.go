package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"billbook/backend/internal/cache"
	"billbook/backend/internal/domain"
	"billbook/backend/internal/events"
	"billbook/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	ReportTTL         time.Duration
	LowStockThreshold int
}

func (o Options) withDefaults() Options {
	if o.ReportTTL <= 0 {
		o.ReportTTL = 5 * time.Minute
	}
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = 5
	}
	return o
}

type Service struct {
	repo       store.Repository
	dispatcher *events.Dispatcher
	reports    cache.ReportCache
	opts       Options
}

func New(repo store.Repository, dispatcher *events.Dispatcher, reports cache.ReportCache, opts Options) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		reports:    reports,
		opts:       opts.withDefaults(),
	}
}

func requireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.TenantID == "" {
		return domain.Actor{}, fmt.Errorf("authenticated actor required")
	}
	return actor, nil
}

func (s *Service) CreateBrand(ctx context.Context, name string) (domain.Brand, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Brand{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Brand{}, store.ErrValidation
	}
	created, err := s.repo.CreateBrand(ctx, domain.Brand{TenantID: actor.TenantID, Name: name})
	if err != nil {
		return domain.Brand{}, err
	}
	return *created, nil
}

func (s *Service) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBrands(ctx, actor.TenantID)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, store.ErrValidation
	}
	created, err := s.repo.CreateCategory(ctx, domain.Category{TenantID: actor.TenantID, Name: name})
	if err != nil {
		return domain.Category{}, err
	}
	return *created, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, actor.TenantID)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents < 0 || req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		TenantID:    actor.TenantID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.dispatcher.Emit(events.Event{
		Type:     domain.EventProductCreated,
		TenantID: actor.TenantID,
		Title:    "New Product Added",
		Message:  fmt.Sprintf("%s added with %d units in stock", created.Name, created.Stock),
	})
	return *created, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := s.repo.GetProduct(ctx, actor.TenantID, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, actor.TenantID)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Customer{}, store.ErrValidation
	}
	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		TenantID: actor.TenantID,
		Name:     req.Name,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx, actor.TenantID)
}

// slugify lowercases the shop name, collapses whitespace runs to single
// hyphens and strips everything outside [a-z0-9-].
func slugify(shopName string) string {
	slug := strings.ToLower(strings.TrimSpace(shopName))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "shop"
	}
	return b.String()
}

func deriveStatus(totalCents, amountPaidCents int64) string {
	if amountPaidCents >= totalCents {
		return domain.BillStatusPaid
	}
	return domain.BillStatusPending
}

func validPaymentMethod(method string) bool {
	return method == domain.PaymentMethodCash || method == domain.PaymentMethodOnline
}

func (s *Service) CreateBill(ctx context.Context, req domain.BillCreateRequest) (domain.Bill, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Bill{}, err
	}

	if len(req.Items) == 0 {
		return domain.Bill{}, fmt.Errorf("at least one line item required: %w", store.ErrValidation)
	}
	if req.DiscountCents < 0 || req.AmountPaidCents < 0 {
		return domain.Bill{}, store.ErrValidation
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentMethodCash
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.Bill{}, fmt.Errorf("unknown payment method %q: %w", req.PaymentMethod, store.ErrValidation)
	}

	var customer *domain.Customer
	switch {
	case req.CustomerID != "":
		customer, err = s.repo.GetCustomer(ctx, actor.TenantID, req.CustomerID)
		if err != nil {
			return domain.Bill{}, err
		}
	case req.Customer != nil && strings.TrimSpace(req.Customer.Name) != "":
		created, err := s.CreateCustomer(ctx, *req.Customer)
		if err != nil {
			return domain.Bill{}, err
		}
		customer = &created
	default:
		return domain.Bill{}, fmt.Errorf("customer id or customer details required: %w", store.ErrValidation)
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return domain.Bill{}, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.repo.GetProductsByIDs(ctx, actor.TenantID, productIDs)
	if err != nil {
		return domain.Bill{}, err
	}

	var subtotal int64
	lineItems := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, exists := products[item.ProductID]
		if !exists {
			return domain.Bill{}, fmt.Errorf("product %s: %w", item.ProductID, store.ErrNotFound)
		}
		lineItems = append(lineItems, domain.LineItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
		subtotal += product.PriceCents * int64(item.Quantity)
	}

	total := subtotal - req.DiscountCents
	if total < 0 {
		total = 0
	}

	year := time.Now().Year()
	serial, err := s.repo.NextBillSerial(ctx, actor.TenantID, year)
	if err != nil {
		return domain.Bill{}, err
	}
	billNumber := fmt.Sprintf("%s-%d-%04d", slugify(actor.ShopName), year, serial)

	bill := domain.Bill{
		TenantID:        actor.TenantID,
		BillNumber:      billNumber,
		CustomerID:      customer.ID,
		Items:           lineItems,
		SubtotalCents:   subtotal,
		DiscountCents:   req.DiscountCents,
		TotalCents:      total,
		PaymentMethod:   req.PaymentMethod,
		AmountPaidCents: req.AmountPaidCents,
		Status:          deriveStatus(total, req.AmountPaidCents),
	}

	created, levels, err := s.repo.CreateBill(ctx, bill)
	if err != nil {
		return domain.Bill{}, err
	}
	s.invalidateReports(ctx, actor.TenantID)

	s.dispatcher.Emit(events.Event{
		Type:     domain.EventBillCreated,
		TenantID: actor.TenantID,
		BillID:   created.ID,
		Title:    "New Bill Created",
		Message:  fmt.Sprintf("Bill %s created for %s", created.BillNumber, customer.Name),
		Bill:     s.snapshotWithProducts(*created, customer, products),
		Audit:    true,
	})

	for _, level := range levels {
		if level.Stock > s.opts.LowStockThreshold {
			continue
		}
		product := products[level.ProductID]
		brandName := "Unknown Brand"
		if product.BrandID != "" {
			brand, err := s.repo.GetBrand(ctx, actor.TenantID, product.BrandID)
			if err != nil {
				log.Printf("[service] WARN: brand lookup failed product=%s brand=%s: %v", product.ID, product.BrandID, err)
			} else {
				brandName = brand.Name
			}
		}
		s.dispatcher.Emit(events.Event{
			Type:     domain.EventLowStock,
			TenantID: actor.TenantID,
			Title:    "Low Stock Alert",
			Message:  fmt.Sprintf("%s (%s) is down to %d units", product.Name, brandName, level.Stock),
			LowStock: &domain.LowStockData{
				ProductID:   product.ID,
				ProductName: product.Name,
				Stock:       level.Stock,
				BrandID:     product.BrandID,
				BrandName:   brandName,
			},
		})
	}

	result := *created
	result.Customer = customer
	return result, nil
}

func (s *Service) GetBill(ctx context.Context, id string) (domain.Bill, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Bill{}, err
	}
	bill, err := s.repo.GetBill(ctx, actor.TenantID, id)
	if err != nil {
		return domain.Bill{}, err
	}
	result := *bill
	if customer, err := s.repo.GetCustomer(ctx, actor.TenantID, bill.CustomerID); err == nil {
		result.Customer = customer
	}
	return result, nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

func (s *Service) ListBills(ctx context.Context, page, limit int) (domain.BillPage, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.BillPage{}, err
	}
	page = clampPage(page)
	limit = clampLimit(limit)

	bills, total, err := s.repo.ListBillsPaginated(ctx, actor.TenantID, page, limit)
	if err != nil {
		return domain.BillPage{}, err
	}

	customers := make(map[string]*domain.Customer, len(bills))
	for i := range bills {
		id := bills[i].CustomerID
		if id == "" {
			continue
		}
		if cached, seen := customers[id]; seen {
			bills[i].Customer = cached
			continue
		}
		customer, err := s.repo.GetCustomer(ctx, actor.TenantID, id)
		if err != nil {
			customers[id] = nil
			continue
		}
		customers[id] = customer
		bills[i].Customer = customer
	}

	return domain.BillPage{
		Bills:      bills,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *Service) UpdateBill(ctx context.Context, id string, req domain.BillUpdateRequest) (domain.Bill, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Bill{}, err
	}

	existing, err := s.repo.GetBill(ctx, actor.TenantID, id)
	if err != nil {
		return domain.Bill{}, err
	}

	updated := *existing
	if req.AmountPaidCents != nil {
		if *req.AmountPaidCents < 0 {
			return domain.Bill{}, store.ErrValidation
		}
		updated.AmountPaidCents = *req.AmountPaidCents
	}
	if req.PaymentMethod != nil {
		if !validPaymentMethod(*req.PaymentMethod) {
			return domain.Bill{}, fmt.Errorf("unknown payment method %q: %w", *req.PaymentMethod, store.ErrValidation)
		}
		updated.PaymentMethod = *req.PaymentMethod
	}
	// Status is always recomputed; a caller-sent status only forces the
	// recompute, it is never stored as-is.
	updated.Status = deriveStatus(updated.TotalCents, updated.AmountPaidCents)

	saved, err := s.repo.UpdateBill(ctx, updated)
	if err != nil {
		return domain.Bill{}, err
	}
	s.invalidateReports(ctx, actor.TenantID)

	s.dispatcher.Emit(events.Event{
		Type:     domain.EventBillUpdated,
		TenantID: actor.TenantID,
		BillID:   saved.ID,
		Title:    "Bill Updated",
		Message:  fmt.Sprintf("Bill %s updated, status %s", saved.BillNumber, saved.Status),
		Bill:     s.snapshot(ctx, actor.TenantID, *saved),
		Audit:    true,
	})

	result := *saved
	if customer, err := s.repo.GetCustomer(ctx, actor.TenantID, saved.CustomerID); err == nil {
		result.Customer = customer
	}
	return result, nil
}

func (s *Service) DeleteBill(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteBillRestoringStock(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}
	s.invalidateReports(ctx, actor.TenantID)

	s.dispatcher.Emit(events.Event{
		Type:     domain.EventBillDeleted,
		TenantID: actor.TenantID,
		BillID:   deleted.ID,
		Title:    "Bill Deleted",
		Message:  fmt.Sprintf("Bill %s deleted, stock restored", deleted.BillNumber),
		Bill:     s.snapshot(ctx, actor.TenantID, *deleted),
		Audit:    true,
	})
	return nil
}

// snapshot builds the event payload for a bill, resolving customer and
// product names best-effort. Lookups that fail leave their field empty rather
// than failing the emission.
func (s *Service) snapshot(ctx context.Context, tenantID string, bill domain.Bill) *domain.BillEventData {
	var customer *domain.Customer
	if bill.CustomerID != "" {
		if found, err := s.repo.GetCustomer(ctx, tenantID, bill.CustomerID); err == nil {
			customer = found
		}
	}

	productIDs := make([]string, 0, len(bill.Items))
	for _, item := range bill.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, tenantID, productIDs)
	if err != nil {
		log.Printf("[service] WARN: product lookup for event snapshot failed bill=%s: %v", bill.ID, err)
		products = map[string]domain.Product{}
	}
	return s.snapshotWithProducts(bill, customer, products)
}

func (s *Service) snapshotWithProducts(bill domain.Bill, customer *domain.Customer, products map[string]domain.Product) *domain.BillEventData {
	data := &domain.BillEventData{
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		SubtotalCents:   bill.SubtotalCents,
		DiscountCents:   bill.DiscountCents,
		TotalCents:      bill.TotalCents,
		AmountPaidCents: bill.AmountPaidCents,
		PaymentStatus:   bill.Status,
		PaymentMethod:   bill.PaymentMethod,
		ItemCount:       len(bill.Items),
	}
	remaining := bill.TotalCents - bill.AmountPaidCents
	if remaining < 0 {
		remaining = 0
	}
	data.RemainingCents = remaining

	if customer != nil {
		data.CustomerName = customer.Name
		data.CustomerPhone = customer.Phone
	}
	for _, item := range bill.Items {
		data.Items = append(data.Items, domain.BillEventItem{
			ProductID:   item.ProductID,
			ProductName: products[item.ProductID].Name,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
		})
	}
	return data
}

func (s *Service) invalidateReports(ctx context.Context, tenantID string) {
	if err := s.reports.Invalidate(ctx, tenantID); err != nil {
		log.Printf("[service] WARN: report cache invalidation failed tenant=%s: %v", tenantID, err)
	}
}

// reportWindowStart returns the inclusive lower bound for the window, or nil
// for the unbounded "all" window. Boundaries are computed in local time; the
// week starts on the most recent Monday.
func reportWindowStart(window string, now time.Time) *time.Time {
	switch window {
	case domain.ReportWindowDay:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &start
	case domain.ReportWindowWeek:
		back := int(now.Weekday()) - 1
		if back < 0 {
			back = 6
		}
		day := now.AddDate(0, 0, -back)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
		return &start
	case domain.ReportWindowMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &start
	default:
		return nil
	}
}

func validReportWindow(window string) bool {
	switch window {
	case domain.ReportWindowDay, domain.ReportWindowWeek, domain.ReportWindowMonth, domain.ReportWindowAll:
		return true
	}
	return false
}

func (s *Service) SalesReport(ctx context.Context, window string) (domain.SalesReport, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.SalesReport{}, err
	}
	if window == "" {
		window = domain.ReportWindowMonth
	}
	if !validReportWindow(window) {
		return domain.SalesReport{}, fmt.Errorf("unknown report window %q: %w", window, store.ErrValidation)
	}

	key := cache.Key(actor.TenantID, window)
	if cached, hit, err := s.reports.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: report cache read failed key=%s: %v", key, err)
	} else if hit {
		return *cached, nil
	}

	now := time.Now()
	from := reportWindowStart(window, now)
	bills, err := s.repo.ListBillsBetween(ctx, actor.TenantID, from, now)
	if err != nil {
		return domain.SalesReport{}, err
	}

	report := buildSalesReport(bills, window)

	productIDs := make([]string, 0, len(report.TopProducts))
	for _, top := range report.TopProducts {
		productIDs = append(productIDs, top.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, actor.TenantID, productIDs)
	if err != nil {
		log.Printf("[service] WARN: product lookup for report failed tenant=%s: %v", actor.TenantID, err)
		products = map[string]domain.Product{}
	}
	for i := range report.TopProducts {
		if product, exists := products[report.TopProducts[i].ProductID]; exists {
			report.TopProducts[i].Name = product.Name
		} else {
			report.TopProducts[i].Name = report.TopProducts[i].ProductID
		}
	}

	if err := s.reports.Set(ctx, key, &report, s.opts.ReportTTL); err != nil {
		log.Printf("[service] WARN: report cache write failed key=%s: %v", key, err)
	}
	return report, nil
}

func buildSalesReport(bills []domain.Bill, window string) domain.SalesReport {
	report := domain.SalesReport{
		Window:      window,
		DailyStats:  []domain.DailyStat{},
		TopProducts: []domain.TopProduct{},
	}

	customerSet := make(map[string]struct{})
	daily := make(map[string]*domain.DailyStat)
	type productAgg struct {
		quantity int
		revenue  int64
	}
	byProduct := make(map[string]*productAgg)

	for _, bill := range bills {
		report.TotalSalesCents += bill.TotalCents
		report.TotalOrders++
		if bill.CustomerID != "" {
			customerSet[bill.CustomerID] = struct{}{}
		}

		date := bill.CreatedAt.Local().Format("2006-01-02")
		stat, exists := daily[date]
		if !exists {
			stat = &domain.DailyStat{Date: date}
			daily[date] = stat
		}
		stat.Sales += bill.TotalCents
		stat.Orders++

		for _, item := range bill.Items {
			report.TotalProductsSold += item.Quantity
			agg, exists := byProduct[item.ProductID]
			if !exists {
				agg = &productAgg{}
				byProduct[item.ProductID] = agg
			}
			agg.quantity += item.Quantity
			agg.revenue += item.PriceCents * int64(item.Quantity)
		}
	}

	report.TotalCustomers = len(customerSet)
	if report.TotalOrders > 0 {
		report.AverageOrderValueCents = report.TotalSalesCents / int64(report.TotalOrders)
	}

	for date, stat := range daily {
		report.DailyStats = append(report.DailyStats, domain.DailyStat{
			Date:   date,
			Sales:  stat.Sales,
			Orders: stat.Orders,
		})
	}
	sort.Slice(report.DailyStats, func(i, j int) bool {
		return report.DailyStats[i].Date < report.DailyStats[j].Date
	})

	for productID, agg := range byProduct {
		report.TopProducts = append(report.TopProducts, domain.TopProduct{
			ProductID:    productID,
			Quantity:     agg.quantity,
			RevenueCents: agg.revenue,
		})
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.RevenueCents != b.RevenueCents {
			return a.RevenueCents > b.RevenueCents
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopProducts) > 10 {
		report.TopProducts = report.TopProducts[:10]
	}
	return report
}

func (s *Service) DashboardTotals(ctx context.Context) (domain.DashboardTotals, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.DashboardTotals{}, err
	}
	bills, err := s.repo.ListBillsBetween(ctx, actor.TenantID, nil, time.Now())
	if err != nil {
		return domain.DashboardTotals{}, err
	}

	var totals domain.DashboardTotals
	for _, bill := range bills {
		totals.TotalBills++
		totals.TotalSalesCents += bill.TotalCents
		if remaining := bill.TotalCents - bill.AmountPaidCents; remaining > 0 {
			totals.TotalPendingCents += remaining
		}
	}
	return totals, nil
}

func (s *Service) ListNotifications(ctx context.Context, page, limit int) (domain.NotificationPage, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.NotificationPage{}, err
	}
	page = clampPage(page)
	limit = clampLimit(limit)

	notifications, total, unread, err := s.repo.ListNotifications(ctx, actor.TenantID, page, limit)
	if err != nil {
		return domain.NotificationPage{}, err
	}
	return domain.NotificationPage{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages(total, limit),
	}, nil
}

func (s *Service) UnreadNotificationCount(ctx context.Context) (int, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.UnreadNotificationCount(ctx, actor.TenantID)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) (domain.Notification, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Notification{}, err
	}
	updated, err := s.repo.MarkNotificationRead(ctx, actor.TenantID, id)
	if err != nil {
		return domain.Notification{}, err
	}
	return *updated, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAllNotificationsRead(ctx, actor.TenantID)
}

func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteNotification(ctx, actor.TenantID, id)
}

func (s *Service) DeleteAllNotifications(ctx context.Context) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteAllNotifications(ctx, actor.TenantID)
}

func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, actor.TenantID)
}

func (s *Service) ListTransactionsByBill(ctx context.Context, billID string) ([]domain.Transaction, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactionsByBill(ctx, actor.TenantID, billID)
}
