package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"billbook/backend/internal/domain"
)

type fakeSink struct {
	mu            sync.Mutex
	notifications []domain.Notification
	transactions  []domain.Transaction

	failNotifications int
	failTransactions  int
}

func (f *fakeSink) CreateNotification(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNotifications > 0 {
		f.failNotifications--
		return nil, errors.New("sink unavailable")
	}
	f.notifications = append(f.notifications, n)
	return &n, nil
}

func (f *fakeSink) CreateTransaction(_ context.Context, t domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTransactions > 0 {
		f.failTransactions--
		return nil, errors.New("sink unavailable")
	}
	f.transactions = append(f.transactions, t)
	return &t, nil
}

func fastOptions() Options {
	return Options{QueueSize: 16, MaxAttempts: 3, RetryBackoff: time.Millisecond}
}

func billEvent() Event {
	return Event{
		Type:     domain.EventBillCreated,
		TenantID: "tenant-1",
		BillID:   "bill-1",
		Title:    "New Bill Created",
		Message:  "Bill acme-2026-0001 created",
		Bill: &domain.BillEventData{
			BillID:     "bill-1",
			BillNumber: "acme-2026-0001",
			TotalCents: 9000,
		},
		Audit: true,
	}
}

func TestAuditEventWritesNotificationAndTransaction(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, fastOptions())

	d.Emit(billEvent())
	d.Close()

	if len(sink.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sink.notifications))
	}
	if len(sink.transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(sink.transactions))
	}
	if sink.transactions[0].BillID != "bill-1" {
		t.Fatalf("transaction bill id = %q", sink.transactions[0].BillID)
	}
	if sink.notifications[0].Bill == nil || sink.notifications[0].Bill.BillNumber != "acme-2026-0001" {
		t.Fatalf("notification bill payload = %+v", sink.notifications[0].Bill)
	}
}

func TestLowStockEventSkipsTransaction(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, fastOptions())

	d.Emit(Event{
		Type:     domain.EventLowStock,
		TenantID: "tenant-1",
		Title:    "Low Stock Alert",
		Message:  "Coffee 250g is running low",
		LowStock: &domain.LowStockData{ProductID: "prod-1", ProductName: "Coffee 250g", Stock: 4},
	})
	d.Close()

	if len(sink.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sink.notifications))
	}
	if len(sink.transactions) != 0 {
		t.Fatalf("transactions = %d, want 0", len(sink.transactions))
	}
	if sink.notifications[0].LowStock == nil || sink.notifications[0].LowStock.Stock != 4 {
		t.Fatalf("low stock payload = %+v", sink.notifications[0].LowStock)
	}
}

func TestDeliveryRetriesTransientFailure(t *testing.T) {
	sink := &fakeSink{failNotifications: 2}
	d := NewDispatcher(sink, fastOptions())

	d.Emit(billEvent())
	d.Close()

	if len(sink.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1 after retries", len(sink.notifications))
	}
	if len(sink.transactions) != 1 {
		t.Fatalf("transactions = %d, want 1 after retries", len(sink.transactions))
	}
}

func TestPermanentFailureDeadLetters(t *testing.T) {
	sink := &fakeSink{failNotifications: 100}
	d := NewDispatcher(sink, fastOptions())

	d.Emit(billEvent())
	d.Close()

	if len(sink.notifications) != 0 {
		t.Fatalf("notifications = %d, want 0", len(sink.notifications))
	}
	// The transaction is skipped entirely when the notification dead-letters.
	if len(sink.transactions) != 0 {
		t.Fatalf("transactions = %d, want 0", len(sink.transactions))
	}
}

func TestTransactionFailureDoesNotDuplicateNotification(t *testing.T) {
	sink := &fakeSink{failTransactions: 1}
	d := NewDispatcher(sink, fastOptions())

	d.Emit(billEvent())
	d.Close()

	if len(sink.notifications) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(sink.notifications))
	}
	if len(sink.transactions) != 1 {
		t.Fatalf("transactions = %d, want 1 after retry", len(sink.transactions))
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, fastOptions())

	for i := 0; i < 10; i++ {
		event := billEvent()
		event.Audit = false
		d.Emit(event)
	}
	d.Close()

	if len(sink.notifications) != 10 {
		t.Fatalf("notifications = %d, want 10", len(sink.notifications))
	}
}
