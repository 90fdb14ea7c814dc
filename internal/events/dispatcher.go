package events

import (
	"context"
	"log"
	"time"

	"billbook/backend/internal/domain"
)

// Sink is the slice of the store the dispatcher writes through.
type Sink interface {
	CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
	CreateTransaction(ctx context.Context, transaction domain.Transaction) (*domain.Transaction, error)
}

// Event is one side effect queued off the request path. Every event becomes a
// notification; events flagged Audit also become an immutable transaction
// record.
type Event struct {
	Type     string
	TenantID string
	BillID   string
	Title    string
	Message  string
	Bill     *domain.BillEventData
	LowStock *domain.LowStockData
	Audit    bool
}

type Options struct {
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 200 * time.Millisecond
	}
	return o
}

// Dispatcher delivers side effects on a single background worker. Emit never
// blocks and never returns an error: a ledger write must not fail because a
// notification could not be recorded.
type Dispatcher struct {
	sink    Sink
	opts    Options
	queue   chan Event
	done    chan struct{}
	logger  *log.Logger
	timeout time.Duration
}

func NewDispatcher(sink Sink, opts Options) *Dispatcher {
	d := &Dispatcher{
		sink:    sink,
		opts:    opts.withDefaults(),
		done:    make(chan struct{}),
		logger:  log.New(log.Writer(), "[events] ", log.LstdFlags),
		timeout: 5 * time.Second,
	}
	d.queue = make(chan Event, d.opts.QueueSize)
	go d.run()
	return d
}

// Emit queues the event. When the queue is full the event is dropped and
// logged rather than blocking the caller.
func (d *Dispatcher) Emit(event Event) {
	select {
	case d.queue <- event:
	default:
		d.logger.Printf("queue full, dropped event type=%s tenant=%s bill=%s", event.Type, event.TenantID, event.BillID)
	}
}

// Close stops accepting events and blocks until every queued event has been
// delivered or dead-lettered.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

// deliver writes the notification and, for audit events, the transaction
// record. Each write retries independently so a transaction failure never
// duplicates an already-persisted notification.
func (d *Dispatcher) deliver(event Event) {
	ok := d.attempt(event, "notification", func(ctx context.Context) error {
		_, err := d.sink.CreateNotification(ctx, domain.Notification{
			TenantID: event.TenantID,
			Type:     event.Type,
			Title:    event.Title,
			Message:  event.Message,
			Bill:     event.Bill,
			LowStock: event.LowStock,
		})
		return err
	})
	if !ok || !event.Audit || event.Bill == nil {
		return
	}

	d.attempt(event, "transaction", func(ctx context.Context) error {
		_, err := d.sink.CreateTransaction(ctx, domain.Transaction{
			TenantID: event.TenantID,
			BillID:   event.BillID,
			Type:     event.Type,
			Title:    event.Title,
			Message:  event.Message,
			Data:     *event.Bill,
		})
		return err
	})
}

func (d *Dispatcher) attempt(event Event, kind string, write func(ctx context.Context) error) bool {
	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		lastErr = write(ctx)
		cancel()
		if lastErr == nil {
			return true
		}
		if attempt < d.opts.MaxAttempts {
			time.Sleep(d.opts.RetryBackoff * time.Duration(attempt))
		}
	}
	d.logger.Printf("dead-letter: %s type=%s tenant=%s bill=%s after %d attempts: %v",
		kind, event.Type, event.TenantID, event.BillID, d.opts.MaxAttempts, lastErr)
	return false
}
