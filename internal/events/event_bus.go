// internal/events/event_bus.go
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"epos-bridge/internal/model"
)

// AllPrinters subscribes to events from every printer
const AllPrinters = "*"

const (
	busBuffer        = 1000
	subscriberBuffer = 100
)

// Subscription is a live feed of printer events
type Subscription struct {
	C         <-chan model.PrinterEvent
	ch        chan model.PrinterEvent
	printerID string
}

// EventBus fans printer events out to subscribers
type EventBus struct {
	subscribers map[string]map[*Subscription]struct{}
	events      chan model.PrinterEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[*Subscription]struct{}),
		events:      make(chan model.PrinterEvent, busBuffer),
		logger:      logger,
	}
}

// Run distributes events until ctx is done, then closes every subscription
func (eb *EventBus) Run(ctx context.Context) error {
	defer eb.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-eb.events:
			eb.distribute(event)
		}
	}
}

// Publish queues an event without blocking
func (eb *EventBus) Publish(event model.PrinterEvent) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
			zap.String("printer_id", event.PrinterID),
		)
	}
}

// Subscribe returns a feed of events for printerID, or for every printer
// when printerID is AllPrinters
func (eb *EventBus) Subscribe(printerID string) *Subscription {
	ch := make(chan model.PrinterEvent, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, printerID: printerID}

	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if eb.subscribers[printerID] == nil {
		eb.subscribers[printerID] = make(map[*Subscription]struct{})
	}
	eb.subscribers[printerID][sub] = struct{}{}
	return sub
}

// Unsubscribe stops and closes a subscription
func (eb *EventBus) Unsubscribe(sub *Subscription) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subs := eb.subscribers[sub.printerID]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(eb.subscribers, sub.printerID)
	}
	close(sub.ch)
}

func (eb *EventBus) distribute(event model.PrinterEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, key := range []string{event.PrinterID, AllPrinters} {
		for sub := range eb.subscribers[key] {
			select {
			case sub.ch <- event:
			default:
				// slow subscriber
				eb.logger.Debug("Subscriber lagging, event skipped",
					zap.String("printer_id", event.PrinterID),
				)
			}
		}
	}
}

func (eb *EventBus) closeAll() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for key, subs := range eb.subscribers {
		for sub := range subs {
			close(sub.ch)
		}
		delete(eb.subscribers, key)
	}
}
