package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	EventTypeOrderCreated = "OrderCreated"

	metaEventID       = "eventId"
	metaSourceOrderID = "sourceOrderId"
)

// OrderSink receives the orders decoded from the topic.
type OrderSink interface {
	AddOrder(ctx context.Context, o model.Order) model.Order
	Orders() []model.Order
}

type OrderListener struct {
	reader   MessageReader
	sink     OrderSink
	validate *validator.Validate
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewOrderListener(reader MessageReader, sink OrderSink, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		reader:   reader,
		sink:     sink,
		validate: validator.New(),
		logger:   log.With(zap.String("component", "order_listener")),
		backoff:  time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress *model.Address     `json:"shipping_address"`
	Items           []OrderItemPayload `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	ShippingCost    float64            `json:"shipping_cost"`
	Total           float64            `json:"total"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentStatus   string             `json:"payment_status"`
	Notes           string             `json:"notes"`
}

type OrderItemPayload struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selected_size"`
	SelectedColor string  `json:"selected_color"`
	Image         string  `json:"image"`
}

// toOrder maps the event onto an order whose lines are a snapshot of the
// purchased products.
func (e OrderCreatedEvent) toOrder() model.Order {
	p := e.Payload
	items := make([]model.OrderLine, len(p.Items))
	for i, it := range p.Items {
		items[i] = model.OrderLine{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         it.Price,
			Quantity:      it.Quantity,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
			Image:         it.Image,
		}
	}

	total := p.Total
	if total == 0 {
		for _, it := range items {
			total += it.Price * float64(it.Quantity)
		}
		total += p.ShippingCost
	}

	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	return model.Order{
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		CustomerEmail:   p.CustomerEmail,
		CustomerPhone:   p.CustomerPhone,
		ShippingAddress: p.ShippingAddress,
		Items:           items,
		Subtotal:        p.Subtotal,
		ShippingCost:    p.ShippingCost,
		Total:           total,
		Status:          model.OrderStatusPending,
		PaymentMethod:   p.PaymentMethod,
		PaymentStatus:   p.PaymentStatus,
		Notes:           p.Notes,
		Timeline: []model.OrderEvent{{
			Status: model.OrderStatusPending,
			At:     at.UTC().Format(time.RFC3339),
			Note:   "received from order stream",
		}},
		Metadata: map[string]string{
			metaEventID:       e.EventID,
			metaSourceOrderID: p.ID,
		},
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventTypeOrderCreated {
		return
	}
	if event.EventID != "" && l.seen(event.EventID) {
		l.logger.Debug("Skipping duplicate OrderCreated event", zap.String("event_id", event.EventID))
		return
	}

	order := event.toOrder()
	if err := l.validate.Struct(order); err != nil {
		l.logger.Warn("Discarding invalid OrderCreated event",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.Payload.ID),
			zap.Error(err))
		return
	}

	created := l.sink.AddOrder(ctx, order)
	l.logger.Info("Processed OrderCreated event",
		zap.String("event_id", event.EventID),
		zap.String("order_id", created.ID),
		zap.Int("items", len(created.Items)))
}

// seen reports whether an order from the same event was already stored.
func (l *OrderListener) seen(eventID string) bool {
	for _, o := range l.sink.Orders() {
		if o.Metadata[metaEventID] == eventID {
			return true
		}
	}
	return false
}
