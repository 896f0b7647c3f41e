package metrics

import (
	"context"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Storefront counts storefront events observed on the bus.
type Storefront struct {
	cartChanges      prometheus.Counter
	cartItems        prometheus.Histogram
	promoChanges     *prometheus.CounterVec
	fieldValidations *prometheus.CounterVec
	orders           *prometheus.CounterVec
	orderValue       prometheus.Histogram
}

func NewStorefront(reg prometheus.Registerer) *Storefront {

	factory := promauto.With(reg)

	return &Storefront{
		cartChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_changes_total",
			Help: "Total number of committed cart mutations.",
		}),
		cartItems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_cart_items",
			Help:    "Item count of the cart after each mutation.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		promoChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_totals_recomputed_total",
			Help: "Totals recomputations, labelled by the active promo code.",
		}, []string{"promo"}),
		fieldValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_field_validations_total",
			Help: "Checkout field validations, labelled by field and outcome.",
		}, []string{"field", "result"}),
		orders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_orders_total",
			Help: "Order submissions by final state.",
		}, []string{"state"}),
		orderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_value",
			Help:    "Grand total of confirmed orders.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000},
		}),
	}
}

// Subscribe starts counting events from bus and returns the unsubscribe function.
func (s *Storefront) Subscribe(bus *events.Bus) func() {
	return bus.SubscribeAll(s.observe)
}

func (s *Storefront) observe(_ context.Context, e events.Event) {
	switch p := e.Payload.(type) {
	case events.CartChangedPayload:
		s.cartChanges.Inc()
		s.cartItems.Observe(float64(p.Cart.ItemCount()))

	case events.TotalsChangedPayload:
		code := "none"
		if p.Promo != nil {
			code = p.Promo.Code
		}
		s.promoChanges.WithLabelValues(code).Inc()

	case events.ValidationResultPayload:
		for _, r := range p.Results {
			result := "ok"
			if !r.OK {
				result = "invalid"
			}
			s.fieldValidations.WithLabelValues(r.Field, result).Inc()
		}

	case events.OrderResultPayload:
		s.orders.WithLabelValues(string(p.Result.State)).Inc()
		if p.Result.State == models.SubmissionConfirmed && p.Result.Order != nil {
			value, _ := p.Result.Order.Total.Float64()
			s.orderValue.Observe(value)
		}
	}
}
