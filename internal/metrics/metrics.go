package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// BuyerMetrics regroupe les compteurs de la passerelle acheteur.
// Un *BuyerMetrics nil est accepté partout et n'enregistre rien.
type BuyerMetrics struct {
	cartMutations     *prometheus.CounterVec
	ordersPlaced      prometheus.Counter
	ordersFailed      prometheus.Counter
	checkoutBlocked   *prometheus.CounterVec
	notificationPolls *prometheus.CounterVec
	readAckFailures   prometheus.Counter
}

// NewBuyerMetrics enregistre les métriques dans le registre par défaut.
func NewBuyerMetrics() *BuyerMetrics {
	return NewBuyerMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewBuyerMetricsWithRegisterer(registerer prometheus.Registerer) *BuyerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BuyerMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "seamerkado_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "seamerkado_orders_placed_total",
			Help: "Total number of orders submitted successfully",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "seamerkado_orders_failed_total",
			Help: "Total number of order submissions rejected by remote services",
		}),
		checkoutBlocked: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "seamerkado_checkout_blocked_total",
			Help: "Total number of place-order attempts blocked by validation",
		}, []string{"reason"}),
		notificationPolls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "seamerkado_notification_polls_total",
			Help: "Total number of notification fetches by result",
		}, []string{"result"}),
		readAckFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "seamerkado_notification_read_ack_failures_total",
			Help: "Total number of read acknowledgements that failed after the optimistic update",
		}),
	}
}

func (m *BuyerMetrics) RecordCartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

func (m *BuyerMetrics) RecordOrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *BuyerMetrics) RecordOrderFailed() {
	if m == nil {
		return
	}
	m.ordersFailed.Inc()
}

func (m *BuyerMetrics) RecordCheckoutBlocked(reason string) {
	if m == nil {
		return
	}
	m.checkoutBlocked.WithLabelValues(reason).Inc()
}

func (m *BuyerMetrics) RecordNotificationPoll(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.notificationPolls.WithLabelValues(result).Inc()
}

func (m *BuyerMetrics) RecordReadAckFailure() {
	if m == nil {
		return
	}
	m.readAckFailures.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}
