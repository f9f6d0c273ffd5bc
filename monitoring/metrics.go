package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "easyticket_orders_confirmed_total",
		Help: "Orders that reached the confirmed state.",
	})

	OrdersRefunded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "easyticket_orders_refunded_total",
		Help: "Orders refunded, including compensating refunds on expired orders.",
	})

	OversellRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "easyticket_oversell_rejections_total",
		Help: "Confirmations rejected because capacity ran out after reservation.",
	})

	TicketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "easyticket_tickets_issued_total",
		Help: "Tickets materialized by confirmed orders.",
	})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "easyticket_webhook_events_total",
		Help: "Gateway webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	ExpiredOrdersSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "easyticket_expired_orders_swept_total",
		Help: "Pending orders failed by the expiry sweep.",
	})
)
