package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of applied stock adjustments",
	}, []string{"target", "direction"})

	StockAdjustmentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_rejected_total",
		Help: "Total number of rejected stock adjustments",
	}, []string{"reason"})

	PurchasesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_recorded_total",
		Help: "Total number of purchase ledger entries appended",
	}, []string{"mode"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order attempts",
	}, []string{"reason"})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Total number of deleted orders (stock restored)",
	})

	OrderReserveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_reserve_latency_seconds",
		Help:    "Latency of reserving stock for a whole cart",
		Buckets: prometheus.DefBuckets,
	})

	OrderRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_rollbacks_total",
		Help: "Total number of compensating rollbacks after a partial reservation",
	})

	InvoicesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_generated_total",
		Help: "Total number of invoice PDFs generated",
	})

	InvoicesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_failed_total",
		Help: "Total number of invoice generation failures (non-fatal to orders)",
	})

	InvoiceRenderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoice_render_latency_seconds",
		Help:    "Latency of rendering an invoice PDF",
		Buckets: prometheus.DefBuckets,
	})

	DashboardCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_requests_total",
		Help: "Dashboard stats cache lookups by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
