package worker

import (
	"context"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// InvoiceRenderer produces an invoice document for a created order and
// returns its URL.
type InvoiceRenderer interface {
	Render(ctx context.Context, ev *models.OrderCreatedEvent) (string, error)
}

// InvoiceWorker consumes OrderCreated events and renders invoices off
// the request path. A rendering failure is logged and counted; the
// order it belongs to is already committed and stays that way.
type InvoiceWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	renderer     InvoiceRenderer
	logger       *zap.Logger
}

// NewInvoiceWorker creates a new invoice worker
func NewInvoiceWorker(consumer *broker.Consumer, renderer InvoiceRenderer) *InvoiceWorker {
	w := &InvoiceWorker{
		consumer: consumer,
		renderer: renderer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *InvoiceWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting invoice worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InvoiceWorker) Stop() error {
	w.logger.Info("Stopping invoice worker")
	return w.consumer.Close()
}

// handleOrderCreated renders the invoice for an order. It always
// returns nil: the event must be committed whether or not rendering
// worked, because invoice failure is isolated from order success.
func (w *InvoiceWorker) handleOrderCreated(ctx context.Context, ev *models.OrderCreatedEvent) error {
	if !ev.WithInvoice {
		return nil
	}

	url, err := w.renderer.Render(ctx, ev)
	if err != nil {
		util.InvoicesFailedTotal.Inc()
		w.logger.Error("Invoice generation failed",
			zap.Int64("order_id", ev.OrderID),
			zap.Error(err))
		return nil
	}

	util.InvoicesGeneratedTotal.Inc()
	w.logger.Info("Invoice ready",
		zap.Int64("order_id", ev.OrderID),
		zap.String("url", url))
	return nil
}
