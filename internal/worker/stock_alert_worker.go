package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StockAlertPayload is the job envelope sent to QueueStockAlert after an order
// leaves a StockTracked product at or below the low-stock threshold.
type StockAlertPayload struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
	OrderID     string `json:"order_id"`
	OrderNumber int    `json:"order_number"`
	At          string `json:"at"` // RFC 3339
}

// StockAlertWorker surfaces low-stock alerts in the operator log.
type StockAlertWorker struct{}

func NewStockAlertWorker() *StockAlertWorker { return &StockAlertWorker{} }

// Process validates and logs one alert.
func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p StockAlertPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("stock_alert: invalid payload: %w", err)
	}
	if p.ProductID == "" {
		return fmt.Errorf("stock_alert: missing product_id")
	}

	ev := log.Warn()
	if p.Stock <= 0 {
		ev = log.Error()
	}
	ev.Str("product_id", p.ProductID).
		Str("product", p.Name).
		Int("stock", p.Stock).
		Int("threshold", p.Threshold).
		Int("order_number", p.OrderNumber).
		Msg("stock_alert: product running low")
	return nil
}
