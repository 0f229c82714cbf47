// Package notify defines the notification interface and implementations
// for stock alert delivery.
package notify

import (
	"context"
	"fmt"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// AlertPayload contains the data needed to send a stock alert notification.
type AlertPayload struct {
	Title      string
	ProductURL string
	ImageURL   string
	Retailer   string
	SetName    string
	Type       domain.AlertType
	Price      string
	OldPrice   string
}

// PayloadFromEvent flattens a stock event into the fields the notification
// backends render.
func PayloadFromEvent(e *domain.StockEvent) *AlertPayload {
	p := &AlertPayload{
		Title:      e.Product.Name,
		ProductURL: e.Product.URL,
		ImageURL:   e.Product.ImageURL,
		Retailer:   e.Product.Retailer,
		SetName:    e.Product.SetName,
		Type:       e.Type,
		Price:      e.Product.DisplayPrice(),
	}
	if e.PreviousPrice != nil {
		p.OldPrice = fmt.Sprintf("$%.2f", *e.PreviousPrice)
	}
	return p
}

// Notifier defines the interface for sending stock alert notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload) error
}
