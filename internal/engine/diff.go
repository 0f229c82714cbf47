package engine

import (
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// Diff compares a freshly observed listing against the last persisted state
// for its URL and produces the stock-change events the observation implies.
// Rules, in order:
//
//  1. No prior state: emit NEW when the listing is in stock, otherwise the
//     observation is just a baseline and produces no event.
//  2. Out of stock before, in stock now: emit IN_STOCK.
//  3. In stock before, out of stock now: emit OUT_OF_STOCK.
//  4. Both prices known and different: emit PRICE_CHANGE carrying the prior
//     price. Can co-occur with rule 2 or 3.
//
// Persisting the new product state and its history row is the caller's job
// and happens regardless of whether any event fired.
func Diff(listing *domain.Listing, prior *domain.Product) []domain.StockEvent {
	product := domain.FromListing(listing)

	var events []domain.StockEvent
	emit := func(t domain.AlertType, prevPrice *float64) {
		events = append(events, domain.StockEvent{
			Product:       product,
			Type:          t,
			PreviousPrice: prevPrice,
			CreatedAt:     listing.ObservedAt,
		})
	}

	if prior == nil {
		if listing.InStock {
			emit(domain.AlertNew, nil)
		}
		return events
	}

	switch {
	case !prior.InStock && listing.InStock:
		emit(domain.AlertInStock, nil)
	case prior.InStock && !listing.InStock:
		emit(domain.AlertOutOfStock, nil)
	}

	if listing.Price != nil && prior.Price != nil && *listing.Price != *prior.Price {
		emit(domain.AlertPriceChange, prior.Price)
	}

	return events
}
