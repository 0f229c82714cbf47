package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

func TestDiff(t *testing.T) {
	observed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	listing := func(inStock bool, price *float64) *domain.Listing {
		return &domain.Listing{
			Name:       "Pokemon TCG Surging Sparks Booster Box",
			URL:        "https://www.ebgames.com.au/product/1",
			Retailer:   "eb_games",
			InStock:    inStock,
			Price:      price,
			Category:   domain.CategoryPokemon,
			ObservedAt: observed,
		}
	}
	prior := func(inStock bool, price *float64) *domain.Product {
		return &domain.Product{
			URL:      "https://www.ebgames.com.au/product/1",
			Name:     "Pokemon TCG Surging Sparks Booster Box",
			Retailer: "eb_games",
			InStock:  inStock,
			Price:    price,
		}
	}

	tests := []struct {
		name       string
		listing    *domain.Listing
		prior      *domain.Product
		wantTypes  []domain.AlertType
		wantPrev   *float64
	}{
		{
			name:      "first sighting in stock emits new",
			listing:   listing(true, fptr(249.95)),
			prior:     nil,
			wantTypes: []domain.AlertType{domain.AlertNew},
		},
		{
			name:      "first sighting out of stock is just a baseline",
			listing:   listing(false, fptr(249.95)),
			prior:     nil,
			wantTypes: nil,
		},
		{
			name:      "restock emits in_stock",
			listing:   listing(true, fptr(249.95)),
			prior:     prior(false, fptr(249.95)),
			wantTypes: []domain.AlertType{domain.AlertInStock},
		},
		{
			name:      "sellout emits out_of_stock",
			listing:   listing(false, fptr(249.95)),
			prior:     prior(true, fptr(249.95)),
			wantTypes: []domain.AlertType{domain.AlertOutOfStock},
		},
		{
			name:      "no change emits nothing",
			listing:   listing(true, fptr(249.95)),
			prior:     prior(true, fptr(249.95)),
			wantTypes: nil,
		},
		{
			name:      "price change carries the prior price",
			listing:   listing(true, fptr(219.00)),
			prior:     prior(true, fptr(249.95)),
			wantTypes: []domain.AlertType{domain.AlertPriceChange},
			wantPrev:  fptr(249.95),
		},
		{
			name:      "restock and price change co-occur",
			listing:   listing(true, fptr(219.00)),
			prior:     prior(false, fptr(249.95)),
			wantTypes: []domain.AlertType{domain.AlertInStock, domain.AlertPriceChange},
			wantPrev:  fptr(249.95),
		},
		{
			name:      "price unknown on either side never emits price change",
			listing:   listing(true, nil),
			prior:     prior(true, fptr(249.95)),
			wantTypes: nil,
		},
		{
			name:      "price appearing from nothing never emits price change",
			listing:   listing(true, fptr(249.95)),
			prior:     prior(true, nil),
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Diff(tt.listing, tt.prior)

			require.Len(t, events, len(tt.wantTypes))
			for i, want := range tt.wantTypes {
				assert.Equal(t, want, events[i].Type)
				assert.Equal(t, observed, events[i].CreatedAt)
				assert.Equal(t, tt.listing.URL, events[i].Product.URL)
				if want == domain.AlertPriceChange {
					require.NotNil(t, events[i].PreviousPrice)
					assert.Equal(t, *tt.wantPrev, *events[i].PreviousPrice)
				} else {
					assert.Nil(t, events[i].PreviousPrice)
				}
			}
		})
	}
}

func TestDiffProductCarriesListingState(t *testing.T) {
	l := &domain.Listing{
		Name:       "One Piece OP-09 Booster Box",
		URL:        "https://www.bigw.com.au/product/2",
		Retailer:   "big_w",
		InStock:    true,
		Price:      fptr(139.00),
		Category:   domain.CategoryOnePiece,
		SetName:    "Emperors in the New World",
		ObservedAt: time.Now(),
	}

	events := Diff(l, nil)
	require.Len(t, events, 1)

	p := events[0].Product
	assert.Equal(t, l.Name, p.Name)
	assert.Equal(t, l.Retailer, p.Retailer)
	assert.Equal(t, l.Category, p.Category)
	assert.Equal(t, l.SetName, p.SetName)
	assert.Equal(t, l.ObservedAt, p.LastChecked)
}
