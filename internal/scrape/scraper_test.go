package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcg-tools/restock-monitor/internal/config"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

const ebGamesFixture = `<html><body>
<div class="results">
  <div class="product-card">
    <a href="/product/pokemon-surging-sparks-booster-box">
      <h3>Pokemon TCG Surging Sparks Booster Box</h3>
    </a>
    <span class="price">$249.95</span>
    <div class="stock-status">In Stock</div>
    <img src="/images/surging-sparks.jpg">
  </div>
  <div class="product-card">
    <a href="/product/op-two-legends-display">
      <h3>One Piece Card Game Two Legends Booster Display</h3>
    </a>
    <span class="price">$139.00</span>
    <div class="stock-status">Out of stock</div>
  </div>
  <div class="product-card">
    <a href="/product/single-pack">
      <h3>Pokemon Surging Sparks Single Booster Pack</h3>
    </a>
    <span class="price">$7.95</span>
    <div class="stock-status">In Stock</div>
  </div>
  <div class="product-card">
    <a href="/product/crown-zenith-tin">
      <h3>Pokemon Crown Zenith Tin</h3>
    </a>
    <span class="price">$34.95</span>
  </div>
</div>
</body></html>`

func newFixtureScraper(t *testing.T, build func(baseProfile) profile, source string, srv *httptest.Server) *siteScraper {
	t.Helper()
	limiter := NewLimiter(0, 0)
	breaker := NewBreaker(5, 5*time.Minute)
	fetcher := NewFetcher(source, limiter, breaker, 5*time.Second, 3, time.Second)
	p := build(baseProfile{source: source, name: source, baseURL: srv.URL})
	return newSiteScraper(p, fetcher, slog.New(slog.DiscardHandler))
}

func TestEBGamesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "pokemon booster box", r.URL.Query().Get("q"))
		w.Write([]byte(ebGamesFixture))
	}))
	defer srv.Close()

	s := newFixtureScraper(t, ebGamesProfile, "eb_games", srv)
	listings, err := s.Search(context.Background(), domain.CategoryPokemon)
	require.NoError(t, err)

	// pack and tin are filtered out
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Pokemon TCG Surging Sparks Booster Box", first.Name)
	assert.Equal(t, srv.URL+"/product/pokemon-surging-sparks-booster-box", first.URL)
	assert.Equal(t, "eb_games", first.Retailer)
	assert.True(t, first.InStock)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 249.95, *first.Price, 0.001)
	assert.Equal(t, domain.CategoryPokemon, first.Category)
	assert.Equal(t, "Surging Sparks", first.SetName)
	assert.Equal(t, srv.URL+"/images/surging-sparks.jpg", first.ImageURL)
	assert.False(t, first.ObservedAt.IsZero())

	second := listings[1]
	assert.Equal(t, domain.CategoryOnePiece, second.Category)
	assert.Equal(t, "Two Legends", second.SetName)
	assert.False(t, second.InStock)
}

func TestSearchFallbackCardSelectors(t *testing.T) {
	// no primary card classes at all, only the loose fallback
	page := `<html><body>
	  <div class="product">
	    <a href="/product/paradox-rift-box"><h3>Pokemon Paradox Rift Booster Box</h3></a>
	    <span class="price">$229.00</span>
	  </div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := newFixtureScraper(t, ebGamesProfile, "eb_games", srv)
	listings, err := s.Search(context.Background(), domain.CategoryPokemon)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Pokemon Paradox Rift Booster Box", listings[0].Name)
	// no stock signal on the card means out of stock
	assert.False(t, listings[0].InStock)
}

func TestSearchUnknownCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := newFixtureScraper(t, ebGamesProfile, "eb_games", srv)
	_, err := s.Search(context.Background(), domain.Category("magic"))
	require.Error(t, err)
}

func TestSearchPropagatesFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newFixtureScraper(t, ebGamesProfile, "eb_games", srv)
	s.fetcher.sleepFunc = func(context.Context, time.Duration) error { return nil }

	_, err := s.Search(context.Background(), domain.CategoryPokemon)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindStatus, ferr.Kind)
}

func TestBigWStockNeedsExplicitSignal(t *testing.T) {
	page := `<html><body>
	  <div class="product-item">
	    <a class="product-link" href="/product/151-box"><h3 class="product-name">Pokemon 151 Booster Box</h3></a>
	    <span class="price">$89.00</span>
	    <span class="availability">In stock online</span>
	  </div>
	  <div class="product-item">
	    <a class="product-link" href="/product/op-box"><h3 class="product-name">One Piece Royal Blood Booster Box</h3></a>
	    <span class="availability">Out of stock</span>
	  </div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := newFixtureScraper(t, bigWProfile, "big_w", srv)
	listings, err := s.Search(context.Background(), domain.CategoryPokemon)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.True(t, listings[0].InStock)
	assert.False(t, listings[1].InStock)
	assert.Nil(t, listings[1].Price)
}

func TestJBHiFiDisabledAddToCart(t *testing.T) {
	page := `<html><body>
	  <div class="product-tile">
	    <a class="product-tile__link" href="/product/stellar-crown">
	      <div class="product-tile__title">Pokemon Stellar Crown Booster Box</div>
	    </a>
	    <span class="product-tile__price">$239.00</span>
	    <button class="add-to-cart" disabled>Notify me</button>
	  </div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "games", r.URL.Query().Get("category"))
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := newFixtureScraper(t, jbHiFiProfile, "jb_hifi", srv)
	listings, err := s.Search(context.Background(), domain.CategoryPokemon)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.False(t, listings[0].InStock)
	assert.Equal(t, "Stellar Crown", listings[0].SetName)
}

func TestNewScrapers(t *testing.T) {
	cfg := config.ScrapeConfig{
		DelayMin:       time.Second,
		DelayMax:       2 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryBase:      time.Second,
	}

	scrapers, err := NewScrapers(cfg, config.DefaultSources(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Len(t, scrapers, 5)

	keys := make([]string, 0, len(scrapers))
	for _, s := range scrapers {
		keys = append(keys, s.Source())
	}
	assert.ElementsMatch(t, []string{"eb_games", "jb_hifi", "target_au", "big_w", "kmart"}, keys)
}

func TestNewScrapersSkipsDisabled(t *testing.T) {
	disabled := false
	sources := []config.SourceConfig{
		{Key: "eb_games", Name: "EB Games", BaseURL: "https://www.ebgames.com.au"},
		{Key: "kmart", Name: "Kmart", BaseURL: "https://www.kmart.com.au", Enabled: &disabled},
	}

	scrapers, err := NewScrapers(config.ScrapeConfig{}, sources, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Len(t, scrapers, 1)
	assert.Equal(t, "eb_games", scrapers[0].Source())
}

func TestNewScrapersUnknownSource(t *testing.T) {
	sources := []config.SourceConfig{{Key: "amazon_au", BaseURL: "https://www.amazon.com.au"}}
	_, err := NewScrapers(config.ScrapeConfig{}, sources, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amazon_au")
}
