package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tcg-tools/restock-monitor/internal/config"
	"github.com/tcg-tools/restock-monitor/internal/metrics"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// Scraper checks one retailer for booster box listings in one category.
type Scraper interface {
	// Source is the stable retailer key, e.g. "eb_games".
	Source() string
	// Name is the human-facing retailer name.
	Name() string
	// Search fetches the retailer's search results for the category and
	// returns every booster box listing found. A fetch failure returns an
	// error; an empty result page returns an empty slice.
	Search(ctx context.Context, category domain.Category) ([]domain.Listing, error)
}

// profile describes how one retailer's search results are laid out. Each
// matcher list is tried in order; retailer markup changes often enough that
// every field gets fallbacks.
type profile struct {
	source      string
	name        string
	baseURL     string
	searchPaths map[domain.Category]string
	cards       []Matcher
	cardsLoose  []Matcher
	title       []Matcher
	link        []Matcher
	price       []Matcher
	image       []Matcher
	inStock     func(card *Element) bool
}

// siteScraper is the shared retailer adapter. The per-retailer files supply
// a profile; everything else is common.
type siteScraper struct {
	profile profile
	fetcher *Fetcher
	logger  *slog.Logger
	nowFunc func() time.Time
}

func newSiteScraper(p profile, fetcher *Fetcher, logger *slog.Logger) *siteScraper {
	return &siteScraper{
		profile: p,
		fetcher: fetcher,
		logger:  logger.With("source", p.source),
		nowFunc: time.Now,
	}
}

func (s *siteScraper) Source() string { return s.profile.source }
func (s *siteScraper) Name() string   { return s.profile.name }

// BreakerState reports the scraper's circuit breaker state for the status
// surface.
func (s *siteScraper) BreakerState() BreakerState { return s.fetcher.BreakerState() }

func (s *siteScraper) Search(ctx context.Context, category domain.Category) ([]domain.Listing, error) {
	path, ok := s.profile.searchPaths[category]
	if !ok {
		return nil, fmt.Errorf("%s: no search path for category %q", s.profile.source, category)
	}

	body, err := s.fetcher.Fetch(ctx, s.profile.baseURL+path)
	if err != nil {
		return nil, err
	}

	root, err := ParseHTML(body)
	if err != nil {
		metrics.ScrapeErrorsTotal.WithLabelValues(s.profile.source).Inc()
		return nil, fmt.Errorf("%s: parse search page: %w", s.profile.source, err)
	}

	cards := root.FindAll(Any(s.profile.cards...))
	if len(cards) == 0 && len(s.profile.cardsLoose) > 0 {
		cards = root.FindAll(Any(s.profile.cardsLoose...))
	}

	listings := make([]domain.Listing, 0, len(cards))
	for _, card := range cards {
		listing, ok := s.parseCard(card, category)
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}

	s.logger.Info("search complete", "category", category, "cards", len(cards), "booster_boxes", len(listings))
	return listings, nil
}

// parseCard extracts one listing from a product card. Cards without a name
// or link, and products that are not sealed booster boxes, are skipped.
func (s *siteScraper) parseCard(card *Element, category domain.Category) (domain.Listing, bool) {
	name := ""
	if el := card.First(s.profile.title...); el != nil {
		name = el.Text()
	}
	if name == "" || !IsBoosterBox(name) {
		return domain.Listing{}, false
	}

	href := ""
	if el := card.First(s.profile.link...); el != nil {
		href = el.Attr("href")
	}
	if href == "" {
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Name:       name,
		URL:        s.absoluteURL(href),
		Retailer:   s.profile.source,
		Category:   category,
		SetName:    ExtractSetName(name),
		ObservedAt: s.nowFunc(),
	}
	if cat := Categorize(name); cat != domain.CategoryUnknown {
		listing.Category = cat
	}

	if el := card.First(s.profile.price...); el != nil {
		listing.Price = ParsePrice(el.Text())
	}
	if s.profile.inStock != nil {
		listing.InStock = s.profile.inStock(card)
	}
	if el := card.First(s.profile.image...); el != nil {
		if src := el.Attr("src"); src != "" {
			listing.ImageURL = s.absoluteURL(src)
		} else if src := el.Attr("data-src"); src != "" {
			listing.ImageURL = s.absoluteURL(src)
		}
	}
	return listing, true
}

func (s *siteScraper) absoluteURL(href string) string {
	base, err := url.Parse(s.profile.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// stockFromSignals is the common stock heuristic: an explicit availability
// element wins, then an add-to-cart control, and an unreadable card counts
// as out of stock.
func stockFromSignals(card *Element, availability Matcher, addToCart Matcher) bool {
	if el := card.FindFirst(availability); el != nil {
		text := strings.ToLower(el.Text())
		return !strings.Contains(text, "out of stock") &&
			!strings.Contains(text, "unavailable") &&
			!strings.Contains(text, "sold out")
	}
	if btn := card.FindFirst(addToCart); btn != nil {
		return !btn.HasAttr("disabled")
	}
	return false
}

// defaultSearchPaths builds the standard search query paths shared by most
// of the retailers.
func defaultSearchPaths(suffix string) map[domain.Category]string {
	return map[domain.Category]string{
		domain.CategoryPokemon:  "/search?q=pokemon+booster+box" + suffix,
		domain.CategoryOnePiece: "/search?q=one+piece+booster+box" + suffix,
	}
}

// NewScrapers builds one scraper per enabled source. Each scraper owns its
// fetcher; limiters and breakers live per source so their state spans cycles.
func NewScrapers(cfg config.ScrapeConfig, sources []config.SourceConfig, logger *slog.Logger, opts ...FetcherOption) ([]Scraper, error) {
	var robots *RobotsChecker
	if cfg.RespectRobots {
		robots = NewRobotsChecker(nil)
	}

	constructors := map[string]func(p baseProfile) profile{
		"eb_games":  ebGamesProfile,
		"jb_hifi":   jbHiFiProfile,
		"target_au": targetProfile,
		"big_w":     bigWProfile,
		"kmart":     kmartProfile,
	}

	var scrapers []Scraper
	for _, src := range sources {
		if !src.IsEnabled() {
			continue
		}
		build, ok := constructors[src.Key]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", src.Key)
		}

		limiter := NewLimiter(cfg.DelayMin, cfg.DelayMax)
		breaker := NewBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.RecoveryTimeout)

		fopts := append([]FetcherOption{WithFetcherLogger(logger)}, opts...)
		if robots != nil {
			fopts = append(fopts, WithRobots(robots))
		}
		fetcher := NewFetcher(src.Key, limiter, breaker, cfg.RequestTimeout, cfg.MaxRetries, cfg.RetryBase, fopts...)

		p := build(baseProfile{source: src.Key, name: src.Name, baseURL: src.BaseURL})
		scrapers = append(scrapers, newSiteScraper(p, fetcher, logger))
	}
	return scrapers, nil
}

// baseProfile carries the configurable identity of a source into the static
// per-retailer layout.
type baseProfile struct {
	source  string
	name    string
	baseURL string
}
