package scrape

func jbHiFiProfile(p baseProfile) profile {
	return profile{
		source:      p.source,
		name:        p.name,
		baseURL:     p.baseURL,
		searchPaths: defaultSearchPaths("&category=games"),
		cards: []Matcher{
			ByClass("product-tile"),
			ByClass("product-card"),
			ByClass("search-result-product"),
			ByAttr("data-product-id"),
		},
		cardsLoose: []Matcher{
			ByClass("product"),
			ByClass("item"),
		},
		title: []Matcher{
			ByClass("product-title"),
			ByClass("product-tile__title"),
			ByTag("h3"),
			ByTag("h2"),
			ByAttr("data-product-name"),
		},
		link: []Matcher{
			All(ByTag("a"), ByClass("product-tile__link")),
			All(ByTag("a"), ByAttr("href")),
		},
		price: []Matcher{
			ByClass("product-tile__price"),
			ByClass("price"),
			ByAttr("data-price"),
			ByClass("amount"),
		},
		image: []Matcher{
			All(ByTag("img"), ByAttr("src")),
			All(ByTag("img"), ByAttr("data-src")),
			All(ByTag("img"), ByAttr("data-lazy")),
		},
		inStock: func(card *Element) bool {
			if card.FindFirst(Any(ByClass("out-of-stock"), ByClass("sold-out"), ByClass("unavailable"))) != nil {
				return false
			}
			btn := card.FindFirst(Any(
				All(ByTag("button"), ByClass("add-to-cart")),
				ByClass("product-tile__add-to-cart"),
				ByAttr("data-add-to-cart"),
			))
			if btn != nil {
				return !btn.HasAttr("disabled")
			}
			return false
		},
	}
}
