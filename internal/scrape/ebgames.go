package scrape

func ebGamesProfile(p baseProfile) profile {
	return profile{
		source:      p.source,
		name:        p.name,
		baseURL:     p.baseURL,
		searchPaths: defaultSearchPaths(""),
		cards: []Matcher{
			ByClass("product-card"),
			ByClass("product-tile"),
			ByClass("search-result-item"),
		},
		cardsLoose: []Matcher{
			ByAttr("data-product"),
			ByClass("product"),
		},
		title: []Matcher{
			ByClass("product-title"),
			ByClass("product-name"),
			ByTag("h3"),
			ByTag("h2"),
			ByAttr("data-name"),
		},
		link: []Matcher{
			All(ByTag("a"), ByAttr("href")),
		},
		price: []Matcher{
			ByClass("price"),
			ByClass("product-price"),
			ByAttr("data-price"),
		},
		image: []Matcher{
			All(ByTag("img"), ByAttr("src")),
			All(ByTag("img"), ByAttr("data-src")),
		},
		inStock: func(card *Element) bool {
			return stockFromSignals(card,
				Any(ByClass("stock-status"), ByClass("availability"), ByAttr("data-available")),
				Any(All(ByTag("button"), ByClass("add-to-cart")), ByClass("btn-add-to-cart")),
			)
		},
	}
}
