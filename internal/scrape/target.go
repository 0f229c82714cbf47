package scrape

func targetProfile(p baseProfile) profile {
	return profile{
		source:      p.source,
		name:        p.name,
		baseURL:     p.baseURL,
		searchPaths: defaultSearchPaths(""),
		cards: []Matcher{
			ByClass("product-grid-item"),
			ByClass("product-card"),
			ByClass("product-tile"),
			ByAttr("data-product-id"),
		},
		cardsLoose: []Matcher{
			ByClass("product"),
			ByClass("item"),
		},
		title: []Matcher{
			ByClass("product-title"),
			ByClass("product-name"),
			ByTag("h3"),
			ByTag("h2"),
		},
		link: []Matcher{
			ByTagAttrContains("a", "href", "/p/"),
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
				Any(ByClass("availability"), ByClass("stock-status"), ByAttr("data-available")),
				Any(All(ByTag("button"), ByClass("add-to-cart")), ByAttr("data-add-to-cart")),
			)
		},
	}
}
