package scrape

func kmartProfile(p baseProfile) profile {
	return profile{
		source:      p.source,
		name:        p.name,
		baseURL:     p.baseURL,
		searchPaths: defaultSearchPaths(""),
		cards: []Matcher{
			ByClass("product-card"),
			ByClass("product-tile"),
			ByAttr("data-product-id"),
			ByClass("ProductCard"),
		},
		cardsLoose: []Matcher{
			ByClass("product"),
			ByClass("item"),
			ByClass("search-result"),
		},
		title: []Matcher{
			ByClass("product-title"),
			ByClass("ProductCard-title"),
			ByTag("h3"),
			ByTag("h2"),
			ByAttr("data-name"),
		},
		link: []Matcher{
			All(ByTag("a"), ByAttr("href")),
		},
		price: []Matcher{
			ByClass("price"),
			ByClass("ProductCard-price"),
			ByAttr("data-price"),
			ByClass("amount"),
		},
		image: []Matcher{
			All(ByTag("img"), ByAttr("src")),
			All(ByTag("img"), ByAttr("data-src")),
		},
		inStock: func(card *Element) bool {
			if card.FindFirst(Any(ByClass("out-of-stock"), ByClass("sold-out"), ByClass("unavailable"))) != nil {
				return false
			}
			btn := card.FindFirst(Any(
				All(ByTag("button"), ByClass("add-to-cart")),
				ByAttr("data-add-to-cart"),
			))
			return btn != nil && !btn.HasAttr("disabled")
		},
	}
}
