package scrape

import "strings"

// Big W labels availability positively, so only an explicit "in stock" counts.
func availabilityInStock(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "in stock") && !strings.Contains(lower, "out of stock")
}

func bigWProfile(p baseProfile) profile {
	return profile{
		source:      p.source,
		name:        p.name,
		baseURL:     p.baseURL,
		searchPaths: defaultSearchPaths(""),
		cards: []Matcher{
			All(ByTag("div"), ByClass("product-item")),
			All(ByTag("article"), ByClass("product")),
			ByClass("product-list-item"),
			ByClass("product-card"),
		},
		title: []Matcher{
			All(ByTag("h3"), ByClass("product-name")),
			ByClass("product-title"),
			All(ByTag("a"), ByAttr("href")),
		},
		link: []Matcher{
			All(ByTag("a"), ByClass("product-link")),
			ByTagAttrContains("a", "href", "/product/"),
			ByTag("a"),
		},
		price: []Matcher{
			All(ByTag("span"), ByClass("price")),
			ByClass("product-price"),
		},
		image: []Matcher{
			All(ByTag("img"), ByClass("product-image")),
			ByTag("img"),
		},
		inStock: func(card *Element) bool {
			if el := card.FindFirst(All(ByTag("span"), ByClass("availability"))); el != nil {
				return availabilityInStock(el.Text())
			}
			btn := card.FindFirst(All(ByTag("button"), ByClass("add-to-cart")))
			return btn != nil && !btn.HasAttr("disabled")
		},
	}
}
