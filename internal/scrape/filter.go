package scrape

import (
	"regexp"
	"strconv"
	"strings"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// boosterBoxKeywords mark a product name as a sealed booster box listing.
var boosterBoxKeywords = []string{
	"booster box",
	"booster display",
	"booster case",
	"display box",
	"sealed box",
	"box 36",
	"box 24",
}

// exclusionKeywords reject accessories, singles and graded cards regardless
// of any booster box keyword in the name. Exclusions win.
var exclusionKeywords = []string{
	"single",
	"sleeve",
	"binder",
	"playmat",
	"deck box",
	"card protector",
	"top loader",
	"graded",
	"psa",
	"cgc",
	"tin",
	"blister",
	"promo",
}

var pokemonSets = []string{
	"Paldean Fates",
	"Temporal Forces",
	"Twilight Masquerade",
	"Shrouded Fable",
	"Stellar Crown",
	"Surging Sparks",
	"Prismatic Evolutions",
	"Scarlet & Violet",
	"Obsidian Flames",
	"Paldea Evolved",
	"151",
	"Paradox Rift",
	"Crown Zenith",
	"Silver Tempest",
	"Lost Origin",
	"Astral Radiance",
	"Brilliant Stars",
	"Evolving Skies",
	"Chilling Reign",
	"Battle Styles",
	"Vivid Voltage",
	"Darkness Ablaze",
	"Rebel Clash",
	"Sword & Shield",
	"Journey Together",
}

var onePieceSets = []string{
	"Romance Dawn",
	"Paramount War",
	"Pillars of Strength",
	"Kingdoms of Intrigue",
	"Awakening of the New Era",
	"Wings of the Captain",
	"500 Years in the Future",
	"Two Legends",
	"The Four Emperors",
	"Royal Blood",
	"Memorial Collection",
}

// IsBoosterBox reports whether the product name describes a sealed booster
// box. Exclusion keywords are checked first so "booster box sleeve" and the
// like never pass.
func IsBoosterBox(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range exclusionKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range boosterBoxKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Categorize maps a product name to its TCG category.
func Categorize(name string) domain.Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "pokemon") || strings.Contains(lower, "pokémon"):
		return domain.CategoryPokemon
	case strings.Contains(lower, "one piece"):
		return domain.CategoryOnePiece
	default:
		return domain.CategoryUnknown
	}
}

// ExtractSetName returns the canonical TCG set name contained in the product
// name, or "" when no known set matches.
func ExtractSetName(name string) string {
	lower := strings.ToLower(name)
	for _, set := range pokemonSets {
		if strings.Contains(lower, strings.ToLower(set)) {
			return set
		}
	}
	for _, set := range onePieceSets {
		if strings.Contains(lower, strings.ToLower(set)) {
			return set
		}
	}
	return ""
}

var priceRe = regexp.MustCompile(`\d+\.?\d*`)

// ParsePrice extracts a price from retailer price text such as "$249.95 AUD".
// Returns nil when no number is present.
func ParsePrice(text string) *float64 {
	cleaned := strings.NewReplacer("$", "", "AUD", "", ",", "").Replace(text)
	match := priceRe.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}
