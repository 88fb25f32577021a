package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pauljones0/price-tracker-bot/internal/models"
	"github.com/pauljones0/price-tracker-bot/internal/price"
)

// maxPriceCandidates bounds the candidate list so a pathological page can't
// make the scan unbounded.
const maxPriceCandidates = 10

const defaultMinTitleLength = 5

// pricePatterns are tried in order over the raw markup: currency-symbol
// prefixed amounts, Rs/INR prefixed amounts, then JSON-embedded price fields.
// Class-scoped price blocks from the selector config come after these.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`₹\s*([0-9][0-9,]*)`),
	regexp.MustCompile(`(?i)(?:Rs\.?|INR)\s{0,3}([0-9][0-9,]*)`),
	regexp.MustCompile(`"(?:price|sellingPrice|finalPrice|dealPrice)"\s*:\s*"?₹?\s*([0-9][0-9,]*)`),
}

// Extractor mines a (title, price) pair out of raw product-page markup.
// It is a pure function over its input: no fetching, no errors, always a
// snapshot, degrading to fallback values on garbage input.
type Extractor struct {
	selectors SelectorConfig
}

func NewExtractor(selectors SelectorConfig) *Extractor {
	return &Extractor{selectors: selectors}
}

// FallbackTitle is the placeholder used when no title locator matched.
func FallbackTitle(platform models.Platform) string {
	switch platform {
	case models.PlatformAmazon:
		return "Amazon Product"
	case models.PlatformFlipkart:
		return "Flipkart Product"
	default:
		return "Unknown Product"
	}
}

// Extract produces a best-effort snapshot from page markup. Success is
// deliberately lenient: a usable title OR a surviving price candidate counts.
// Partial results (title only, price unknown) are surfaced as success so the
// caller can distinguish "partial data" from "extraction failed".
func (e *Extractor) Extract(platform models.Platform, html, sourceURL string) models.ProductSnapshot {
	snap := models.ProductSnapshot{
		SourceURL:  sourceURL,
		Platform:   platform,
		CapturedAt: time.Now(),
	}

	sel := e.platformSelectors(platform)

	// A broken document is not fatal; the regex scan still runs on raw markup.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	title, titleFound := extractTitle(doc, sel)
	snap.Price = selectPrice(collectPriceCandidates(html, doc, sel))
	snap.Success = titleFound || snap.Price != models.PriceUnknown

	if !titleFound {
		title = FallbackTitle(platform)
	}
	snap.Title = title
	return snap
}

func (e *Extractor) platformSelectors(platform models.Platform) PlatformSelectors {
	switch platform {
	case models.PlatformAmazon:
		return e.selectors.Amazon
	case models.PlatformFlipkart:
		return e.selectors.Flipkart
	default:
		return PlatformSelectors{}
	}
}

// extractTitle walks the ordered locator list and returns the first candidate
// that is long enough and not a known placeholder.
func extractTitle(doc *goquery.Document, sel PlatformSelectors) (string, bool) {
	if doc == nil {
		return "", false
	}

	minLen := sel.MinTitleLength
	if minLen <= 0 {
		minLen = defaultMinTitleLength
	}

	for _, locator := range sel.TitleLocators {
		selection := doc.Find(locator).First()
		if selection.Length() == 0 {
			continue
		}
		// goquery's Text() already strips tags; collapse the whitespace.
		text := strings.Join(strings.Fields(selection.Text()), " ")
		if len(text) <= minLen || isPlaceholder(text, sel.Placeholders) {
			continue
		}
		return text, true
	}
	return "", false
}

func isPlaceholder(text string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.EqualFold(text, p) {
			return true
		}
	}
	return false
}

// collectPriceCandidates gathers raw price texts in pattern order, capped at
// maxPriceCandidates. Document order within each pattern is preserved.
func collectPriceCandidates(html string, doc *goquery.Document, sel PlatformSelectors) []string {
	candidates := make([]string, 0, maxPriceCandidates)

	for _, pattern := range pricePatterns {
		for _, match := range pattern.FindAllStringSubmatch(html, maxPriceCandidates) {
			if len(candidates) >= maxPriceCandidates {
				return candidates
			}
			candidates = append(candidates, match[1])
		}
	}

	if doc != nil {
		for _, locator := range sel.PriceLocators {
			if len(candidates) >= maxPriceCandidates {
				break
			}
			doc.Find(locator).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if len(candidates) >= maxPriceCandidates {
					return false
				}
				candidates = append(candidates, s.Text())
				return true
			})
		}
	}

	return candidates
}

// selectPrice returns the first surviving candidate. First-match-wins is the
// defined policy: no min/max/mode selection, for compatibility with every
// prior revision of this bot. A page listing MRP before the sale price will
// report the MRP; that trade-off is accepted.
func selectPrice(candidates []string) int {
	for _, candidate := range candidates {
		if v := price.Normalize(candidate); v > 0 {
			return v
		}
	}
	return models.PriceUnknown
}
