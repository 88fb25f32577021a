package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

// SelectorConfig drives extraction for both storefronts. Selector drift is the
// single most common reason this bot breaks, so everything lives in data: the
// embedded selectors.json is the preferred source, with file and hardcoded
// fallbacks behind it.
type SelectorConfig struct {
	Amazon   PlatformSelectors `json:"amazon"`
	Flipkart PlatformSelectors `json:"flipkart"`
}

type PlatformSelectors struct {
	// TitleLocators are tried in order; the first whose normalized text is
	// longer than MinTitleLength and not a placeholder wins.
	TitleLocators []string `json:"title_locators"`

	// Placeholders are texts that look like a title but aren't one (the
	// storefront's own brand name, error banners).
	Placeholders []string `json:"placeholders"`

	// PriceLocators are class-scoped price blocks, consulted after the raw
	// currency-symbol and JSON-field scans.
	PriceLocators []string `json:"price_locators"`

	MinTitleLength int `json:"min_title_length"`
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// This supports loading from embedded data via go:embed.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}

	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Amazon: PlatformSelectors{
			TitleLocators: []string{
				"#productTitle",
				"#title span",
				"h1.a-size-large span",
				"h1",
			},
			Placeholders:   []string{"Amazon", "Amazon.in", "Amazon India"},
			PriceLocators:  []string{".a-price .a-price-whole", "#priceblock_ourprice", "#priceblock_dealprice"},
			MinTitleLength: 5,
		},
		Flipkart: PlatformSelectors{
			TitleLocators: []string{
				"span.B_NuCI",
				"span.VU-ZEz",
				"h1._6EBuvT span",
				"h1",
			},
			Placeholders:   []string{"Flipkart", "Flipkart.com"},
			PriceLocators:  []string{"div._30jeq3", "div.Nx9bqj", "div._16Jk6d"},
			MinTitleLength: 5,
		},
	}
}
