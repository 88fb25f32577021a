package util

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

var (
	amazonURLRegex   = regexp.MustCompile(`(?i)https?://(www\.)?amazon\.in/\S+`)
	flipkartURLRegex = regexp.MustCompile(`(?i)https?://(www\.)?flipkart\.com/\S+`)
)

// IsProductURL reports whether the message text contains a supported
// storefront product link.
func IsProductURL(text string) bool {
	return amazonURLRegex.MatchString(text) || flipkartURLRegex.MatchString(text)
}

// ExtractProductURL returns the first supported product link in the text,
// or "" when none is present.
func ExtractProductURL(text string) string {
	if m := amazonURLRegex.FindString(text); m != "" {
		return m
	}
	return flipkartURLRegex.FindString(text)
}

// DetectPlatform classifies a product URL by hostname.
func DetectPlatform(rawURL string) models.Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return models.PlatformUnknown
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch {
	case host == "amazon.in" || strings.HasSuffix(host, ".amazon.in"):
		return models.PlatformAmazon
	case host == "flipkart.com" || strings.HasSuffix(host, ".flipkart.com"):
		return models.PlatformFlipkart
	default:
		return models.PlatformUnknown
	}
}

// trackingParams are query parameters that vary between shares of the same
// product page. Stripping them keeps the (user, URL) dedupe key stable.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"ref", "ref_", "tag", "pf_rd_r", "pf_rd_p", "pid", "lid", "marketplace",
	"affid", "cmpid",
}

// NormalizeProductURL canonicalizes a supported product URL: forces https,
// drops the www prefix, strips share/tracking query parameters and any
// trailing slash. Unsupported hosts are returned unchanged.
func NormalizeProductURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}
	if DetectPlatform(rawURL) == models.PlatformUnknown {
		return rawURL, nil
	}

	parsed.Scheme = "https"
	parsed.Host = strings.TrimPrefix(parsed.Host, "www.")
	parsed.Fragment = ""
	if len(parsed.Path) > 1 && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = parsed.Path[:len(parsed.Path)-1]
		parsed.RawPath = ""
	}
	queryParams := parsed.Query()
	for _, param := range trackingParams {
		queryParams.Del(param)
	}
	parsed.RawQuery = queryParams.Encode()
	return parsed.String(), nil
}

// TitleFromSlug recovers a human-readable product name from the URL path
// slug, e.g. "apple-iphone-15-blue" -> "Apple Iphone 15 Blue". Used as the
// display title when page extraction cannot do better. Returns "" when the
// slug is too short to be meaningful.
func TitleFromSlug(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	slug := segments[0]
	// Amazon paths lead with the slug too, but skip obvious non-slug segments.
	if slug == "dp" || slug == "gp" || slug == "p" {
		return ""
	}
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.TrimSpace(strings.Join(words, " "))
	if len(name) <= 5 {
		return ""
	}
	return name
}
