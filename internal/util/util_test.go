package util

import (
	"testing"

	"github.com/pauljones0/price-tracker-bot/internal/models"
)

func TestIsProductURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"amazon with www", "https://www.amazon.in/dp/B0ABC1234", true},
		{"amazon without www", "https://amazon.in/dp/B0ABC1234", true},
		{"flipkart", "https://www.flipkart.com/phone/p/itm123", true},
		{"flipkart in sentence", "check this https://flipkart.com/item/p/x out", true},
		{"amazon.com not supported", "https://www.amazon.com/dp/B0ABC1234", false},
		{"plain text", "hello bot", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProductURL(tt.text); got != tt.want {
				t.Errorf("IsProductURL(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractProductURL(t *testing.T) {
	text := "please track https://www.flipkart.com/x-phone/p/itm9 for me"
	got := ExtractProductURL(text)
	want := "https://www.flipkart.com/x-phone/p/itm9"
	if got != want {
		t.Errorf("ExtractProductURL() = %q, want %q", got, want)
	}

	if got := ExtractProductURL("no links here"); got != "" {
		t.Errorf("ExtractProductURL() = %q, want empty", got)
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want models.Platform
	}{
		{"https://www.amazon.in/dp/B0ABC1234", models.PlatformAmazon},
		{"https://flipkart.com/x/p/itm1", models.PlatformFlipkart},
		{"https://dl.flipkart.com/x/p/itm1", models.PlatformFlipkart},
		{"https://example.com/product", models.PlatformUnknown},
	}

	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeProductURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips www and tracking params",
			"http://www.flipkart.com/x-phone/p/itm9?pid=MOB123&lid=LST456&utm_source=share",
			"https://flipkart.com/x-phone/p/itm9",
		},
		{
			"strips trailing slash",
			"https://amazon.in/dp/B0ABC1234/",
			"https://amazon.in/dp/B0ABC1234",
		},
		{
			"keeps meaningful params",
			"https://amazon.in/dp/B0ABC1234?th=1",
			"https://amazon.in/dp/B0ABC1234?th=1",
		},
		{
			"unsupported host untouched",
			"https://example.com/product/?utm_source=x",
			"https://example.com/product/?utm_source=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeProductURL(tt.in)
			if err != nil {
				t.Fatalf("NormalizeProductURL(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeProductURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://flipkart.com/apple-iphone-15-blue-128-gb/p/itm1", "Apple Iphone 15 Blue 128 Gb"},
		{"https://amazon.in/dp/B0ABC1234", ""},
		{"https://flipkart.com/tv/p/itm2", ""},
	}

	for _, tt := range tests {
		if got := TitleFromSlug(tt.url); got != tt.want {
			t.Errorf("TitleFromSlug(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
