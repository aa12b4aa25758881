package search

import (
	"context"
	"strings"
	"testing"

	"google.golang.org/api/customsearch/v1"
)

func sampleItems() []*customsearch.Result {
	return []*customsearch.Result{
		{Title: "Kolar APMC rates", Snippet: "Tomato ₹1200\nper quintal", Link: "https://example.com/a"},
		{Title: "", Snippet: "", Link: "https://example.com/b"},
	}
}

func TestFormatMarketPrices(t *testing.T) {
	res := formatMarketPrices(sampleItems(), "tomato", "Kolar")
	if res.Status != "success" {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if !strings.Contains(res.Content, "Market Prices for tomato in Kolar") {
		t.Errorf("missing header: %q", res.Content)
	}
	// Newlines inside snippets must be flattened to keep blocks intact.
	if !strings.Contains(res.Content, "Tomato ₹1200 per quintal") {
		t.Errorf("snippet not flattened: %q", res.Content)
	}
	// Empty fields get placeholders.
	if !strings.Contains(res.Content, "No Title") || !strings.Contains(res.Content, "No details available.") {
		t.Errorf("missing placeholders: %q", res.Content)
	}
	if strings.Count(res.Content, "---") != 2 {
		t.Errorf("expected one block per result, got: %q", res.Content)
	}
}

func TestFormatMarketPricesNoResults(t *testing.T) {
	res := formatMarketPrices(nil, "tomato", "Kolar")
	if res.Status != "error" {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if !strings.Contains(res.Message, "'tomato'") || !strings.Contains(res.Message, "'Kolar'") {
		t.Errorf("Message = %q, want crop and location named", res.Message)
	}
	if res.Content != "" {
		t.Errorf("error result must not carry content: %q", res.Content)
	}
}

func TestFormatGovernmentSchemes(t *testing.T) {
	res := formatGovernmentSchemes(sampleItems(), "drip irrigation")
	if res.Status != "success" {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if !strings.Contains(res.Content, "Government Schemes for drip irrigation") {
		t.Errorf("missing header: %q", res.Content)
	}
	if !strings.Contains(res.Content, "**Apply:** https://example.com/a") {
		t.Errorf("missing apply link: %q", res.Content)
	}
}

func TestFormatWeather(t *testing.T) {
	res := formatWeather(sampleItems(), "Kolar")
	if res.Status != "success" {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if !strings.Contains(res.Content, "Recommendation") {
		t.Errorf("missing recommendation footer: %q", res.Content)
	}

	if res := formatWeather(nil, "Kolar"); res.Status != "error" {
		t.Errorf("zero results should be an error, got %+v", res)
	}
}

func TestWeatherUnconfiguredShortCircuits(t *testing.T) {
	// No service at all: an unconfigured weather scope must fail before
	// any outbound call is attempted.
	c := &Client{weatherCX: ""}
	res := c.Weather(context.Background(), "Kolar")
	if res.Status != "error" || res.Message != "Weather service is not configured." {
		t.Errorf("got %+v, want configuration error", res)
	}
}
