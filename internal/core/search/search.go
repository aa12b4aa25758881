// Package search wraps the Google Custom Search JSON API behind the
// three scoped lookups the conversational agent exposes as tools:
// market prices, government schemes, and weather forecasts.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const callTimeout = 15 * time.Second

// Result is the typed outcome of one tool invocation. Exactly one of
// Content or Message is set: Content carries the formatted blocks on
// success, Message a human-readable failure reason.
type Result struct {
	Status  string `json:"status"` // "success" or "error"
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

func success(content string) Result {
	return Result{Status: "success", Content: content}
}

func failure(format string, args ...any) Result {
	return Result{Status: "error", Message: fmt.Sprintf(format, args...)}
}

// Client issues scoped Custom Search queries. Engine IDs select the
// restricted search scope per concern; an empty WeatherCX disables the
// weather lookup without touching the other two.
type Client struct {
	svc            *customsearch.Service
	marketPricesCX string
	govSchemesCX   string
	weatherCX      string
}

func NewClient(ctx context.Context, apiKey, marketPricesCX, govSchemesCX, weatherCX string) (*Client, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("custom search service: %w", err)
	}
	return &Client{
		svc:            svc,
		marketPricesCX: marketPricesCX,
		govSchemesCX:   govSchemesCX,
		weatherCX:      weatherCX,
	}, nil
}

// MarketPrices looks up current mandi prices for a crop near a location.
func (c *Client) MarketPrices(ctx context.Context, crop, location string) Result {
	slog.Info("fetching market prices", "crop", crop, "location", location)

	query := fmt.Sprintf("%q mandi price in %q", crop, location)
	items, err := c.list(ctx, c.marketPricesCX, query, 3)
	if err != nil {
		return failure("Failed to fetch market prices: %v", err)
	}
	return formatMarketPrices(items, crop, location)
}

// GovernmentSchemes finds Indian government schemes and subsidies for a
// farming topic.
func (c *Client) GovernmentSchemes(ctx context.Context, topic string) Result {
	slog.Info("fetching government schemes", "topic", topic)

	query := fmt.Sprintf("government schemes and subsidies for %q for farmers in India", topic)
	items, err := c.list(ctx, c.govSchemesCX, query, 3)
	if err != nil {
		return failure("Failed to fetch schemes: %v", err)
	}
	return formatGovernmentSchemes(items, topic)
}

// Weather fetches a forecast for a location. The weather scope is the
// one engine ID allowed to be unconfigured; in that case the lookup
// reports a configuration error without calling out.
func (c *Client) Weather(ctx context.Context, location string) Result {
	if c.weatherCX == "" {
		return failure("Weather service is not configured.")
	}
	slog.Info("fetching weather advisory", "location", location)

	query := "weather forecast " + location
	items, err := c.list(ctx, c.weatherCX, query, 2)
	if err != nil {
		return failure("Failed to fetch weather data: %v", err)
	}
	return formatWeather(items, location)
}

func formatMarketPrices(items []*customsearch.Result, crop, location string) Result {
	if len(items) == 0 {
		return failure("No live market prices found for '%s' in '%s'.", crop, location)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Market Prices for %s in %s**\n\n", crop, location)
	for _, item := range items {
		fmt.Fprintf(&b, "**Source:** %s\n**Details:** %s\n**Link:** %s\n---\n",
			title(item), snippet(item), item.Link)
	}
	return success(b.String())
}

func formatGovernmentSchemes(items []*customsearch.Result, topic string) Result {
	if len(items) == 0 {
		return failure("No government schemes found for '%s'.", topic)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🏛️ **Government Schemes for %s**\n\n", topic)
	for _, item := range items {
		fmt.Fprintf(&b, "**Scheme:** %s\n**Details:** %s\n**Apply:** %s\n---\n",
			title(item), snippet(item), item.Link)
	}
	return success(b.String())
}

func formatWeather(items []*customsearch.Result, location string) Result {
	if len(items) == 0 {
		return failure("Could not find any reliable weather forecasts for '%s'.", location)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🌤️ **Weather Forecast for %s (from web search)**\n\n", location)
	for _, item := range items {
		fmt.Fprintf(&b, "**Source:** %s\n**Forecast Snippet:** %s\n**More Info:** %s\n---\n",
			title(item), snippet(item), item.Link)
	}
	b.WriteString("\n**Recommendation:** Please check the links for detailed forecasts.")
	return success(b.String())
}

func (c *Client) list(ctx context.Context, cx, query string, num int64) ([]*customsearch.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.svc.Cse.List().Cx(cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func title(item *customsearch.Result) string {
	if item.Title == "" {
		return "No Title"
	}
	return item.Title
}

func snippet(item *customsearch.Result) string {
	s := strings.TrimSpace(strings.ReplaceAll(item.Snippet, "\n", " "))
	if s == "" {
		return "No details available."
	}
	return s
}
