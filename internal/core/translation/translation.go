// Package translation wraps the Google Cloud Translation v2 API.
// Unlike the audio clients, failures here propagate: by the time a turn
// reaches translation an answer already exists, and serving it in the
// wrong language is worse than failing the turn.
package translation

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

type Client struct {
	client *translate.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("translate client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Translate renders text into the target ISO-639-1 language.
func (c *Client) Translate(ctx context.Context, text, targetCode string) (string, error) {
	target, err := language.Parse(targetCode)
	if err != nil {
		return "", fmt.Errorf("bad target language %q: %w", targetCode, err)
	}

	translations, err := c.client.Translate(ctx, []string{text}, target, &translate.Options{
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("translate returned no result for target %q", targetCode)
	}
	return translations[0].Text, nil
}
