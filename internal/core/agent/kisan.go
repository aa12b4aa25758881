// Package agent wraps the hosted Gemini model as the two agents the
// system exposes: the tool-calling conversational expert and the
// stateless visual diagnostician.
//
// The expensive binding (the genai client and the tool declarations) is
// built once at startup and held read-only. Per-call identity, location
// and language arrive as explicit arguments, so concurrent requests
// never share mutable instruction state.
package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/core/search"
	"github.com/Adithyan773/kisan-mitra/internal/models"
)

// Tool names declared to the model.
const (
	toolMarketPrices = "get_market_prices"
	toolGovSchemes   = "get_government_schemes"
	toolWeather      = "get_weather_advisory"
)

// maxToolRounds bounds the function-call loop; the model gets this many
// chances to call tools before it must answer with what it has.
const maxToolRounds = 4

type Agent struct {
	client    *genai.Client
	modelName string
	tools     []*genai.Tool
	search    *search.Client
}

func New(ctx context.Context, apiKey, modelName string, searchClient *search.Client) (*Agent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Agent{
		client:    client,
		modelName: modelName,
		tools:     toolDeclarations(),
		search:    searchClient,
	}, nil
}

func (a *Agent) Close() error {
	return a.client.Close()
}

func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        toolMarketPrices,
				Description: "Gets current market (mandi) prices for a specific crop in a given location.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"crop":     {Type: genai.TypeString, Description: "The crop to look up, e.g. tomato"},
						"location": {Type: genai.TypeString, Description: "The market location, e.g. Kolar"},
					},
					Required: []string{"crop", "location"},
				},
			},
			{
				Name:        toolGovSchemes,
				Description: "Finds relevant Indian government schemes and subsidies for farmers on a topic.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"topic": {Type: genai.TypeString, Description: "The farming topic, e.g. drip irrigation"},
					},
					Required: []string{"topic"},
				},
			},
			{
				Name:        toolWeather,
				Description: "Gets a weather forecast for a specific location.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"location": {Type: genai.TypeString, Description: "The location to forecast"},
					},
					Required: []string{"location"},
				},
			},
		},
	}}
}

// Respond answers a farmer's query in the requested language, running
// the tool loop as the model asks for it. Any failure returns a fixed
// apology instead of propagating.
func (a *Agent) Respond(ctx context.Context, prompt string, history []models.ChatMessage, qc core.QueryContext) string {
	slog.Info("processing query", "user_id", qc.UserID, "language", qc.Language)

	model := a.client.GenerativeModel(a.modelName)
	model.SetTemperature(0.7)
	model.Tools = a.tools
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(renderKisanInstructions(qc.UserName, qc.Location, qc.Language, time.Now()))},
	}

	cs := model.StartChat()
	cs.History = historyToContent(history)

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		slog.Error("agent call failed", "error", err)
		return apologyConversational
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result := a.dispatchTool(ctx, call, qc)
			parts = append(parts, genai.FunctionResponse{
				Name:     call.Name,
				Response: resultMap(result),
			})
		}
		resp, err = cs.SendMessage(ctx, parts...)
		if err != nil {
			slog.Error("agent tool round failed", "error", err)
			return apologyConversational
		}
	}

	text := responseText(resp)
	if text == "" {
		return apologyConversational
	}
	return text
}

// AnalyzeVisuals runs the stateless diagnostic agent over one image.
func (a *Agent) AnalyzeVisuals(ctx context.Context, prompt string, image []byte, mimeType string, qc core.QueryContext) string {
	slog.Info("processing image analysis", "user_id", qc.UserID, "mime", mimeType, "bytes", len(image))

	model := a.client.GenerativeModel(a.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(renderVisualInstructions(qc.Location, qc.Language))},
	}

	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" {
		format = "jpeg"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, image))
	if err != nil {
		slog.Error("visual analysis failed", "error", err)
		return apologyVisual
	}

	text := responseText(resp)
	if text == "" {
		return apologyVisual
	}
	return text
}

func (a *Agent) dispatchTool(ctx context.Context, call genai.FunctionCall, qc core.QueryContext) search.Result {
	slog.Info("agent tool call", "tool", call.Name, "args", call.Args)

	switch call.Name {
	case toolMarketPrices:
		location := stringArg(call.Args, "location")
		if location == "" {
			location = qc.Location
		}
		return a.search.MarketPrices(ctx, stringArg(call.Args, "crop"), location)
	case toolGovSchemes:
		return a.search.GovernmentSchemes(ctx, stringArg(call.Args, "topic"))
	case toolWeather:
		location := stringArg(call.Args, "location")
		if location == "" {
			location = qc.Location
		}
		return a.search.Weather(ctx, location)
	default:
		return search.Result{Status: "error", Message: "Unknown tool: " + call.Name}
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func resultMap(r search.Result) map[string]any {
	m := map[string]any{"status": r.Status}
	if r.Content != "" {
		m["content"] = r.Content
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return m
}

// historyToContent maps stored chat turns to the model's content format.
func historyToContent(history []models.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0].FunctionCalls()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
