package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

const extractionSystemPrompt = `You are a JSON converter.

Your job: convert the user query about equipment test reports into one JSON object. Return ONLY the JSON object, nothing else. No explanation, no code fences, no markdown.

Template:
{
  "features": [<canonical feature names, or empty list>],
  "month": <full month name or null>,
  "year": <4-digit year or null>,
  "sprint": <sprint number or null>,
  "status": <"PASS", "FAIL" or null>,
  "format": <requested output format>
}

Known features: steering, braking, suspension, transmission, engine, hydraulics, lights.

Format detection rules:
- "summary" if the user asks for a summary, overview or analysis
- "csv" if the user asks for CSV, spreadsheet or export
- "json" if the user asks for JSON
- "markdown" if the user asks for markdown
- "count" if the user asks for a count, total or how many
- "stats" if the user asks for stats, statistics or a breakdown
- "table" otherwise

Valid output examples:
{"features": ["braking"], "month": null, "year": null, "sprint": null, "status": null, "format": "table"}
{"features": [], "month": "February", "year": 2025, "sprint": 2, "status": null, "format": "csv"}
{"features": ["steering"], "month": "March", "year": 2024, "sprint": 1, "status": "FAIL", "format": "summary"}`

// TranslateQuery asks the oracle to turn a free-form query into a
// structured filter specification. The raw text is returned as-is;
// ExtractSpec owns making sense of it.
func TranslateQuery(cfg Config, query string) (string, LLMUsage, error) {
	return callOracle(cfg, "translate", extractionSystemPrompt, query)
}

// GenerateSummary asks the oracle for a prose summary of the matched
// records. Unlike extraction there is no local fallback, so failures
// surface to the caller.
func GenerateSummary(cfg Config, records []Record) (string, error) {
	payload, err := formatJSON(records)
	if err != nil {
		return "", err
	}
	system := "You summarize equipment test records. Provide a clear, concise summary: key findings, patterns, and any issues."
	user := "Summarize these test records:\n\n" + payload
	text, _, err := callOracle(cfg, "summary", system, user)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return text, nil
}

func callOracle(cfg Config, purpose, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	switch cfg.LLMProvider {
	case "openai":
		model := cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		log.Printf("llm %s provider=openai model=%s", purpose, model)
		return callOpenAI(cfg.OpenAIAPIKey, model, systemPrompt, userPrompt)
	default:
		model := cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Printf("llm %s provider=anthropic model=%s", purpose, model)
		return callAnthropic(cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
	}
}

// --- Anthropic ---

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", LLMUsage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", LLMUsage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := LLMUsage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
