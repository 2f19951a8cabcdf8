package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.openai.com/v1"

// Client drives the enrichment model through the chat completions API in
// strict JSON mode. Malformed output is retried once; a second failure is
// absorbed by falling back to the previous note (or a minimal one built
// from the raw text), never surfaced to the caller.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

type Config struct {
	APIKey   string
	Model    string
	Endpoint string // defaults to the OpenAI API
	HTTP     *http.Client
}

func New(cfg Config) *Client {
	c := &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   cfg.Endpoint,
		httpClient: cfg.HTTP,
	}
	if c.model == "" {
		c.model = "gpt-4o-mini"
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return c
}

// FirstPass enriches a raw submission into a structured note.
func (c *Client) FirstPass(ctx context.Context, raw, author string) (Note, error) {
	return c.enrich(ctx, raw, "", author, nil)
}

// Refine folds the submitter's clarification transcript into the previous note.
func (c *Client) Refine(ctx context.Context, raw, answers, author string, previous *Note) (Note, error) {
	return c.enrich(ctx, raw, answers, author, previous)
}

func (c *Client) enrich(ctx context.Context, raw, answers, author string, previous *Note) (Note, error) {
	var prompt string
	if answers != "" {
		previousJSON := "{}"
		if previous != nil {
			if b, err := json.MarshalIndent(previous, "", "  "); err == nil {
				previousJSON = string(b)
			}
		}
		prompt = refinePrompt(raw, answers, author, previousJSON)
	} else {
		prompt = firstPassPrompt(raw, author)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		content, err := c.callOnce(ctx, prompt)
		if err != nil {
			return Note{}, err
		}
		var note Note
		if err := json.Unmarshal([]byte(stripFences(content)), &note); err != nil {
			log.Printf("enrich: JSON parse failed (try %d): %v", attempt, err)
			continue
		}
		return Normalize(note, raw), nil
	}

	// Both attempts produced garbage; keep the prior draft if we have one.
	if previous != nil {
		return Normalize(*previous, raw), nil
	}
	return Normalize(Note{}, raw), nil
}

func (c *Client) callOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":           c.model,
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "system", "content": systemPreface},
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/chat/completions", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enrichment API error: %s", string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from enrichment API")
	}
	return result.Choices[0].Message.Content, nil
}

var fenceRe = regexp.MustCompile("(?i)```(?:json)?\\s*|```")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
