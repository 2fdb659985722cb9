package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"menuengine/internal/config"
	"menuengine/internal/model"
	"net/http"
	"strings"
	"time"
)

const maxGeminiResponseBytes = 1 << 20

// GeminiClient asks Gemini for an estimated menu in JSON mode and decodes
// the answer into menu categories
type GeminiClient struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeminiClient creates a client for cfg
func NewGeminiClient(cfg *config.AIConfig) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Enabled reports whether an API key is configured
func (g *GeminiClient) Enabled() bool {
	return g != nil && g.config.IsEnabled()
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateMenu sends prompt and decodes the first candidate as a menu.
// Items whose price cannot be read are dropped; categories may come back
// empty when the model declined.
func (g *GeminiClient) GenerateMenu(ctx context.Context, prompt string) ([]model.MenuCategory, error) {
	text, err := g.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return decodeGeneratedMenu(text)
}

func (g *GeminiClient) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.Temperature = 0.2

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.ModelEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxGeminiResponseBytes))
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGeminiResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	for _, c := range out.Candidates {
		if len(c.Content.Parts) > 0 {
			return c.Content.Parts[0].Text, nil
		}
	}
	return "", errors.New("gemini: empty response")
}

type generatedMenu struct {
	Categories []struct {
		Name  string `json:"name"`
		Items []struct {
			Name        string      `json:"name"`
			Description string      `json:"description"`
			Price       interface{} `json:"price"`
		} `json:"items"`
	} `json:"categories"`
}

// decodeGeneratedMenu reads the model's JSON answer, tolerating a markdown
// code fence around it
func decodeGeneratedMenu(text string) ([]model.MenuCategory, error) {
	var gen generatedMenu
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &gen); err != nil {
		return nil, fmt.Errorf("decode model menu: %w", err)
	}

	categories := make([]model.MenuCategory, 0, len(gen.Categories))
	for _, c := range gen.Categories {
		cat := model.MenuCategory{Name: c.Name}
		for _, it := range c.Items {
			price, ok := parsePrice(it.Price)
			if !ok {
				continue
			}
			cat.Items = append(cat.Items, model.MenuItem{Name: it.Name, Description: it.Description, Price: price})
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
