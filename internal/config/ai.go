package config

import "os"

// AIConfig holds the Gemini settings used by AI menu synthesis
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`

	// TemplateFallback synthesizes from the template catalogue when Gemini is
	// disabled or its answer cannot be used
	TemplateFallback bool `json:"templateFallback"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		BaseURL:          getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Model:            getEnv("GEMINI_MODEL_MENU", "gemini-2.0-flash"),
		TimeoutMS:        7000,
		TemplateFallback: getEnvBool("AI_TEMPLATE_FALLBACK", true),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for the configured model
func (c *AIConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}
