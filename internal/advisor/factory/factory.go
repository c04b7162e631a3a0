package factory

import (
	"fmt"

	"github.com/quantfold/odte/internal/advisor"
	"github.com/quantfold/odte/internal/advisor/claude"
	"github.com/quantfold/odte/internal/advisor/openai"
	"github.com/quantfold/odte/internal/config"
)

// New creates an advisor provider based on configuration.
func New(cfg config.AdvisorConfig) (advisor.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unknown advisor provider: %s", cfg.Provider)
	}
}
