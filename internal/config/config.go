package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantfold/odte/internal/alert"
	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/regime"
	"github.com/spf13/viper"
)

type Config struct {
	Underlying string                    `mapstructure:"underlying"`
	Data       DataConfig                `mapstructure:"data"`
	Risk       RiskConfig                `mapstructure:"risk"`
	Classifier ClassifierConfig          `mapstructure:"classifier"`
	Strategies StrategiesConfig          `mapstructure:"strategies"`
	Engine     EngineConfig              `mapstructure:"engine"`
	Account    AccountConfig             `mapstructure:"account"`
	Storage    StorageConfig             `mapstructure:"storage"`
	Notifiers  map[string]NotifierConfig `mapstructure:"notifiers"`
	Advisor    AdvisorConfig             `mapstructure:"advisor"`
	Alerts     []alert.Rule              `mapstructure:"alerts"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

// DataConfig points at the market data inputs for a run.
type DataConfig struct {
	SnapshotPath  string `mapstructure:"snapshot_path"`
	ChainPath     string `mapstructure:"chain_path"`
	MaxAgeMinutes int    `mapstructure:"max_age_minutes"`
}

// RiskConfig mirrors core.RiskLimits in file form.
type RiskConfig struct {
	MaxRiskPerTrade      float64 `mapstructure:"max_risk_per_trade"`
	MaxDailyLoss         float64 `mapstructure:"max_daily_loss"`
	MaxTradesPerDay      int     `mapstructure:"max_trades_per_day"`
	MaxPositionSize      int     `mapstructure:"max_position_size"`
	MaxNetDelta          float64 `mapstructure:"max_net_delta"`
	MaxNetVega           float64 `mapstructure:"max_net_vega"`
	MinProbProfit        float64 `mapstructure:"min_prob_profit"`
	MinCredit            float64 `mapstructure:"min_credit"`
	RiskFractionPerTrade float64 `mapstructure:"risk_fraction_per_trade"`
}

// ToLimits converts the file form to the immutable per-run limits.
func (r RiskConfig) ToLimits() core.RiskLimits {
	return core.RiskLimits{
		MaxRiskPerTrade:      r.MaxRiskPerTrade,
		MaxDailyLoss:         r.MaxDailyLoss,
		MaxTradesPerDay:      r.MaxTradesPerDay,
		MaxPositionSize:      r.MaxPositionSize,
		MaxNetDelta:          r.MaxNetDelta,
		MaxNetVega:           r.MaxNetVega,
		MinProbProfit:        r.MinProbProfit,
		MinCredit:            r.MinCredit,
		RiskFractionPerTrade: r.RiskFractionPerTrade,
	}
}

// ClassifierConfig holds the regime bands.
type ClassifierConfig struct {
	BearishVIX         float64 `mapstructure:"bearish_vix"`
	RSIOversold        float64 `mapstructure:"rsi_oversold"`
	RSIOverbought      float64 `mapstructure:"rsi_overbought"`
	SidewaysVIXMin     float64 `mapstructure:"sideways_vix_min"`
	SidewaysVIXMax     float64 `mapstructure:"sideways_vix_max"`
	BullishRSIMin      float64 `mapstructure:"bullish_rsi_min"`
	BullishRSIMax      float64 `mapstructure:"bullish_rsi_max"`
	BullishVIXMax      float64 `mapstructure:"bullish_vix_max"`
	VolumeConfirmation float64 `mapstructure:"volume_confirmation"`
	MaxAgeMinutes      int     `mapstructure:"max_age_minutes"`
}

// ToThresholds converts the file form to classifier thresholds, filling
// unset bands from the defaults.
func (c ClassifierConfig) ToThresholds() regime.Thresholds {
	t := regime.DefaultThresholds()
	if c.BearishVIX > 0 {
		t.BearishVIX = c.BearishVIX
	}
	if c.RSIOversold > 0 {
		t.RSIOversold = c.RSIOversold
	}
	if c.RSIOverbought > 0 {
		t.RSIOverbought = c.RSIOverbought
	}
	if c.SidewaysVIXMin > 0 {
		t.SidewaysVIXMin = c.SidewaysVIXMin
	}
	if c.SidewaysVIXMax > 0 {
		t.SidewaysVIXMax = c.SidewaysVIXMax
	}
	if c.BullishRSIMin > 0 {
		t.BullishRSIMin = c.BullishRSIMin
	}
	if c.BullishRSIMax > 0 {
		t.BullishRSIMax = c.BullishRSIMax
	}
	if c.BullishVIXMax > 0 {
		t.BullishVIXMax = c.BullishVIXMax
	}
	if c.VolumeConfirmation > 0 {
		t.VolumeConfirmation = c.VolumeConfirmation
	}
	if c.MaxAgeMinutes > 0 {
		t.MaxSnapshotAge = time.Duration(c.MaxAgeMinutes) * time.Minute
	}
	return t
}

// StrategiesConfig enables and tunes the spread builders.
type StrategiesConfig struct {
	PutCredit    PutCreditConfig    `mapstructure:"put_credit"`
	IronCondor   IronCondorConfig   `mapstructure:"iron_condor"`
	CallDiagonal CallDiagonalConfig `mapstructure:"call_diagonal"`
}

type PutCreditConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	TargetDelta    float64 `mapstructure:"target_delta"`
	DeltaTolerance float64 `mapstructure:"delta_tolerance"`
	SpreadWidth    float64 `mapstructure:"spread_width"`
	MinCredit      float64 `mapstructure:"min_credit"`
}

type IronCondorConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	TargetDelta    float64 `mapstructure:"target_delta"`
	DeltaTolerance float64 `mapstructure:"delta_tolerance"`
	WingWidth      float64 `mapstructure:"wing_width"`
	MinCredit      float64 `mapstructure:"min_credit"`
	MaxNetDelta    float64 `mapstructure:"max_net_delta"`
}

type CallDiagonalConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ShortDelta     float64 `mapstructure:"short_delta"`
	DeltaTolerance float64 `mapstructure:"delta_tolerance"`
	StrikeOffset   float64 `mapstructure:"strike_offset"`
	BackMonthDays  int     `mapstructure:"back_month_days"`
}

// EngineConfig tunes the orchestrator.
type EngineConfig struct {
	RiskFreeRate         float64 `mapstructure:"risk_free_rate"`
	MaxCandidateAttempts int     `mapstructure:"max_candidate_attempts"`
}

// AccountConfig seeds the account provider.
type AccountConfig struct {
	Equity    float64 `mapstructure:"equity"`
	StatePath string  `mapstructure:"state_path"`
}

// StorageConfig selects the trade log archive backend.
type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs", "s3" or "memory"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	// Webhook notifier fields
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	// Email notifier fields
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Params flattens the notifier settings into the generic parameter map
// the notifier Init contract expects. Zero values are omitted so each
// notifier's own required-field checks stay meaningful.
func (n NotifierConfig) Params() map[string]any {
	params := make(map[string]any)
	if n.BotToken != "" {
		params["bot_token"] = n.BotToken
	}
	if n.ChatID != "" {
		params["chat_id"] = n.ChatID
	}
	if n.URL != "" {
		params["url"] = n.URL
	}
	if len(n.Headers) > 0 {
		params["headers"] = n.Headers
	}
	if n.Host != "" {
		params["host"] = n.Host
	}
	if n.Port != 0 {
		params["port"] = n.Port
	}
	if n.Username != "" {
		params["username"] = n.Username
	}
	if n.Password != "" {
		params["password"] = n.Password
	}
	if n.From != "" {
		params["from"] = n.From
	}
	if len(n.To) > 0 {
		params["to"] = n.To
	}
	return params
}

// AdvisorConfig holds the optional LLM commentary settings. The advisor
// runs after the decision and never changes it.
type AdvisorConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LoggingConfig selects the log profile.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Underlying: "SPX",
		Data: DataConfig{
			MaxAgeMinutes: 30,
		},
		Risk: RiskConfig{
			MaxRiskPerTrade:      1000,
			MaxDailyLoss:         5000,
			MaxTradesPerDay:      5,
			MaxPositionSize:      10,
			MinProbProfit:        0.70,
			MinCredit:            0.50,
			RiskFractionPerTrade: 0.02,
		},
		Strategies: StrategiesConfig{
			PutCredit: PutCreditConfig{
				Enabled:        true,
				TargetDelta:    0.15,
				DeltaTolerance: 0.05,
				SpreadWidth:    10,
				MinCredit:      2.0,
			},
			IronCondor: IronCondorConfig{
				Enabled:        true,
				TargetDelta:    0.10,
				DeltaTolerance: 0.05,
				WingWidth:      30,
				MinCredit:      5.0,
				MaxNetDelta:    0.10,
			},
			CallDiagonal: CallDiagonalConfig{
				Enabled:        true,
				ShortDelta:     0.25,
				DeltaTolerance: 0.10,
				StrikeOffset:   20,
				BackMonthDays:  7,
			},
		},
		Engine: EngineConfig{
			RiskFreeRate:         0.05,
			MaxCandidateAttempts: 3,
		},
		Account: AccountConfig{
			Equity: 100_000,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data/tradelog",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Underlying == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("underlying symbol is required"))
	}

	if c.Risk.MaxRiskPerTrade <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_risk_per_trade must be positive, got %f", c.Risk.MaxRiskPerTrade))
	}
	if c.Risk.MaxDailyLoss <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_daily_loss must be positive, got %f", c.Risk.MaxDailyLoss))
	}
	if c.Risk.MaxTradesPerDay < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_trades_per_day must be at least 1, got %d", c.Risk.MaxTradesPerDay))
	}
	if c.Risk.MaxPositionSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_position_size must be at least 1, got %d", c.Risk.MaxPositionSize))
	}
	if c.Risk.MinProbProfit < 0 || c.Risk.MinProbProfit > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_prob_profit must be between 0 and 1, got %f", c.Risk.MinProbProfit))
	}
	if c.Risk.RiskFractionPerTrade <= 0 || c.Risk.RiskFractionPerTrade > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_fraction_per_trade must be in (0, 1], got %f", c.Risk.RiskFractionPerTrade))
	}

	if c.Classifier.SidewaysVIXMin > 0 && c.Classifier.SidewaysVIXMax > 0 &&
		c.Classifier.SidewaysVIXMin >= c.Classifier.SidewaysVIXMax {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sideways_vix_min must be below sideways_vix_max"))
	}

	if s := c.Strategies.PutCredit; s.Enabled {
		if s.TargetDelta <= 0 || s.TargetDelta >= 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("put_credit target_delta must be in (0, 1), got %f", s.TargetDelta))
		}
		if s.SpreadWidth <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("put_credit spread_width must be positive, got %f", s.SpreadWidth))
		}
	}
	if s := c.Strategies.IronCondor; s.Enabled {
		if s.TargetDelta <= 0 || s.TargetDelta >= 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("iron_condor target_delta must be in (0, 1), got %f", s.TargetDelta))
		}
		if s.WingWidth <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("iron_condor wing_width must be positive, got %f", s.WingWidth))
		}
	}
	if s := c.Strategies.CallDiagonal; s.Enabled {
		if s.ShortDelta <= 0 || s.ShortDelta >= 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("call_diagonal short_delta must be in (0, 1), got %f", s.ShortDelta))
		}
		if s.BackMonthDays < 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("call_diagonal back_month_days must be at least 1, got %d", s.BackMonthDays))
		}
	}

	if c.Engine.MaxCandidateAttempts < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_candidate_attempts must be at least 1, got %d", c.Engine.MaxCandidateAttempts))
	}

	switch c.Storage.Type {
	case "", "localfs", "memory":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	// Advisor validation - if enabled, check provider config exists
	if c.Advisor.Enabled {
		switch c.Advisor.Provider {
		case "claude":
			if c.Advisor.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.Advisor.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown advisor provider %q", c.Advisor.Provider))
		}
	}

	for _, r := range c.Alerts {
		if r.Name == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alert rule missing name"))
		}
		if !r.Valid() {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("alert rule %q has malformed expr %q", r.Name, r.Expr))
		}
	}

	return nil
}
