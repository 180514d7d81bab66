package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"menu-extractor/internal/types"
)

// EnvPrefix is prepended to every environment override, e.g. CRAWLER_MODAL_TIMEOUT
const EnvPrefix = "CRAWLER"

// Load builds the extractor configuration from defaults, an optional YAML
// file and CRAWLER_* environment variables, in increasing priority.
// With an empty path a config.yaml in the working directory is used if present.
func Load(path string) (*types.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &types.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the extractor cannot run with
func Validate(config *types.Config) error {
	switch config.Strategy {
	case types.StrategyDOM, types.StrategyState:
	default:
		return fmt.Errorf("invalid strategy %q (want %q or %q)", config.Strategy, types.StrategyDOM, types.StrategyState)
	}

	switch config.FailurePolicy {
	case types.FailurePolicyAbort, types.FailurePolicySkip:
	default:
		return fmt.Errorf("invalid failure policy %q (want %q or %q)", config.FailurePolicy, types.FailurePolicyAbort, types.FailurePolicySkip)
	}

	if config.ModalTimeout <= 0 || config.DismissTimeout <= 0 {
		return fmt.Errorf("modal and dismiss timeouts must be positive")
	}
	if config.ScrollStep <= 0 {
		return fmt.Errorf("scroll step must be positive, got %d", config.ScrollStep)
	}
	if config.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("strategy", string(d.Strategy))
	v.SetDefault("failure_policy", string(d.FailurePolicy))

	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("navigation_timeout", d.NavigationTimeout)
	v.SetDefault("modal_timeout", d.ModalTimeout)
	v.SetDefault("dismiss_timeout", d.DismissTimeout)
	v.SetDefault("settle_delay", d.SettleDelay)

	v.SetDefault("scroll_step", d.ScrollStep)
	v.SetDefault("scroll_interval", d.ScrollInterval)
	v.SetDefault("overlay_click_x", d.OverlayClickX)
	v.SetDefault("overlay_click_y", d.OverlayClickY)

	v.SetDefault("headless", d.Headless)
	v.SetDefault("http_only", d.UseHTTPOnly)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("request_delay", d.RequestDelay)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("state_path", d.StatePath)
	v.SetDefault("output_path", d.OutputPath)
}
