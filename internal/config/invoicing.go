package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InvoicingConfig controls invoice defaults applied at creation time.
type InvoicingConfig struct {
	NumberTemplate  string `mapstructure:"numberTemplate"`
	DefaultCurrency string `mapstructure:"defaultCurrency"`
	DefaultDueDays  int    `mapstructure:"defaultDueDays"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		NumberTemplate:  "INV-{YYYY}{MM}{DD}-{SEQ6}",
		DefaultCurrency: "USD",
		DefaultDueDays:  30,
	}
}

// InvoicingConfigHolder exposes the current invoicing settings and
// hot-reloads them when the config file changes on disk.
type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/facturo/config")
	v.AddConfigPath("/etc/facturo")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FACTURO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoicing.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("invoicing.defaultDueDays", defaults.DefaultDueDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			zap.L().Warn("invoicing config reload failed", zap.Error(err))
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			zap.L().Warn("invoicing config change ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("invoicing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if strings.TrimSpace(cfg.NumberTemplate) == "" {
		return errors.New("invoicing.numberTemplate cannot be empty")
	}
	if strings.TrimSpace(cfg.DefaultCurrency) == "" {
		return errors.New("invoicing.defaultCurrency cannot be empty")
	}
	if cfg.DefaultDueDays < 0 {
		return errors.New("invoicing.defaultDueDays cannot be negative")
	}
	return nil
}
