package config

import (
	"fmt"

	"github.com/swapbook/swapbook/swapbook"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Config       *swapbook.Config
	Debug        bool
	Environment  string
	AllowOrigins string
}

// NewWebAppConfig creates a new web app configuration
func NewWebAppConfig(cfg *swapbook.Config, debug bool) *WebAppConfig {
	environment := "production"
	if debug {
		environment = "development"
	}

	return &WebAppConfig{
		Config:       cfg,
		Debug:        debug,
		Environment:  environment,
		AllowOrigins: "*",
	}
}

// GetWebConfig returns the web configuration
func (w *WebAppConfig) GetWebConfig() swapbook.WebConfig {
	return w.Config.Web
}

// Address is the listen address for the HTTP server.
func (w *WebAppConfig) Address() string {
	return fmt.Sprintf("%s:%d", w.Config.Web.Host, w.Config.Web.Port)
}
