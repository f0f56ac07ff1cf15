package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/msuatafdeneme-art/webchat-client/internal/chat"
)

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := &cobra.Command{
		Use:   "webchat",
		Short: "Terminal client for the hosted live-chat backend",
	}
	root.AddCommand(newChatCmd(), newStubCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// configFromEnv reads the widget options from the environment, with
// the library defaults as fallback.
func configFromEnv() chat.Config {
	cfg := chat.Config{
		APIURL:        os.Getenv("CHAT_API_URL"),
		PollingURL:    os.Getenv("CHAT_POLLING_URL"),
		CWID:          os.Getenv("CHAT_CWID"),
		SecurityToken: os.Getenv("CHAT_SECURITY_TOKEN"),
		Namespace:     os.Getenv("CHAT_NAMESPACE"),
		Lang:          os.Getenv("CHAT_LANG"),
		CustomerPath:  os.Getenv("CHAT_CUSTOMER_PATH"),
	}
	if raw := os.Getenv("CHAT_POLLING_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.PollingInterval = d
		} else {
			log.Warn().Str("value", raw).Msg("invalid CHAT_POLLING_INTERVAL, using default")
		}
	}
	return cfg
}
