package chat

import "time"

const (
	DefaultAPIURL          = "https://chatserver.alo-tech.com/chat-api"
	DefaultPollingURL      = "https://chatserver.alo-tech.com/chat-api/get_message"
	DefaultPollingInterval = 2 * time.Second
	DefaultTypingDelay     = 2 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
)

// Config is the in-memory options object handed over by the embedding
// application. Zero values fall back to the defaults above.
type Config struct {
	APIURL          string
	PollingURL      string
	PollingInterval time.Duration
	CWID            string
	SecurityToken   string
	Namespace       string
	Lang            string
	CustomerPath    string

	// TypingDelay is how long after a successful send the provisional
	// typing indicator appears. RequestTimeout bounds every backend call.
	TypingDelay    time.Duration
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.PollingURL == "" {
		c.PollingURL = DefaultPollingURL
	}
	if c.PollingInterval <= 0 {
		c.PollingInterval = DefaultPollingInterval
	}
	if c.TypingDelay <= 0 {
		c.TypingDelay = DefaultTypingDelay
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Lang == "" {
		c.Lang = "tr"
	}
	return c
}

// uiStrings are the inline transcript texts for user-visible failures.
type uiStrings struct {
	connectFailed string
	sendFailed    string
	genericAgent  string
}

func stringsFor(lang string) uiStrings {
	if lang == "en" {
		return uiStrings{
			connectFailed: "Could not connect. Please try again.",
			sendFailed:    "Message could not be sent. Please try again.",
			genericAgent:  "Agent",
		}
	}
	return uiStrings{
		connectFailed: "Bağlantı kurulurken bir hata oluştu. Lütfen tekrar deneyin.",
		sendFailed:    "Mesaj gönderilemedi. Lütfen tekrar deneyin.",
		genericAgent:  "Temsilci",
	}
}
