package llm

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

const (
	// DefaultBaseURL is LM Studio's local server address.
	DefaultBaseURL = "http://127.0.0.1:1234"
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 300 * time.Second
	// APIKeyEnv names the environment variable holding the bearer token.
	APIKeyEnv = "LMSTUDIO_API_KEY"

	defaultAPIKey = "lm-studio"
	statusTimeout = 5 * time.Second
	modelsTimeout = 8 * time.Second
)

// Options configures the LM Studio client.
type Options struct {
	BaseURL string
	// APIKey is sent as a bearer token. Falls back to $LMSTUDIO_API_KEY, then "lm-studio".
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type implClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
}

// NewLMStudio creates a Client for an OpenAI-compatible server.
func NewLMStudio(opts Options, log logger.Logger) Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.APIKey == "" {
		opts.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
	if opts.APIKey == "" {
		opts.APIKey = defaultAPIKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &implClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		logger:  log,
	}
}
