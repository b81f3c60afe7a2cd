package scoutjar

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
)

const (
	ServiceCore     = "core"
	ServiceMatching = "matching"

	defaultCoreURL     = "http://localhost:5000"
	defaultMatchingURL = "http://localhost:8000"
	userAgent          = "scoutjar-talent-cli"
	defaultTimeout     = 10 * time.Second

	ActiveMatchPath   = "/match-jobs"
	SemanticMatchPath = "/search-jobs-semantic"
)

// Client is the shared HTTP transport behind both backend services.
type Client struct {
	service    string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(log *zap.Logger, service, apiURL string) *Client {
	return &Client{
		service: service,
		APIURL:  strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger.WithService(log, service),
		UserAgent: userAgent,
	}
}

// Core talks to the record API: auth, applications, messages and profiles.
type Core struct {
	*Client
}

func NewCore(log *zap.Logger, apiURL string) *Core {
	if apiURL == "" {
		apiURL = defaultCoreURL
	}
	return &Core{Client: New(log, ServiceCore, apiURL)}
}

// Matching talks to the AI service: matches, recruiter info, passive
// preferences and resume uploads.
type Matching struct {
	*Client
	// ActiveMatchPath selects between keyword and semantic active matching.
	ActiveMatchPath string
}

func NewMatching(log *zap.Logger, apiURL string) *Matching {
	if apiURL == "" {
		apiURL = defaultMatchingURL
	}
	return &Matching{
		Client:          New(log, ServiceMatching, apiURL),
		ActiveMatchPath: ActiveMatchPath,
	}
}
