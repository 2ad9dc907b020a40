package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "mltrust"
	keyringUser    = "github_token"

	// WorkersDefault bounds the per-line metric fan-out.
	WorkersDefault = 8

	// CloneDepthDefault bounds shallow clone history.
	CloneDepthDefault = 200

	// SinceDaysDefault is the commit lookback window for
	// contributor analysis.
	SinceDaysDefault = 600

	// MetricTimeoutDefault bounds a single metric evaluation,
	// clone and network calls included.
	MetricTimeoutDefault = 2 * time.Minute

	genaiBaseURLDefault = "https://genai.rcac.purdue.edu"
	genaiPathDefault    = "/api/chat/completions"
	genaiModelDefault   = "deepseek-r1:7b"
)

// Judge holds the optional external ramp-up judge endpoint
// configuration. An empty APIKey disables the judge.
type Judge struct {
	APIKey  string
	BaseURL string
	Path    string
	Model   string
}

// Enabled reports whether the external judge is configured.
func (j Judge) Enabled() bool {
	return j.APIKey != ""
}

// Context carries run-wide configuration: tokens, tunables, and
// judge settings. It is constructed once per invocation and passed
// down explicitly; nothing here is process-global.
type Context struct {
	GitHubToken string
	HFToken     string
	Judge       Judge

	Workers       int
	CloneDepth    int
	SinceDays     int
	MetricTimeout time.Duration
}

// Load builds a Context from the environment. The GitHub token is
// read from GITHUB_TOKEN first, then the OS keychain entry written
// by the auth command.
func Load() *Context {
	c := &Context{
		GitHubToken: githubToken(),
		HFToken:     firstEnv("HF_TOKEN", "HUGGINGFACE_TOKEN"),
		Judge: Judge{
			APIKey:  strings.TrimSpace(os.Getenv("GEN_AI_STUDIO_API_KEY")),
			BaseURL: envOr("GENAI_BASE_URL", genaiBaseURLDefault),
			Path:    envOr("GENAI_PATH", genaiPathDefault),
			Model:   envOr("GENAI_MODEL", genaiModelDefault),
		},
		Workers:       WorkersDefault,
		CloneDepth:    CloneDepthDefault,
		SinceDays:     SinceDaysDefault,
		MetricTimeout: MetricTimeoutDefault,
	}
	c.Judge.BaseURL = strings.TrimRight(c.Judge.BaseURL, "/")
	return c
}

func githubToken() string {
	if t := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); t != "" {
		return t
	}
	t, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		slog.Debug("no GitHub token in keychain", "error", err)
		return ""
	}
	return t
}

// SaveGitHubToken stores the token in the OS keychain.
func SaveGitHubToken(token string) error {
	return keyring.Set(keyringService, keyringUser, token)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
