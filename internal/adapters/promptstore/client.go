// Package promptstore retrieves prompt templates from a Langfuse-style
// prompt management API. Retrieval is strictly best effort: any error is
// logged and reported as absence so callers fall back to their built-in
// prompt.
package promptstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nmoreno/gymstats-agent/internal/observability"
)

type Client struct {
	host      string
	publicKey string
	secretKey string
	http      *http.Client

	enabled bool
}

// NewClient creates a prompt store client. Missing credentials or host
// simply disable retrieval; Retrieve then always reports absence.
func NewClient(host, publicKey, secretKey string) *Client {
	enabled := host != "" && publicKey != "" && secretKey != ""
	if !enabled {
		observability.Logger().Warn("prompt store disabled: missing credentials or host")
	}
	return &Client{
		host:      strings.TrimRight(host, "/"),
		publicKey: publicKey,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 5 * time.Second},
		enabled:   enabled,
	}
}

type promptResponse struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Prompt json.RawMessage `json:"prompt"`
}

// Retrieve looks up a prompt by name and substitutes {{variable}}
// placeholders. It never fails: ok is false on any problem.
func (c *Client) Retrieve(ctx context.Context, name string, variables map[string]string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	log := observability.LoggerFromContext(ctx)

	endpoint := fmt.Sprintf("%s/api/public/v2/prompts/%s", c.host, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Warn("prompt retrieval failed", "prompt_name", name, "error", err)
		return "", false
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("prompt retrieval failed", "prompt_name", name, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("prompt not found", "prompt_name", name, "status", resp.StatusCode)
		return "", false
	}

	var pr promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		log.Warn("prompt decode failed", "prompt_name", name, "error", err)
		return "", false
	}

	// Text prompts carry the template as a plain JSON string; anything
	// else (chat prompts) is not usable as a system template here.
	var text string
	if err := json.Unmarshal(pr.Prompt, &text); err != nil || text == "" {
		log.Warn("prompt has no text template", "prompt_name", name)
		return "", false
	}

	return compile(text, variables), true
}

// compile substitutes {{key}} placeholders with the given variables.
func compile(template string, variables map[string]string) string {
	out := template
	for k, v := range variables {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
