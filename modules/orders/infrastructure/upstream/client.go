// Package upstream implements the order builder's gateways over the catalog
// and cart services' HTTP APIs.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// NewHTTPClient returns a traced client with an overall request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// getJSON GETs url, forwarding the caller's token, and decodes a 200 body
// into out. Other statuses are returned as *statusError.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if p, ok := auth.PrincipalFromContext(ctx); ok && p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{url: url, status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", types.ErrUpstreamUnavailable, url, err)
	}
	return nil
}

type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.url, e.status)
}

// classify maps a non-200 status onto the error taxonomy. notFound is
// returned for 404.
func classify(err error, notFound error) error {
	se, ok := err.(*statusError)
	if !ok {
		return err
	}
	switch se.status {
	case http.StatusNotFound:
		if notFound != nil {
			return fmt.Errorf("%w: %v", notFound, se)
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", types.ErrUnauthorized, se)
	}
	return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, se)
}

func joinURL(base string, path ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(path, "/")
}
