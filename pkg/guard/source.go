package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

// HTTPSource resolves the principal over HTTP by calling the webapp's
// non-redirecting principal endpoint (GET /api/auth/me) with the browser's
// session cookie. This is the same two-step session + profile lookup the
// server guards run, reached from the client side.
type HTTPSource struct {
	// BaseURL of the webapp, without trailing slash.
	BaseURL string

	// Client must carry the session cookie (a cookie-jar client in tests,
	// the browser's fetch semantics in real frontends). Defaults to
	// http.DefaultClient.
	Client *http.Client
}

// Current implements PrincipalSource. A 401 is "not signed in" (nil, nil);
// any transport fault or unexpected status is an error the guard treats
// as principal-absent.
func (s *HTTPSource) Current(ctx context.Context) (*authz.Principal, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimSuffix(s.BaseURL, "/") + "/api/auth/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build principal request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch principal: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var p authz.Principal
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode principal: %w", err)
		}
		return &p, nil
	case http.StatusUnauthorized:
		return nil, nil
	default:
		return nil, fmt.Errorf("principal endpoint returned %d", resp.StatusCode)
	}
}

var _ PrincipalSource = (*HTTPSource)(nil)
