package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kinoreel/kinoapi/internal/model"
)

const checkAccessPath = "/api/v1/check_access"

// AuthClient asks an external authorization service whether the presented
// credentials carry one of a set of roles. An empty base URL means no
// service is configured and every check passes (open mode).
type AuthClient struct {
	baseURL string
	client  *http.Client
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// CheckAccess returns nil when access is allowed. authorization is the raw
// bearer header presented by the client; an empty value fails immediately.
// Any failure comes back as *model.AuthError: denials keep the upstream
// status and detail, transport failures map to 401 rather than surfacing as
// a server fault.
func (a *AuthClient) CheckAccess(ctx context.Context, authorization string, allowRoles []string) error {
	if a.baseURL == "" {
		return nil
	}
	if authorization == "" {
		return &model.AuthError{Status: http.StatusUnauthorized, Detail: "Not authenticated"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+checkAccessPath, nil)
	if err != nil {
		return fmt.Errorf("auth: build request: %w", err)
	}
	q := req.URL.Query()
	for _, role := range allowRoles {
		q.Add("allow_roles", role)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", authorization)

	resp, err := a.client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Errorln("Auth service unreachable")
		return &model.AuthError{Status: http.StatusUnauthorized, Detail: "Auth service unavailable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &model.AuthError{Status: resp.StatusCode, Detail: payload.Detail}
}
