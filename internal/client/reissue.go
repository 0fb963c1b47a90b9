package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inkwell/backend/internal/auth"
)

// ReissueClient exchanges a refresh token for a new token pair against the
// auth refresh endpoint. The short timeout bounds the one network round trip
// the refresh flow is allowed, so a hung reissue fails fast instead of
// hanging the caller's request.
type ReissueClient struct {
	baseURL    string
	httpClient *http.Client
}

type ReissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ReissueResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func NewReissueClient(baseURL string) *ReissueClient {
	return &ReissueClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *ReissueClient) Reissue(ctx context.Context, refreshToken string) (auth.Pair, error) {
	payload, err := json.Marshal(ReissueRequest{RefreshToken: refreshToken})
	if err != nil {
		return auth.Pair{}, fmt.Errorf("failed to marshal reissue request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/refresh", bytes.NewBuffer(payload))
	if err != nil {
		return auth.Pair{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return auth.Pair{}, fmt.Errorf("failed to call reissue endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Pair{}, fmt.Errorf("reissue endpoint returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.Pair{}, fmt.Errorf("failed to read response: %w", err)
	}

	var reissueResp ReissueResponse
	if err := json.Unmarshal(body, &reissueResp); err != nil {
		return auth.Pair{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if reissueResp.AccessToken == "" || reissueResp.RefreshToken == "" {
		return auth.Pair{}, fmt.Errorf("reissue endpoint returned empty tokens")
	}

	return auth.Pair{
		AccessToken:  reissueResp.AccessToken,
		RefreshToken: reissueResp.RefreshToken,
	}, nil
}
