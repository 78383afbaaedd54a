// Package intercom is a client for the support-operations REST API that
// fronts the chat platform and the incident tool.
package intercom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
	"golang.org/x/time/rate"
)

const (
	pathUnassigned       = "/api/intercom/conversations/unassigned-only"
	pathAssignmentStatus = "/api/intercom/conversations/assignment-status"
	pathTSECounts        = "/api/intercom/conversations/tse-counts"
	pathOpenTeam         = "/api/intercom/conversations/open-team-5480079"
	pathDailyMetrics     = "/api/intercom/conversations/daily-metrics"
	pathOnCall           = "/api/incident-io/on-call"
)

// maxBody bounds a single response body
const maxBody = 8 << 20

// Client talks to the operations API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client limited to ratePerSecond requests
func NewClient(baseURL, token string, ratePerSecond float64) *Client {
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// UnassignedConversations returns conversations with no admin assignee
func (c *Client) UnassignedConversations(ctx context.Context) ([]types.Conversation, error) {
	body, err := c.do(ctx, http.MethodGet, pathUnassigned, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.Conversation](body, "conversations", "data", "items")
}

// OpenTeamConversations returns the open conversations of the support team inbox
func (c *Client) OpenTeamConversations(ctx context.Context) ([]types.Conversation, error) {
	body, err := c.do(ctx, http.MethodGet, pathOpenTeam, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.Conversation](body, "conversations", "data", "items")
}

// AssignmentStatus asks whether each conversation has been assigned since it was fetched
func (c *Client) AssignmentStatus(ctx context.Context, ids []string) ([]types.AssignmentStatus, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	req := struct {
		ConversationIDs []string `json:"conversationIds"`
	}{ids}
	body, err := c.do(ctx, http.MethodPost, pathAssignmentStatus, req)
	if err != nil {
		return nil, err
	}
	return decodeList[types.AssignmentStatus](body, "statuses", "conversations", "data")
}

// TSECounts returns open conversation counts per engineer
func (c *Client) TSECounts(ctx context.Context) ([]types.TSECount, error) {
	body, err := c.do(ctx, http.MethodGet, pathTSECounts, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.TSECount](body, "counts", "tses", "data")
}

// DailyMetrics returns today's conversation metrics
func (c *Client) DailyMetrics(ctx context.Context) (types.DailyMetrics, error) {
	var m types.DailyMetrics
	body, err := c.do(ctx, http.MethodGet, pathDailyMetrics, nil)
	if err != nil {
		return m, err
	}
	if inner, ok := unwrap(body, "metrics", "data"); ok {
		body = inner
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return m, fmt.Errorf("decode daily metrics: %w", err)
	}
	return m, nil
}

// OnCall returns who is on call and any open incidents
func (c *Client) OnCall(ctx context.Context) (types.OnCallReport, error) {
	var r types.OnCallReport
	body, err := c.do(ctx, http.MethodGet, pathOnCall, nil)
	if err != nil {
		return r, err
	}
	if isArray(body) {
		r.OnCall, err = decodeList[types.OnCallEntry](body)
		return r, err
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return r, fmt.Errorf("decode on-call: %w", err)
	}
	return r, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %w: %d", method, path, types.ErrUnexpectedStatus, resp.StatusCode)
	}
	return body, nil
}
