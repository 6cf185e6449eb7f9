package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ticketshop/internal/util"

	"go.uber.org/zap"
)

// IssueTicketsRequest is the travel service's issuance contract
type IssueTicketsRequest struct {
	Quantity    int       `json:"quantity"`
	Zones       string    `json:"zones"`
	TicketClass string    `json:"ticket_class"`
	ValidUntil  time.Time `json:"valid_until"`
	Username    string    `json:"username"`
}

// IssuedTicket describes one ticket issued by the travel service
type IssuedTicket struct {
	Serial      string    `json:"serial"`
	Zones       string    `json:"zones"`
	TicketClass string    `json:"ticket_class"`
	ValidUntil  time.Time `json:"valid_until"`
}

// TravelClient calls the travel service to issue ride tickets. The call is
// synchronous and bounded by a timeout; it runs before any order is written,
// so a failure here has nothing to compensate.
type TravelClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewTravelClient creates a new travel service client
func NewTravelClient(baseURL string, timeout time.Duration) *TravelClient {
	return &TravelClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// IssueTickets requests ticket issuance and returns the issued descriptors.
// Transport errors, timeouts, non-2xx responses and an empty result are all
// issuance failures.
func (tc *TravelClient) IssueTickets(ctx context.Context, req *IssueTicketsRequest) ([]IssuedTicket, error) {
	ctx, span := util.StartSpan(ctx, "TravelClient.IssueTickets")
	defer span.End()

	start := time.Now()
	defer func() {
		util.TicketIssuanceLatency.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, tc.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issuance request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.baseURL+"/api/v1/tickets/issue", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := tc.client.Do(httpReq)
	if err != nil {
		util.TicketIssuanceFailed.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("ticket issuance call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		util.TicketIssuanceFailed.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("ticket issuance returned status %d", resp.StatusCode)
	}

	var result struct {
		Tickets []IssuedTicket `json:"tickets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		util.TicketIssuanceFailed.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("failed to decode issuance response: %w", err)
	}

	if len(result.Tickets) == 0 {
		util.TicketIssuanceFailed.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("ticket issuance returned no tickets")
	}

	tc.logger.Info("Tickets issued",
		zap.String("username", req.Username),
		zap.Int("count", len(result.Tickets)))

	return result.Tickets, nil
}
