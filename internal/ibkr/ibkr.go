// Package ibkr implements the Interactive Brokers flex web service
// client. Fetching a report is a two-step protocol: SendRequest returns a
// reference code, and the statement is polled until IBKR finishes
// generating it.
package ibkr

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Client defines the interface for fetching flex reports from Interactive
// Brokers. It enables dependency injection and testing with mock
// implementations.
type Client interface {
	RequestFlexReport(ctx context.Context, token string, queryID int) (FlexQueryResponse, error)
}

// FinanceClient is the HTTP implementation of Client.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new IBKR client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService",
	}
}

// NewFinanceClientWithBaseURL creates a client pointing at a custom
// endpoint, used by tests.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// RequestFlexReport runs the full two-step flex fetch: submit the request,
// then poll for the generated statement with exponential backoff.
func (c *FinanceClient) RequestFlexReport(ctx context.Context, token string, queryID int) (FlexQueryResponse, error) {
	if token == "" || queryID == 0 {
		return FlexQueryResponse{}, fmt.Errorf("flex token and query ID are required")
	}

	request, err := c.sendRequest(ctx, token, queryID)
	if err != nil {
		return FlexQueryResponse{}, err
	}

	return c.retrieveStatement(ctx, token, request)
}

func (c *FinanceClient) sendRequest(ctx context.Context, token string, queryID int) (FlexRequestResponse, error) {
	queryURL := fmt.Sprintf("%s/SendRequest?t=%s&q=%d&v=3", c.baseURL, url.QueryEscape(token), queryID)

	data, err := c.get(ctx, queryURL)
	if err != nil {
		return FlexRequestResponse{}, err
	}

	var response FlexRequestResponse
	if err := xml.Unmarshal(data, &response); err != nil {
		return FlexRequestResponse{}, fmt.Errorf("failed to parse flex request response: %w", err)
	}

	if response.ErrorCode != nil && response.ErrorMessage != nil {
		return response, fmt.Errorf("ibkr error %d: %s", *response.ErrorCode, *response.ErrorMessage)
	}
	if response.Status != "Success" {
		return response, fmt.Errorf("flex request failed with status %q", response.Status)
	}

	return response, nil
}

// Statement-not-ready error codes from the flex web service.
func isNotReady(code int) bool {
	return code == 1018 || code == 1019 || code == 1021
}

func (c *FinanceClient) retrieveStatement(ctx context.Context, token string, request FlexRequestResponse) (FlexQueryResponse, error) {
	statementURL := request.URL
	if statementURL == "" {
		statementURL = c.baseURL + "/GetStatement"
	}
	queryURL := fmt.Sprintf("%s?t=%s&q=%d&v=3", statementURL, url.QueryEscape(token), request.ReferenceCode)

	backoff := 2 * time.Second
	const maxBackoff = 30 * time.Second
	const maxAttempts = 10

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Dur("backoff", backoff).Msg("flex statement not ready, retrying")
			select {
			case <-ctx.Done():
				return FlexQueryResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		data, err := c.get(ctx, queryURL)
		if err != nil {
			return FlexQueryResponse{}, err
		}

		var response FlexQueryResponse
		if err := xml.Unmarshal(data, &response); err == nil && len(response.FlexStatements.FlexStatements) > 0 {
			response.RetrievedAt = time.Now().UTC()
			response.QueryID = request.ReferenceCode
			return response, nil
		}

		var errResponse FlexRequestResponse
		if err := xml.Unmarshal(data, &errResponse); err != nil {
			return FlexQueryResponse{}, fmt.Errorf("failed to parse flex statement: %w", err)
		}
		if errResponse.ErrorCode != nil {
			if isNotReady(*errResponse.ErrorCode) {
				continue
			}
			return FlexQueryResponse{}, fmt.Errorf("ibkr error %d: %s", *errResponse.ErrorCode, *errResponse.ErrorMessage)
		}
	}

	return FlexQueryResponse{}, fmt.Errorf("flex statement not ready after %d attempts", maxAttempts)
}

func (c *FinanceClient) get(ctx context.Context, queryURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ibkr: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ibkr response: %w", err)
	}

	return data, nil
}
