package embedding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// embedOne runs the retry loop for a single text and reports how many
// attempts it made.
//
// A 429 always backs off and retries, even on the last attempt, so a rate
// limited final attempt ends in ErrExhaustedRetries.
func (c *Client) embedOne(ctx context.Context, text string) ([]float32, int, error) {
	attempts := 0
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		attempts++
		last := attempt == c.cfg.MaxRetries-1
		wait := c.backoff(attempt)

		status, body, err := c.post(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			c.logger.Warn("embedding request failed", err, map[string]interface{}{
				"attempt": attempt + 1,
				"max":     c.cfg.MaxRetries,
			})
			if last {
				return nil, attempts, &TransportError{Attempts: attempts, Err: err}
			}
			if err := c.sleep(ctx, wait); err != nil {
				return nil, attempts, err
			}
			continue
		}

		switch {
		case status == http.StatusOK:
			vec, err := parseEmbedding(body)
			if err != nil {
				return nil, attempts, err
			}
			return vec, attempts, nil

		case status == http.StatusTooManyRequests:
			c.logger.Warn("embedding endpoint rate limited, backing off", nil, map[string]interface{}{
				"attempt": attempt + 1,
				"wait":    wait.String(),
			})

		default:
			c.logger.Error("embedding endpoint returned an error", nil, map[string]interface{}{
				"status":  status,
				"body":    string(body),
				"attempt": attempt + 1,
			})
			if last {
				return nil, attempts, &EndpointError{StatusCode: status, Body: string(body)}
			}
		}

		if err := c.sleep(ctx, wait); err != nil {
			return nil, attempts, err
		}
	}
	return nil, attempts, ErrExhaustedRetries
}

// post sends {"inputs": text} and returns the status and full body.
func (c *Client) post(ctx context.Context, text string) (int, []byte, error) {
	req, err := newInferenceRequest(ctx, c.cfg.Endpoint, c.cfg.APIToken, text)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * c.backoffUnit
}

// sleepContext is the default Sleeper.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
