package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// newInferenceRequest builds the POST request for a single text.
func newInferenceRequest(ctx context.Context, url, token, text string) (*http.Request, error) {
	data, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// parseEmbedding accepts the three shapes inference servers answer with:
//
//	[{"embedding": [..]}]   object list, first entry used
//	[[..], ..]              nested list, first row used
//	[..]                    flat vector
func parseEmbedding(body []byte) ([]float32, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrUnexpectedResponse)
	}

	first := bytes.TrimSpace(items[0])
	if len(first) == 0 {
		return nil, ErrUnexpectedResponse
	}

	switch first[0] {
	case '{':
		var obj struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.Unmarshal(first, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		if obj.Embedding == nil {
			return nil, fmt.Errorf("%w: object without embedding", ErrUnexpectedResponse)
		}
		return obj.Embedding, nil

	case '[':
		var vec []float32
		if err := json.Unmarshal(first, &vec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return vec, nil

	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var vec []float32
		if err := json.Unmarshal(body, &vec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return vec, nil
	}
	return nil, ErrUnexpectedResponse
}
