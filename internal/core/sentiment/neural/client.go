package neural

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/platform/circuit"
)

const (
	datatypeINT64 = "INT64"

	inputIDs      = "input_ids"
	inputMask     = "attention_mask"
	outputLogits  = "logits"
	inferPathFmt  = "%s/v2/models/%s/infer"
	maxErrorBytes = 512
)

// ErrInferStatus is returned for non-2xx responses from the inference server.
var ErrInferStatus = errors.New("inference server returned error status")

var errMissingOutput = errors.New("logits output missing from inference response")

type inferTensor struct {
	Name     string  `json:"name"`
	Shape    []int   `json:"shape"`
	Datatype string  `json:"datatype"`
	Data     []int64 `json:"data"`
}

type inferOutputRequest struct {
	Name string `json:"name"`
}

type inferRequest struct {
	Inputs  []inferTensor        `json:"inputs"`
	Outputs []inferOutputRequest `json:"outputs"`
}

type inferOutput struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float64 `json:"data"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	Outputs   []inferOutput `json:"outputs"`
	Error     string        `json:"error"`
}

// InferClient calls a KServe v2 compatible inference server (Triton, KServe, MLServer).
// After repeated failures the breaker short-circuits calls so an unreachable server
// costs nothing until it resets.
type InferClient struct {
	url        string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

// NewInferClient creates a client for model on baseURL.
func NewInferClient(baseURL, model string, timeout time.Duration, logger *zerolog.Logger) *InferClient {
	return &InferClient{
		url:        fmt.Sprintf(inferPathFmt, strings.TrimRight(baseURL, "/"), model),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New(circuit.Config{Name: "neural-inference"}, logger),
	}
}

// Logits runs the model on one encoded sequence and returns the raw logits.
func (c *InferClient) Logits(ctx context.Context, ids, mask []int64) ([]float64, error) {
	if err := c.breaker.Check(); err != nil {
		return nil, err
	}

	logits, err := c.infer(ctx, ids, mask)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}

	c.breaker.RecordSuccess()

	return logits, nil
}

func (c *InferClient) infer(ctx context.Context, ids, mask []int64) ([]float64, error) {
	shape := []int{1, len(ids)}

	body, err := json.Marshal(inferRequest{
		Inputs: []inferTensor{
			{Name: inputIDs, Shape: shape, Datatype: datatypeINT64, Data: ids},
			{Name: inputMask, Shape: shape, Datatype: datatypeINT64, Data: mask},
		},
		Outputs: []inferOutputRequest{{Name: outputLogits}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal infer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build infer request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, fmt.Errorf("%w: %d %s", ErrInferStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode infer response: %w", err)
	}

	for _, o := range out.Outputs {
		if o.Name == outputLogits {
			return o.Data, nil
		}
	}

	if len(out.Outputs) == 1 {
		return out.Outputs[0].Data, nil
	}

	return nil, errMissingOutput
}
