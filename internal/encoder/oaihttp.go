package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// OAIConfig targets any OpenAI-compatible /v1/embeddings server (TEI, vLLM,
// Ollama, llama.cpp).
type OAIConfig struct {
	BaseURL        string
	EmbeddingsPath string
	APIKey         string
	Model          string
	Dims           int
	Timeout        time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("embeddings upstream status=%d body=%q", e.StatusCode, e.Body)
}

type OAIHTTP struct {
	log     *logger.Logger
	baseURL string
	path    string
	apiKey  string
	model   string
	dims    int
	timeout time.Duration

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[][]float32]
}

func NewOAIHTTP(log *logger.Logger, cfg OAIConfig) (*OAIHTTP, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("oai_http: model required")
	}
	path := strings.TrimSpace(cfg.EmbeddingsPath)
	if path == "" {
		path = "/v1/embeddings"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openFor := cfg.BreakerTimeout
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	e := &OAIHTTP{
		log:        log.With("service", "OAIHTTPEncoder"),
		baseURL:    baseURL,
		path:       path,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		dims:       cfg.Dims,
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr},
	}
	e.breaker = gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        "embeddings-" + model,
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var he *HTTPError
			return errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500 && he.StatusCode != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn("embeddings circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return e, nil
}

// NewOAIHTTPWithClient is intended for tests.
func NewOAIHTTPWithClient(log *logger.Logger, cfg OAIConfig, hc *http.Client) (*OAIHTTP, error) {
	e, err := NewOAIHTTP(log, cfg)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		e.httpClient = hc
	}
	return e, nil
}

func (e *OAIHTTP) Dims() int     { return e.dims }
func (e *OAIHTTP) Model() string { return e.model }

func (e *OAIHTTP) Encode(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (e *OAIHTTP) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		// Upstreams reject empty strings.
		if strings.TrimSpace(t) == "" {
			t = " "
		}
		inputs[i] = t
	}
	return e.breaker.Execute(func() ([][]float32, error) {
		return e.embed(ctx, inputs)
	})
}

func (e *OAIHTTP) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	var resp embeddingsResponse
	if err := e.doJSON(ctx, embeddingsRequest{Model: e.model, Input: inputs}, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = toFloat32(d.Embedding)
		}
	}
	// Some servers omit indices but keep ordering.
	for i := range out {
		if out[i] == nil && i < len(resp.Data) {
			out[i] = toFloat32(resp.Data[i].Embedding)
		}
	}
	for i := range out {
		if len(out[i]) == 0 {
			return nil, fmt.Errorf("embeddings missing index=%d (model=%s)", i, e.model)
		}
	}
	return out, nil
}

func (e *OAIHTTP) doJSON(ctx context.Context, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	ctx2, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, e.baseURL+e.path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}
