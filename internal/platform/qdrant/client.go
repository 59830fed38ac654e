package qdrant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

const (
	PayloadRowKey    = "row"
	PayloadGameIDKey = "game_id"

	maxErrorBodyBytes = 1024
)

var pointIDNamespaceUUID = uuid.MustParse("6c1bd0b4-8f0e-4f7a-9a55-3c2d7f1e5a90")

// Point is one embedding row addressed by its catalog id.
type Point struct {
	Row    int
	GameID int64
	Vector []float32
}

// ScoredPoint is a search hit decoded from the stored payload.
type ScoredPoint struct {
	Row    int
	GameID int64
	Score  float64
}

type Client struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantSearchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		log:     log.With("service", "QdrantClient"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// NewWithHTTPClient is intended for tests.
func NewWithHTTPClient(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		c.http = hc
	}
	return c, nil
}

func (c *Client) Collection() string { return c.cfg.Collection }
func (c *Client) VectorDim() int     { return c.cfg.VectorDim }

// VerifyReady checks /readyz and that the collection exists with the
// configured vector size.
func (c *Client) VerifyReady(ctx context.Context) error {
	const op = "bootstrap_verify"

	readyReq, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build ready request failed", err)
	}
	c.setHeaders(readyReq)
	readyResp, err := c.http.Do(readyReq)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = readyResp.Body.Close()
	if readyResp.StatusCode < 200 || readyResp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: readyResp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", readyResp.StatusCode),
		}
	}

	size, distance, err := c.collectionInfo(ctx, op)
	if err != nil {
		return err
	}
	if size != c.cfg.VectorDim {
		return &OperationError{
			Code:      OperationErrorValidation,
			Operation: op,
			Message: fmt.Sprintf(
				"qdrant collection %q vector size mismatch: expected=%d actual=%d",
				c.cfg.Collection, c.cfg.VectorDim, size,
			),
		}
	}
	if !strings.EqualFold(distance, "dot") && !strings.EqualFold(distance, "cosine") {
		c.log.Warn("qdrant collection distance is not inner product", "collection", c.cfg.Collection, "distance", distance)
	}
	return nil
}

// EnsureCollection creates the collection with Dot distance when it does not exist.
func (c *Client) EnsureCollection(ctx context.Context) error {
	const op = "ensure_collection"
	size, _, err := c.collectionInfo(ctx, op)
	if err == nil {
		if size != c.cfg.VectorDim {
			return opErr(op, OperationErrorValidation,
				fmt.Sprintf("existing collection %q has vector size %d, want %d", c.cfg.Collection, size, c.cfg.VectorDim), nil)
		}
		return nil
	}
	var typed *OperationError
	if !errors.As(err, &typed) || typed.StatusCode != http.StatusNotFound {
		return err
	}
	req := map[string]any{
		"vectors": map[string]any{"size": c.cfg.VectorDim, "distance": "Dot"},
	}
	if err := c.doJSON(ctx, op, http.MethodPut, c.collectionPath(""), req, nil); err != nil {
		return err
	}
	c.log.Info("qdrant collection created", "collection", c.cfg.Collection, "vector_dim", c.cfg.VectorDim)
	return nil
}

func (c *Client) Upsert(ctx context.Context, points []Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}
	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		if p.GameID <= 0 {
			return opErr(op, OperationErrorValidation, fmt.Sprintf("row %d has invalid game id %d", p.Row, p.GameID), nil)
		}
		if len(p.Vector) != c.cfg.VectorDim {
			return opErr(op, OperationErrorValidation,
				fmt.Sprintf("row %d dimension mismatch: expected=%d got=%d", p.Row, c.cfg.VectorDim, len(p.Vector)), nil)
		}
		body = append(body, map[string]any{
			"id":     PointID(p.GameID),
			"vector": p.Vector,
			"payload": map[string]any{
				PayloadRowKey:    p.Row,
				PayloadGameIDKey: p.GameID,
			},
		})
	}
	return c.doJSON(ctx, op, http.MethodPut, c.collectionPath("/points?wait=true"), map[string]any{"points": body}, nil)
}

// Search returns at most limit hits ordered by descending score.
func (c *Client) Search(ctx context.Context, q []float32, limit int) ([]ScoredPoint, error) {
	const op = "search"
	if len(q) != c.cfg.VectorDim {
		return nil, opErr(op, OperationErrorValidation,
			fmt.Sprintf("query vector dimension mismatch: expected=%d got=%d", c.cfg.VectorDim, len(q)), nil)
	}
	if limit <= 0 {
		return []ScoredPoint{}, nil
	}
	req := map[string]any{
		"vector":       q,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	var raw []qdrantSearchResultItem
	if err := c.doJSON(ctx, op, http.MethodPost, c.collectionPath("/points/search"), req, &raw); err != nil {
		return nil, err
	}
	out := make([]ScoredPoint, 0, len(raw))
	for _, item := range raw {
		row, okRow := payloadInt(item.Payload[PayloadRowKey])
		gameID, okID := payloadInt(item.Payload[PayloadGameIDKey])
		if !okRow || !okID {
			c.log.Warn("qdrant hit missing payload", "point_id", string(item.ID))
			continue
		}
		out = append(out, ScoredPoint{Row: int(row), GameID: gameID, Score: item.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Row < out[j].Row
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// Count returns the exact number of points in the collection.
func (c *Client) Count(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, "count", http.MethodPost, c.collectionPath("/points/count"), map[string]any{"exact": true}, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// PointID is deterministic so re-pushing the same catalog overwrites in place.
func PointID(gameID int64) string {
	return uuid.NewSHA1(pointIDNamespaceUUID, []byte("game|"+strconv.FormatInt(gameID, 10))).String()
}

func (c *Client) collectionInfo(ctx context.Context, op string) (int, string, error) {
	var result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	if err := c.doJSON(ctx, op, http.MethodGet, c.collectionPath(""), nil, &result); err != nil {
		return 0, "", err
	}
	v := result.Config.Params.Vectors
	return v.Size, strings.TrimSpace(v.Distance), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(c.cfg.APIKey); key != "" {
		req.Header.Set("api-key", key)
	}
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if readErr != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := OperationErrorQueryFailed
		if resp.StatusCode == http.StatusNotFound {
			code = OperationErrorNotFound
		}
		return &OperationError{
			Code:       code,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}
	if out == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func classifyHTTPCallError(op, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}
	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") || strings.EqualFold(statusString, "acknowledged") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}
	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return fmt.Sprintf("qdrant status=%s", status)
}

func payloadInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), t == float64(int64(t))
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

func (c *Client) collectionPath(suffix string) string {
	path := "/collections/" + c.cfg.Collection
	if strings.TrimSpace(suffix) == "" {
		return path
	}
	return path + suffix
}
