package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskdeck/domain"
	"taskdeck/record"
)

const remoteMaxResponseSize = 8 << 20

// RemoteConfig configures the HTTP record-store client.
type RemoteConfig struct {
	BaseURL    string
	ProjectID  string
	PublicKey  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Remote is a record.Client backed by the hosted record service. Every call
// is a single HTTP round-trip carrying the query or mutation payload and
// returning the store's response envelope.
type Remote struct {
	base      *url.URL
	http      *http.Client
	projectID string
	publicKey string
	log       *log.Logger
	tracer    trace.Tracer
}

// NewRemote creates a Remote from the given configuration.
func NewRemote(cfg RemoteConfig, logger *log.Logger) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("record service URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("record service URL: %w", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Remote{
		base:      base,
		http:      hc,
		projectID: cfg.ProjectID,
		publicKey: cfg.PublicKey,
		log:       logger,
		tracer:    otel.Tracer("taskdeck/storage"),
	}, nil
}

type recordsPayload struct {
	Records []record.Record `json:"records"`
}

type deletePayload struct {
	RecordIDs []int `json:"recordIds"`
}

// FetchRecords implements record.Client.
func (r *Remote) FetchRecords(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	resp, _, err := r.do(ctx, "fetch", table, http.MethodPost, r.path("tables", table, "fetch"), q)
	if err != nil {
		return nil, err
	}
	var recs []record.Record
	if len(resp.Data) > 0 {
		if err := sonic.Unmarshal(resp.Data, &recs); err != nil {
			return nil, &domain.StoreError{Op: "fetch " + table, Message: "malformed response data", Err: err}
		}
	}
	return recs, nil
}

// GetRecordByID implements record.Client. A 404 from the service is a plain
// lookup miss, not an error.
func (r *Remote) GetRecordByID(ctx context.Context, table string, id int, q record.Query) (record.Record, error) {
	resp, status, err := r.do(ctx, "get", table, http.MethodPost, r.path("tables", table, "records", strconv.Itoa(id), "fetch"), q)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	var rec record.Record
	if err := sonic.Unmarshal(resp.Data, &rec); err != nil {
		return nil, &domain.StoreError{Op: "get " + table, Message: "malformed response data", Err: err}
	}
	return rec, nil
}

// CreateRecords implements record.Client.
func (r *Remote) CreateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	resp, _, err := r.do(ctx, "create", table, http.MethodPost, r.path("tables", table, "records"), recordsPayload{Records: recs})
	if err != nil {
		return nil, err
	}
	return decodeBatch("create "+table, resp)
}

// UpdateRecords implements record.Client. Partial failures surface as a
// single error carrying the first failed record's message; the service does
// not roll back records it already applied.
func (r *Remote) UpdateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	resp, _, err := r.do(ctx, "update", table, http.MethodPatch, r.path("tables", table, "records"), recordsPayload{Records: recs})
	if err != nil {
		return nil, err
	}
	return decodeBatch("update "+table, resp)
}

// DeleteRecords implements record.Client.
func (r *Remote) DeleteRecords(ctx context.Context, table string, ids []int) error {
	resp, _, err := r.do(ctx, "delete", table, http.MethodDelete, r.path("tables", table, "records"), deletePayload{RecordIDs: ids})
	if err != nil {
		return err
	}
	if msg, failed := record.FirstFailure(resp.Results); failed {
		return &domain.StoreError{Op: "delete " + table, Message: msg}
	}
	return nil
}

// decodeBatch extracts the persisted records from a batch response,
// preferring per-record results over the top-level data payload.
func decodeBatch(op string, resp *record.Response) ([]record.Record, error) {
	if msg, failed := record.FirstFailure(resp.Results); failed {
		return nil, &domain.StoreError{Op: op, Message: msg}
	}
	if len(resp.Results) > 0 {
		out := make([]record.Record, 0, len(resp.Results))
		for _, res := range resp.Results {
			var rec record.Record
			if len(res.Data) == 0 {
				continue
			}
			if err := sonic.Unmarshal(res.Data, &rec); err != nil {
				return nil, &domain.StoreError{Op: op, Message: "malformed result data", Err: err}
			}
			out = append(out, rec)
		}
		return out, nil
	}
	var out []record.Record
	if len(resp.Data) > 0 {
		if err := sonic.Unmarshal(resp.Data, &out); err != nil {
			return nil, &domain.StoreError{Op: op, Message: "malformed response data", Err: err}
		}
	}
	return out, nil
}

func (r *Remote) path(parts ...string) string {
	return strings.TrimRight(r.base.Path, "/") + "/api/v1/" + strings.Join(parts, "/")
}

func (r *Remote) do(ctx context.Context, op, table, method, path string, payload any) (*record.Response, int, error) {
	ctx, span := r.tracer.Start(ctx, "recordstore."+op, trace.WithAttributes(
		attribute.String("record.table", table),
	))
	defer span.End()

	opName := op + " " + table
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, 0, &domain.StoreError{Op: opName, Message: "encode request", Err: err}
	}

	target := *r.base
	target.Path = path
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, 0, &domain.StoreError{Op: opName, Message: "build request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if r.projectID != "" {
		req.Header.Set("X-Project-Id", r.projectID)
	}
	if r.publicKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.publicKey)
	}

	start := time.Now()
	httpResp, err := r.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, 0, &domain.StoreError{Op: opName, Message: err.Error(), Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, remoteMaxResponseSize))
	if err != nil {
		span.RecordError(err)
		return nil, httpResp.StatusCode, &domain.StoreError{Op: opName, Message: "read response", Err: err}
	}

	r.log.WithFields(log.Fields{
		"op":        opName,
		"status":    httpResp.StatusCode,
		"requestId": requestID,
		"duration":  time.Since(start),
	}).Debug("record store call")

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, http.StatusNotFound, nil
	}

	var resp record.Response
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, httpResp.StatusCode, &domain.StoreError{
			Op:      opName,
			Message: fmt.Sprintf("unexpected response (status %d)", httpResp.StatusCode),
			Err:     err,
		}
	}
	if !resp.Success {
		span.SetAttributes(attribute.String("record.error", resp.Message))
		return nil, httpResp.StatusCode, &domain.StoreError{Op: opName, Message: resp.Message}
	}
	return &resp, httpResp.StatusCode, nil
}
