// Package service runs the prediction pipeline: it scores an input, then records,
// archives and announces the result, and brokers explanations and chat through the
// model gateway.
package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/unifai/unifai/internal/analytics"
	"github.com/unifai/unifai/internal/archive"
	"github.com/unifai/unifai/internal/events"
	"github.com/unifai/unifai/internal/gateway"
	"github.com/unifai/unifai/internal/metrics"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
)

// Recorder persists predictions. store.Postgres and store.Memory implement it.
type Recorder interface {
	Insert(ctx context.Context, rec store.Record) error
	SetExplanation(ctx context.Context, id, text string) error
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, f store.Filter) ([]store.Record, error)
}

// Explainer is the model gateway as seen by the service.
type Explainer interface {
	Explain(ctx context.Context, req gateway.ExplainRequest) (string, error)
	ChatStream(ctx context.Context, req gateway.ChatRequest, w io.Writer) error
}

// Prediction is a scored and recorded input.
type Prediction struct {
	ID        string          `json:"id"`
	Module    scoring.Module  `json:"module"`
	Input     json.RawMessage `json:"input"`
	Result    scoring.Result  `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ExplainRequest asks for an explanation. When PredictionID names a stored prediction
// the explanation is saved with it, and the prediction fields may be left empty to
// explain the stored record.
type ExplainRequest struct {
	PredictionID string `json:"predictionId,omitempty"`
	gateway.ExplainRequest
}

// Options wires a Service. Only Registry is required; nil sinks are skipped and a
// nil Recorder is replaced by an in-memory store.
type Options struct {
	Registry  *scoring.Registry
	Recorder  Recorder
	Archive   archive.Store
	Publisher events.Publisher
	Gateway   Explainer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	CacheSize int
	Now       func() time.Time
}

// Service is safe for concurrent use.
type Service struct {
	registry  *scoring.Registry
	recorder  Recorder
	archive   archive.Store
	publisher events.Publisher
	gateway   Explainer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cache     *ExplanationCache
	now       func() time.Time
}

// New creates a Service from opts.
func New(opts Options) *Service {
	s := &Service{
		registry:  opts.Registry,
		recorder:  opts.Recorder,
		archive:   opts.Archive,
		publisher: opts.Publisher,
		gateway:   opts.Gateway,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		cache:     NewExplanationCache(opts.CacheSize),
		now:       opts.Now,
	}
	if s.registry == nil {
		s.registry = scoring.DefaultRegistry()
	}
	if s.recorder == nil {
		s.recorder = store.NewMemory(store.MaxLimit)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Models lists the registered prediction modules.
func (s *Service) Models() []scoring.Model {
	return s.registry.Models()
}

// Predict scores raw with the named module. Recording, archiving and publishing are
// best effort: their failures are logged and counted but never fail the prediction.
func (s *Service) Predict(ctx context.Context, module scoring.Module, raw json.RawMessage) (*Prediction, error) {
	result, err := s.registry.Predict(module, raw)
	if err != nil {
		s.countRejection(module, err)
		return nil, err
	}

	p := &Prediction{
		ID:        uuid.NewString(),
		Module:    module,
		Input:     compactJSON(raw),
		Result:    result,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.recorder.Insert(ctx, store.Record{
		ID: p.ID, Module: p.Module, Input: p.Input, Result: p.Result, CreatedAt: p.CreatedAt,
	}); err != nil {
		s.sinkFailed("store", p, err)
	}
	if s.archive != nil {
		if err := s.archivePrediction(ctx, p); err != nil {
			s.sinkFailed("archive", p, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.PredictionScored(p.ID, p.Module, p.Result, p.CreatedAt)); err != nil {
			s.sinkFailed("events", p, err)
		}
	}

	if s.metrics != nil {
		s.metrics.Predictions.WithLabelValues(string(module), string(result.RiskLevel)).Inc()
	}
	s.logger.Debug("prediction scored",
		"id", p.ID, "module", module, "risk_level", result.RiskLevel, "confidence", result.Confidence)
	return p, nil
}

func (s *Service) archivePrediction(ctx context.Context, p *Prediction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}
	return s.archive.Put(ctx, p.Module, p.ID, data)
}

// Get returns a stored prediction.
func (s *Service) Get(ctx context.Context, id string) (*store.Record, error) {
	return s.recorder.Get(ctx, id)
}

// ErrNoArchive is returned by Archived when no archive backend is configured.
var ErrNoArchive = errors.New("prediction archive is not configured")

// Archived returns the archived JSON document of a prediction.
func (s *Service) Archived(ctx context.Context, module scoring.Module, id string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	if _, err := s.registry.Get(module); err != nil {
		return nil, err
	}
	return s.archive.Get(ctx, module, id)
}

// Recent lists stored predictions, newest first.
func (s *Service) Recent(ctx context.Context, f store.Filter) ([]store.Record, error) {
	return s.recorder.List(ctx, f)
}

// Explain returns an explanation for a prediction, reusing an earlier one for the
// same module, input and result. With a PredictionID the stored record is explained
// and the explanation saved on it; body fields that contradict the record are rejected.
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	if req.PredictionID != "" {
		rec, err := s.recorder.Get(ctx, req.PredictionID)
		if err != nil {
			return "", err
		}
		if err := matchesRecord(req.ExplainRequest, rec); err != nil {
			return "", err
		}
		req.ExplainRequest = gateway.ExplainRequest{
			Module:     string(rec.Module),
			Input:      rec.Input,
			Prediction: rec.Result.Prediction,
			Confidence: rec.Result.Confidence,
			RiskLevel:  string(rec.Result.RiskLevel),
		}
	}

	key := explanationKey(req.ExplainRequest)
	text, ok := s.cache.Get(key)
	if ok {
		s.countGateway("explain", "cached")
	} else {
		if s.gateway == nil {
			return "", gateway.ErrNotConfigured
		}
		var err error
		text, err = s.gateway.Explain(ctx, req.ExplainRequest)
		s.countGateway("explain", outcome(err))
		if err != nil {
			return "", fmt.Errorf("explain %s prediction: %w", req.Module, err)
		}
		if text != gateway.FallbackExplanation {
			s.cache.Put(key, text)
		}
	}

	if req.PredictionID != "" {
		if err := s.recorder.SetExplanation(ctx, req.PredictionID, text); err != nil {
			s.logger.Warn("save explanation", "id", req.PredictionID, "error", err)
		}
	}
	return text, nil
}

// matchesRecord reports a *gateway.RequestError when a field set in req differs from
// the stored prediction. Zero-valued fields are not compared.
func matchesRecord(req gateway.ExplainRequest, rec *store.Record) error {
	mismatch := func(field string) error {
		return &gateway.RequestError{Reason: fmt.Sprintf("%s does not match prediction %s", field, rec.ID)}
	}
	if req.Module != "" && req.Module != string(rec.Module) {
		return mismatch("moduleType")
	}
	if req.Prediction != "" && req.Prediction != rec.Result.Prediction {
		return mismatch("prediction")
	}
	if req.RiskLevel != "" && req.RiskLevel != string(rec.Result.RiskLevel) {
		return mismatch("riskLevel")
	}
	if req.Confidence != 0 && req.Confidence != rec.Result.Confidence {
		return mismatch("confidence")
	}
	if len(req.Input) > 0 && !sameJSON(req.Input, rec.Input) {
		return mismatch("inputData")
	}
	return nil
}

// Chat streams the gateway's answer to w.
func (s *Service) Chat(ctx context.Context, req gateway.ChatRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if s.gateway == nil {
		return gateway.ErrNotConfigured
	}
	err := s.gateway.ChatStream(ctx, req, w)
	s.countGateway("chat", outcome(err))
	return err
}

// Analytics summarises the most recent predictions.
func (s *Service) Analytics(ctx context.Context, now time.Time) (analytics.Summary, error) {
	records, err := s.recorder.List(ctx, store.Filter{Limit: analytics.WindowSize})
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("load predictions: %w", err)
	}
	return analytics.Summarize(records, now), nil
}

// Close releases the event publisher and the archive client.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if c, ok := s.archive.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (s *Service) sinkFailed(sink string, p *Prediction, err error) {
	s.logger.Warn("prediction sink failed", "sink", sink, "id", p.ID, "module", p.Module, "error", err)
	if s.metrics != nil {
		s.metrics.SinkFailures.WithLabelValues(sink).Inc()
	}
}

func (s *Service) countRejection(module scoring.Module, err error) {
	if s.metrics == nil {
		return
	}
	if errors.Is(err, scoring.ErrUnknownModule) {
		s.metrics.Rejections.WithLabelValues("unknown", "unknown_module").Inc()
		return
	}
	s.metrics.Rejections.WithLabelValues(string(module), "invalid_input").Inc()
}

func (s *Service) countGateway(kind, result string) {
	if s.metrics != nil {
		s.metrics.GatewayRequests.WithLabelValues(kind, result).Inc()
	}
}

func outcome(err error) string {
	var reqErr *gateway.RequestError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gateway.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, gateway.ErrCreditsExhausted):
		return "credits_exhausted"
	case errors.As(err, &reqErr):
		return "rejected"
	default:
		return "error"
	}
}

func compactJSON(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// sameJSON compares two documents by value, ignoring key order and whitespace.
func sameJSON(a, b json.RawMessage) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}

func explanationKey(req gateway.ExplainRequest) string {
	h := sha256.New()
	for _, part := range [][]byte{
		[]byte(req.Module),
		compactJSON(req.Input),
		[]byte(req.Prediction),
		[]byte(strconv.FormatFloat(req.Confidence, 'g', -1, 64)),
		[]byte(req.RiskLevel),
	} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
