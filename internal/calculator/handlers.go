package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calc-editor/internal/editor"
	"calc-editor/internal/handlers"
	"calc-editor/internal/keyboard"
	"calc-editor/internal/observability"
	"calc-editor/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves editor sessions over HTTP.
type Handler struct {
	sessions *session.Manager
	machine  *editor.Machine
}

// NewHandler returns a handler storing snapshots through sessions and
// transforming them with machine.
func NewHandler(sessions *session.Manager, machine *editor.Machine) *Handler {
	return &Handler{sessions: sessions, machine: machine}
}

// ---------------------------------------------------------------------------
// Handlers: session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "session.create")
	defer span.End()
	start := time.Now()

	id, snap, err := h.sessions.Create(ctx)
	if err != nil {
		h.fail(ctx, span, logger, "session.create", err, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", id))
	span.SetStatus(codes.Ok, "")
	h.observe(ctx, "session.create", start)

	logger.Info("editor session created", zap.String("session_id", id))
	handlers.WriteJSON(w, http.StatusCreated, newSnapshotResponse(id, snap))
}

// GetSession handles GET /calculator/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "session.get")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("session.id", id))

	snap, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.fail(ctx, span, logger, "session.get", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteCacheableJSON(w, r, http.StatusOK, newSnapshotResponse(id, snap))
}

// DeleteSession handles DELETE /calculator/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "session.delete")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.sessions.Delete(ctx, id); err != nil {
		h.fail(ctx, span, logger, "session.delete", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("editor session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers: editing
// ---------------------------------------------------------------------------

// Act handles POST /calculator/sessions/{sessionID}/actions, one button press.
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "session.action")
	defer span.End()

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.action", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	action, err := editor.ParseAction(req.Action, req.Token)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.action", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	h.update(ctx, span, logger, "session.action", chi.URLParam(r, "sessionID"), []editor.Action{action}, w)
}

// Keys handles POST /calculator/sessions/{sessionID}/keys, a batch of key
// presses applied in order under one session lock.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "session.keys")
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	actions := make([]editor.Action, 0, len(req.Keys))
	for i, name := range req.Keys {
		action, err := keyboard.FromName(name)
		if err != nil {
			err = fmt.Errorf("key %d: %w", i, err)
			observability.RecordError(ctx, span, logger, errorCounter, "session.keys", err.Error(), err, http.StatusBadRequest, w)
			return
		}
		actions = append(actions, action)
	}

	span.SetAttributes(attribute.Int("keys.count", len(actions)))
	h.update(ctx, span, logger, "session.keys", chi.URLParam(r, "sessionID"), actions, w)
}

// Evaluate handles POST /calculator/evaluate. It types the expression into
// a fresh editor one key at a time, exactly like `calc eval`, then evaluates
// it. Nothing is stored.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.begin(r, "evaluate")
	defer span.End()
	start := time.Now()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	actions, err := keyboard.Type(req.Expression)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusBadRequest, w)
		return
	}
	actions = append(actions, editor.EvaluateAction)

	snap := h.apply(ctx, span, editor.Initial(), actions)

	span.SetStatus(codes.Ok, "")
	h.observe(ctx, "evaluate", start)

	logger.Info("expression evaluated",
		zap.String("input", req.Expression),
		zap.String("buffer", snap.Buffer),
		zap.String("result", string(snap.Result.Kind)),
	)
	handlers.WriteJSON(w, http.StatusOK, newSnapshotResponse("", snap))
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

func (h *Handler) begin(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

// update applies actions to the stored session snapshot under its lock.
func (h *Handler) update(ctx context.Context, span trace.Span, logger *zap.Logger, opName, id string, actions []editor.Action, w http.ResponseWriter) {
	start := time.Now()
	span.SetAttributes(attribute.String("session.id", id))

	snap, err := h.sessions.Update(ctx, id, func(s editor.Snapshot) editor.Snapshot {
		return h.apply(ctx, span, s, actions)
	})
	if err != nil {
		h.fail(ctx, span, logger, opName, err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	h.observe(ctx, opName, start)

	logger.Debug("session updated",
		zap.String("session_id", id),
		zap.Int("actions", len(actions)),
		zap.String("buffer", snap.Buffer),
		zap.Bool("operator_lock", snap.OperatorLock),
	)
	handlers.WriteJSON(w, http.StatusOK, newSnapshotResponse(id, snap))
}

// apply runs actions through the machine, recording metrics for each one.
func (h *Handler) apply(ctx context.Context, span trace.Span, s editor.Snapshot, actions []editor.Action) editor.Snapshot {
	for _, a := range actions {
		before := s
		s = h.machine.Apply(s, a)

		actionsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", string(a.Kind)),
			attribute.Bool("rejected", a.Rejected(before, s)),
		))

		if a.Kind != editor.ActionEvaluate {
			continue
		}

		outcome := string(s.Result.Kind)
		evaluationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.AddEvent("expression.evaluated", trace.WithAttributes(
			attribute.String("expression", s.Buffer),
			attribute.String("outcome", outcome),
		))
		if s.Result.Kind == editor.ResultNumeric {
			resultGauge.Record(ctx, s.Result.Value)
		}
	}
	return s
}

func (h *Handler) observe(ctx context.Context, opName string, start time.Time) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	opsHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", opName)))
}

func (h *Handler) fail(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	if errors.Is(err, session.ErrNotFound) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, "session store unavailable", err, http.StatusInternalServerError, w)
}

// SessionsGauge reports the live session count as a Prometheus gauge.
func SessionsGauge(sessions *session.Manager) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := sessions.Count(ctx)
		if err != nil {
			observability.Logger.Warn("counting sessions", zap.Error(err))
			return 0
		}
		return float64(n)
	}
}
