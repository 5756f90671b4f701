// Package handler provides the HTTP surface of Agora: the query/mutation
// endpoint, health checks and the router that wires the middleware chain.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prn-tf/agora/internal/auth"
	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/service"
)

// OperationRecorder observes every resolved operation.
type OperationRecorder interface {
	RecordOperation(operation, outcome string, elapsed time.Duration)
}

// outcomeOK is recorded for operations that did not fail.
const outcomeOK = "ok"

// unknownOperationLabel replaces names missing from the operation table in metrics.
const unknownOperationLabel = "unknown"

// QueryHandler resolves query and mutation documents.
type QueryHandler struct {
	users    *service.UserService
	topics   *service.TopicService
	posts    *service.PostService
	comments *service.CommentService

	operations     map[string]operation
	maxConcurrency int
	recorder       OperationRecorder
	logger         zerolog.Logger
}

// QueryHandlerConfig contains the dependencies of a QueryHandler.
type QueryHandlerConfig struct {
	UserService    *service.UserService
	TopicService   *service.TopicService
	PostService    *service.PostService
	CommentService *service.CommentService

	// MaxConcurrency bounds concurrently resolved query operations.
	// Zero or negative means unbounded.
	MaxConcurrency int

	// Recorder is optional.
	Recorder OperationRecorder
	Logger   zerolog.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(cfg QueryHandlerConfig) *QueryHandler {
	h := &QueryHandler{
		users:          cfg.UserService,
		topics:         cfg.TopicService,
		posts:          cfg.PostService,
		comments:       cfg.CommentService,
		maxConcurrency: cfg.MaxConcurrency,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger.With().Str("handler", "query").Logger(),
	}
	h.operations = h.operationTable()
	return h
}

// ServeHTTP decodes a document, resolves its operations and writes the
// combined response. Only a document that cannot be parsed yields a non-200 status.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.logger.Debug().Err(err).Msg("document rejected")
		writeJSON(w, status, Response{Errors: []ErrorEntry{documentError(CodeValidation, err.Error())}})
		return
	}

	writeJSON(w, http.StatusOK, h.Execute(r.Context(), doc))
}

// Execute resolves every operation of doc against the caller stored in ctx.
func (h *QueryHandler) Execute(ctx context.Context, doc *Document) Response {
	rc := auth.FromContext(ctx)
	results := make([]opResult, len(doc.Operations))

	if doc.Type == DocumentQuery {
		var g errgroup.Group
		if h.maxConcurrency > 0 {
			g.SetLimit(h.maxConcurrency)
		}
		for i, op := range doc.Operations {
			g.Go(func() error {
				results[i] = h.run(ctx, rc, doc.Type, op)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, op := range doc.Operations {
			results[i] = h.run(ctx, rc, doc.Type, op)
		}
	}

	resp := Response{Data: make(map[string]any, len(results))}
	for i, res := range results {
		key := doc.Operations[i].Key()
		if res.err != nil {
			resp.Data[key] = nil
			resp.Errors = append(resp.Errors, newErrorEntry(key, res.err))
			continue
		}
		resp.Data[key] = res.value
	}
	return resp
}

type opResult struct {
	value any
	err   error
}

// run resolves one operation and records its outcome.
func (h *QueryHandler) run(ctx context.Context, rc *auth.RequestContext, kind DocumentType, req OperationRequest) (res opResult) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			h.logger.Error().
				Str("operation", req.Name).
				Str("request_id", rc.RequestID).
				Interface("panic", p).
				Msg("operation panicked")
			res = opResult{err: fmt.Errorf("operation %s panicked", req.Name)}
		}
		h.record(req.Name, res.err, time.Since(start))
	}()

	value, err := h.resolve(ctx, rc, kind, req)
	if err != nil {
		ext := classify(err)
		event := h.logger.Debug()
		if ext.Code == CodeInternal {
			event = h.logger.Error()
		}
		event.Err(err).
			Str("operation", req.Name).
			Str("code", ext.Code).
			Str("request_id", rc.RequestID).
			Msg("operation failed")
		return opResult{err: err}
	}
	return opResult{value: value}
}

func (h *QueryHandler) resolve(ctx context.Context, rc *auth.RequestContext, kind DocumentType, req OperationRequest) (any, error) {
	op, ok := h.operations[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, req.Name)
	}
	if op.kind != kind {
		return nil, domain.NewValidationError("type", fmt.Sprintf("%s is not a %s operation", req.Name, kind))
	}
	if err := authorize(op, rc); err != nil {
		return nil, err
	}
	return op.resolve(ctx, rc, req.Arguments)
}

func (h *QueryHandler) record(name string, err error, elapsed time.Duration) {
	if h.recorder == nil {
		return
	}
	if _, ok := h.operations[name]; !ok {
		name = unknownOperationLabel
	}
	outcome := outcomeOK
	if err != nil {
		outcome = classify(err).Code
	}
	h.recorder.RecordOperation(name, outcome, elapsed)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
