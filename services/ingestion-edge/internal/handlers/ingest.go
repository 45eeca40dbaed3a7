// Package handlers implements the ingestion edge's HTTP handlers.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truesight/shared-go/errortypes"
	"github.com/truesight/shared-go/queue"

	"github.com/truesight/services/ingestion-edge/internal/event"
	imiddleware "github.com/truesight/services/ingestion-edge/internal/middleware"
)

// IngestHandler serves POST /v1/events/batch.
type IngestHandler struct {
	Queue       *queue.Client
	QueueURL    string
	Logger      *zap.Logger
}

type ingestResponse struct {
	Accepted  int    `json:"accepted"`
	RequestID string `json:"request_id"`
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := imiddleware.RequestIDFromContext(ctx)
	projectID := imiddleware.ProjectIDFromContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "failed to read request body",
			errortypes.WithRequestID(reqID)))
		return
	}
	if err := event.ValidateBodySize(body); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodePayloadTooLarge, err.Error(),
			errortypes.WithRequestID(reqID)))
		return
	}

	var batch event.BatchRequest
	if err := json.Unmarshal(body, &batch); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "malformed request body",
			errortypes.WithRequestID(reqID)))
		return
	}

	if errs := event.ValidateBatch(&batch); len(errs) > 0 {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, errs[0],
			errortypes.WithRequestID(reqID)))
		return
	}

	now := time.Now().UTC()
	var validationErrs []string
	for i := range batch.Batch {
		validationErrs = append(validationErrs, event.Validate(&batch.Batch[i], now)...)
	}
	if len(validationErrs) > 0 {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, strings.Join(validationErrs, "; "),
			errortypes.WithRequestID(reqID)))
		return
	}

	projectUUID, err := uuid.Parse(projectID)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeInternal, "invalid project context",
			errortypes.WithRequestID(reqID)))
		return
	}

	serverTimestamp := now
	bodies := make([]string, 0, len(batch.Batch))
	attrs := make([]queue.EventAttributes, 0, len(batch.Batch))
	for _, e := range batch.Batch {
		enriched := event.EnrichedEvent{
			IngestEvent:     e,
			ProjectID:       projectUUID,
			ServerTimestamp: serverTimestamp,
		}
		body, err := json.Marshal(enriched)
		if err != nil {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodeInternal, "failed to serialize event",
				errortypes.WithRequestID(reqID)))
			return
		}
		bodies = append(bodies, string(body))
		attrs = append(attrs, queue.EventAttributes{
			ProjectID: projectID,
			EventType: e.EventType.String(),
			EventID:   e.EventID.String(),
		})
	}

	if err := h.Queue.SendBatch(ctx, h.QueueURL, bodies, attrs); err != nil {
		h.Logger.Error("enqueue batch failed", zap.String("request_id", reqID), zap.Error(err))
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeSQS, "failed to enqueue events",
			errortypes.WithRequestID(reqID)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(ingestResponse{
		Accepted:  len(batch.Batch),
		RequestID: reqID,
	})
}
