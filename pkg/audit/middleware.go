package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Appender persists audit events. Satisfied by *Store.
type Appender interface {
	Append(ctx context.Context, e *Event) error
}

// AuditMiddleware records an Event for every mutating request after the
// handler completes. Write failures are logged and never fail the request.
// It must run after identity resolution so the actor is known.
func AuditMiddleware(store Appender, cfg *Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil || !cfg.Enabled || store == nil || !isAuditedRequest(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			startTime := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			outcome := outcomeFromStatus(statusCode)
			if outcome == OutcomeDenied && !cfg.RecordDenied {
				return
			}

			ctx := r.Context()
			actor := "anonymous"
			var groups []string
			if id, ok := identity.FromContext(ctx); ok {
				actor = id.OwnerID
				groups = id.Groups
			}

			requestID := middleware.GetReqID(ctx)
			correlationID := r.Header.Get("X-Correlation-ID")
			if correlationID == "" {
				correlationID = requestID
			}

			event := &Event{
				Actor:         actor,
				CorrelationID: correlationID,
				RequestID:     requestID,
				ResourceType:  extractResourceType(r.URL.Path),
				ResourceID:    extractResourceID(r.URL.Path),
				Action:        extractActionVerb(r.Method, r.URL.Path),
				Outcome:       outcome,
				StatusCode:    statusCode,
				CreatedAt:     startTime,
				Metadata: map[string]any{
					"method":   r.Method,
					"path":     r.URL.Path,
					"duration": time.Since(startTime).String(),
					"groups":   groups,
				},
			}

			// Detached so a cancelled client does not drop the record.
			if err := store.Append(context.WithoutCancel(ctx), event); err != nil {
				logger.Error("failed to write audit event", "error", err, "requestID", requestID)
			}
		})
	}
}
