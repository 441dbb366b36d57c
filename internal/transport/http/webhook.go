package http

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/gateway"
)

// ConfirmationSink consumes parsed confirmation events.
type ConfirmationSink interface {
	HandleConfirmation(ctx context.Context, ev gateway.Event) error
}

// maxWebhookBody bounds how much the untrusted sender can make us read.
const maxWebhookBody = 1 << 20

// HandleConfirmationWebhook is the sink for the gateway's push callbacks.
// The sender is untrusted: the handler acknowledges success for everything
// it could read, including events that fail validation or are discarded by
// the reconciler, and never exposes internal state. Only a dependency
// failure gets a 5xx, which is the sender's cue to redeliver.
func HandleConfirmationWebhook(sink ConfirmationSink, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		ev, err := gateway.ParseEvent(body)
		if err != nil {
			logger.Info("webhook discarded", zap.String("reason", "unparseable event"))
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}

		if err := sink.HandleConfirmation(r.Context(), ev); err != nil {
			logger.Error("confirmation handling failed",
				zap.String("correlation_id", ev.CorrelationID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
