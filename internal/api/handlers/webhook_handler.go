package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/engine/provisioning"
	"github.com/benreeder-coder/clienthub/internal/integrations/pandadoc"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
)

// maxWebhookBody bounds unauthenticated request bodies.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	client       *pandadoc.Client
	provisioning *provisioning.Service
}

func NewWebhookHandler(client *pandadoc.Client, provisioning *provisioning.Service) *WebhookHandler {
	return &WebhookHandler{client: client, provisioning: provisioning}
}

// HandlePandaDoc is the public, signature-gated contract webhook. The
// signature arrives as a query parameter over the raw body.
func (h *WebhookHandler) HandlePandaDoc(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	signature := r.URL.Query().Get("signature")
	if !h.client.VerifySignature(body, signature) {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid webhook signature", nil)
		return
	}

	payload, err := pandadoc.ParsePayload(body)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Malformed webhook payload", nil)
		return
	}

	if !pandadoc.IsDocumentCompleted(payload) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ignored"})
		return
	}

	result, appErr := h.provisioning.ProvisionFromDocument(payload.Data.ID)
	if appErr != nil {
		log.Error().Err(appErr).Str("document_id", payload.Data.ID).Msg("contract provisioning failed")
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
