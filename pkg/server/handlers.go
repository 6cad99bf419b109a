package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/completion"
	"construct-hq/loom/pkg/providers/mancer"
)

// mancerBackend is the registry key POST /completions/mancer forces.
const mancerBackend = mancer.ConnectionType

// nullBody is sent when a completion produced no result.
var nullBody = json.RawMessage("null")

// PromptResponse is the body of POST /prompt.
type PromptResponse struct {
	Prompt         string   `json:"prompt"`
	Stop           []string `json:"stop"`
	ConnectionID   string   `json:"connection_id"`
	SettingsID     string   `json:"settings_id"`
	Model          string   `json:"model"`
	Character      string   `json:"character,omitempty"`
	Budget         int      `json:"budget"`
	PreambleTokens int      `json:"preamble_tokens"`
	PromptTokens   int      `json:"prompt_tokens"`
	FittedMessages int      `json:"fitted_messages"`
	TotalMessages  int      `json:"total_messages"`
}

// NewPromptResponse summarizes a prepared plan. totalMessages is the
// length of the request's log before fitting.
func NewPromptResponse(plan *completion.Plan, totalMessages int) PromptResponse {
	resp := PromptResponse{
		Prompt:         plan.Assembly.Prompt,
		Stop:           plan.Stop,
		ConnectionID:   plan.Connection.ID,
		SettingsID:     plan.Settings.ID,
		Model:          plan.Connection.Model,
		Budget:         plan.Assembly.Budget,
		PreambleTokens: plan.Assembly.PreambleTokens,
		PromptTokens:   plan.Assembly.PromptTokens,
		FittedMessages: len(plan.Assembly.Fitted),
		TotalMessages:  totalMessages,
	}
	if plan.Character != nil {
		resp.Character = plan.Character.Name
	}
	return resp
}

// BackendStatus is one entry of GET /health/backends.
type BackendStatus struct {
	Name                  string     `json:"name"`
	Healthy               bool       `json:"healthy"`
	LastCheck             *time.Time `json:"last_check,omitempty"`
	LastError             string     `json:"last_error,omitempty"`
	ConsecutiveFailures   int        `json:"consecutive_failures"`
	LastSuccessfulRequest *time.Time `json:"last_successful_request,omitempty"`
	TotalRequests         int64      `json:"total_requests"`
	FailedRequests        int64      `json:"failed_requests"`
}

// decodeRequest reads a completion request body. It writes the error
// answer itself and reports false when the body is unusable.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*chat.CompletionRequest, bool) {
	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	var req chat.CompletionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeInvalidRequest, CodeBodyTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.logger.WarnContext(r.Context(), "invalid completion request", "error", err)
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidJSON, "request body is not a valid completion request")
		return nil, false
	}
	return &req, true
}

// handleCompletion dispatches to the connection's backend, or to
// backendType when it is set.
func (s *Server) handleCompletion(backendType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decodeRequest(w, r)
		if !ok {
			return
		}

		var raw json.RawMessage
		if backendType == "" {
			raw = s.dispatcher.Complete(r.Context(), req)
		} else {
			raw = s.dispatcher.CompleteWith(r.Context(), backendType, req)
		}
		if raw == nil {
			raw = nullBody
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

// handlePrompt assembles the prompt without calling a backend.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	plan, err := s.dispatcher.Prepare(r.Context(), req)
	if err != nil {
		s.logger.WarnContext(r.Context(), "prompt could not be assembled", "error", err)
		writeResolutionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPromptResponse(plan, len(req.Messages)))
}

// handleBackendHealth reports request-outcome health for every backend.
func (s *Server) handleBackendHealth(w http.ResponseWriter, _ *http.Request) {
	backends := s.backends.Backends()
	statuses := make([]BackendStatus, 0, len(backends))
	for _, b := range backends {
		h := b.GetHealth()
		st := BackendStatus{
			Name:                b.GetName(),
			Healthy:             h.IsHealthy,
			ConsecutiveFailures: h.ConsecutiveFailures,
			TotalRequests:       h.TotalRequests,
			FailedRequests:      h.FailedRequests,
		}
		if !h.LastCheck.IsZero() {
			st.LastCheck = &h.LastCheck
		}
		if !h.LastSuccessfulRequest.IsZero() {
			st.LastSuccessfulRequest = &h.LastSuccessfulRequest
		}
		if h.LastError != nil {
			st.LastError = h.LastError.Error()
		}
		statuses = append(statuses, st)
	}
	writeJSON(w, http.StatusOK, map[string]any{"backends": statuses})
}
