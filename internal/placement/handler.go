// HTTP surface of the placement service.
//
// Actor identity arrives in x-actor-id / x-actor-party headers forwarded by
// the gateway; role authorization is assumed pre-checked by the caller.
//
// Routes:
//
//	POST /trainees                     → register trainee
//	POST /companies                    → register company
//	POST /companies/{id}/state         → set company state (staff)
//	POST /applications                 → create application (eligibility gated)
//	GET  /applications?trainee=|company=[&state=] → list + per-state summary
//	GET  /applications/{id}            → fetch one (opportunistic expiry)
//	GET  /applications/{id}/deadline   → deadline view
//	GET  /applications/{id}/history    → history, newest first
//	POST /applications/{id}/select     → company selects
//	POST /applications/{id}/reject     → company rejects
//	POST /applications/{id}/hire       → company hires
//	POST /applications/{id}/note       → either party records an observation
package placement

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all placement routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/trainees", h.handleTrainees)
	mux.HandleFunc("/companies", h.handleCompanies)
	mux.HandleFunc("/companies/", h.handleCompanyByID)
	mux.HandleFunc("/applications", h.handleApplications)
	mux.HandleFunc("/applications/", h.handleApplicationByID)
}

// actorFrom reads the forwarded actor headers. A missing id yields the
// system actor; state-changing handlers reject that themselves when needed.
func actorFrom(r *http.Request) Actor {
	return Actor{
		ID:    r.Header.Get("x-actor-id"),
		Party: Party(r.Header.Get("x-actor-party")),
	}
}

// ─── Registration ────────────────────────────────────────────────────────────

func (h *Handler) handleTrainees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var t Trainee
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.RegisterTrainee(r.Context(), &t)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonStatus(w, created, http.StatusCreated)
}

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var c Company
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.RegisterCompany(r.Context(), &c)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonStatus(w, created, http.StatusCreated)
}

// handleCompanyByID dispatches /companies/{id}/state.
func (h *Handler) handleCompanyByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "state" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	state, err := ParseCompanyState(body.State)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	company, err := h.svc.UpdateCompanyState(r.Context(), parts[1], state)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, company)
}

// ─── Applications ────────────────────────────────────────────────────────────

// handleApplications handles GET and POST /applications.
func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listApplications(w, r)
	case http.MethodPost:
		h.createApplication(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	var (
		apps    []Application
		summary Summary
		err     error
	)
	switch {
	case r.URL.Query().Get("trainee") != "":
		apps, summary, err = h.svc.TraineeApplications(r.Context(), r.URL.Query().Get("trainee"))
	case r.URL.Query().Get("company") != "":
		apps, summary, err = h.svc.CompanyApplications(r.Context(), r.URL.Query().Get("company"))
	default:
		jsonError(w, "trainee or company query parameter is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	// Optional state filter narrows the list; the summary keeps counting the
	// full set.
	if raw := r.URL.Query().Get("state"); raw != "" {
		state, perr := ParseApplicationState(raw)
		if perr != nil {
			jsonError(w, perr.Error(), http.StatusBadRequest)
			return
		}
		filtered := make([]Application, 0, len(apps))
		for _, a := range apps {
			if a.State == state {
				filtered = append(filtered, a)
			}
		}
		apps = filtered
	}
	jsonOK(w, map[string]any{"applications": apps, "summary": summary})
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TraineeID string `json:"traineeId"`
		CompanyID string `json:"companyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TraineeID == "" || body.CompanyID == "" {
		jsonError(w, "body must contain traineeId and companyId", http.StatusBadRequest)
		return
	}
	app, err := h.svc.CreateApplication(r.Context(), body.TraineeID, body.CompanyID, actorFrom(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonStatus(w, app, http.StatusCreated)
}

// handleApplicationByID dispatches /applications/{id}[/{action}].
func (h *Handler) handleApplicationByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch len(parts) {
	case 2:
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getApplication(w, r, parts[1])
	case 3:
		h.applicationAction(w, r, parts[1], parts[2])
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request, appID string) {
	app, err := h.svc.GetApplication(r.Context(), appID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) applicationAction(w http.ResponseWriter, r *http.Request, appID, action string) {
	switch action {
	case "deadline":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.deadlineView(w, r, appID)
		return
	case "history":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.history(w, r, appID)
		return
	}

	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// URL segments use the short "note" form; ParseAction validates the rest
	// and keeps expire unreachable. The internal add_note spelling is not a
	// route.
	raw := action
	switch raw {
	case "note":
		raw = string(ActionAddNote)
	case string(ActionAddNote):
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		return
	}
	domainAction, err := ParseAction(raw)
	if err != nil {
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		return
	}

	actor := actorFrom(r)
	if actor.IsSystem() {
		jsonError(w, "missing x-actor-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		Comment string `json:"comment"`
	}
	if r.Body != nil {
		// Empty bodies are fine for select/reject/hire.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	app, err := h.svc.Transition(r.Context(), appID, domainAction, actor, body.Comment)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) deadlineView(w http.ResponseWriter, r *http.Request, appID string) {
	app, err := h.svc.GetApplication(r.Context(), appID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, h.svc.ComputeDeadlineView(app, h.svc.now()))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, appID string) {
	entries, err := h.svc.History(r.Context(), appID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	jsonOK(w, entries)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// writeErr maps domain errors to HTTP responses. Validation errors carry
// their stable code; anything unexpected is a 500 without detail.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": ve.Msg, "code": ve.Code})
		return
	}
	log.Printf("[placement] internal error: %v", err)
	jsonError(w, "internal server error", http.StatusInternalServerError)
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, v, http.StatusOK)
}

func jsonStatus(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
