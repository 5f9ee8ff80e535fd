package http

import (
	"net/http"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// SessionsHandler lists recorded device sessions: a principal's own via
// GET /v1/sessions, all of them via the admin listing.
type SessionsHandler struct {
	AccountService *service.AccountService
	Store          store.Store
}

type deviceSessionResponse struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	DeviceType  string    `json:"device_type"`
	DeviceID    string    `json:"device_id,omitempty"`
	DeviceName  string    `json:"device_name,omitempty"`
	IP          string    `json:"ip"`
	AppVersion  string    `json:"app_version,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Activity    string    `json:"activity"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *SessionsHandler) HandleOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.AccountService.Sessions(ctx, claims.Subject)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list sessions", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"sessions": toSessionResponses(sessions)})
}

func (h *SessionsHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.Store.DeviceSessions().List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list sessions", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"sessions": toSessionResponses(sessions)})
}

func toSessionResponses(sessions []domain.DeviceSession) []deviceSessionResponse {
	out := make([]deviceSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, deviceSessionResponse{
			ID:          s.ID,
			PrincipalID: s.PrincipalID,
			DeviceType:  string(s.DeviceType),
			DeviceID:    s.DeviceID,
			DeviceName:  s.DeviceName,
			IP:          s.IP,
			AppVersion:  s.AppVersion,
			Timezone:    s.Timezone,
			Activity:    s.Activity,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}
