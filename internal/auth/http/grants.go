package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// GrantsHandler administers role-section-permission grants.
type GrantsHandler struct {
	PermissionService *service.PermissionService
}

type grantResponse struct {
	ID           string    `json:"id"`
	RoleID       string    `json:"role_id"`
	SectionID    string    `json:"section_id"`
	PermissionID string    `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *GrantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	grants, err := h.PermissionService.ListGrants(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list grants", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantResponse{
			ID:           g.ID,
			RoleID:       g.RoleID,
			SectionID:    g.SectionID,
			PermissionID: g.PermissionID,
			CreatedAt:    g.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"grants": out})
}

func (h *GrantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.GrantInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" || req.Section == "" || req.Permission == "" {
		httpx.WriteError(w, http.StatusBadRequest, "role, section and permission are required")
		return
	}

	g, err := h.PermissionService.CreateGrant(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReference) {
			httpx.WriteError(w, http.StatusBadRequest, "unknown role, section or permission")
			return
		}
		slogx.FromContext(ctx).Error("failed to create grant", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, grantResponse{
		ID:           g.ID,
		RoleID:       g.RoleID,
		SectionID:    g.SectionID,
		PermissionID: g.PermissionID,
		CreatedAt:    g.CreatedAt,
	})
}
