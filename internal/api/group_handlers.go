package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Arthurk12/racha-ai/internal/middleware"
)

type createGroupRequest struct {
	Name      string `json:"name"`
	AdminName string `json:"admin_name"`
	AdminPIN  string `json:"admin_pin"`
}

type joinGroupRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type loginRequest struct {
	UserID string `json:"user_id"`
	PIN    string `json:"pin"`
}

type updatePINRequest struct {
	PIN string `json:"pin"`
}

// sessionResponse is returned by every call that issues a token.
type sessionResponse struct {
	Group *groupView `json:"group,omitempty"`
	User  userView   `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, admin, token, err := s.groups.CreateGroup(r.Context(), req.Name, req.AdminName, req.AdminPIN)
	if err != nil {
		writeError(w, err)
		return
	}

	gv := toGroupView(group)
	writeJSON(w, http.StatusCreated, sessionResponse{Group: &gv, User: toUserView(admin), Token: token})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, users, err := s.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group": toGroupView(group),
		"users": toUserViews(users),
	})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := s.groups.AddUser(r.Context(), chi.URLParam(r, "groupID"), req.Name, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: toUserView(user), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := s.groups.Login(r.Context(), chi.URLParam(r, "groupID"), req.UserID, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: toUserView(user), Token: token})
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := s.groups.RemoveUser(ctx, chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePIN(w http.ResponseWriter, r *http.Request) {
	var req updatePINRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	err := s.groups.UpdatePIN(ctx, chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "userID"), req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := s.groups.ResetPIN(ctx, chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFinished(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := s.groups.ToggleFinished(ctx, chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}
