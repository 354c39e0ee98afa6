package handler

import (
	"net/http"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/validate"
)

type UserHandler struct {
	Deps
}

func NewUserHandler(d Deps) *UserHandler {
	return &UserHandler{Deps: d}
}

// Get serves GET /api/user?id= or ?email=.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.queryLookup(w, r)
	if !ok {
		return
	}
	p := auth.FromContext(r.Context())
	if q.email != "" {
		respond(h.Deps, w, h.Service.GetUserByEmail(r.Context(), p, q.email), "user")
		return
	}
	respond(h.Deps, w, h.Service.GetUserByID(r.Context(), p, q.id), "user")
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetUserByID(r.Context(), auth.FromContext(r.Context()), id), "user")
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	respond(h.Deps, w, h.Service.GetUserByEmail(r.Context(), auth.FromContext(r.Context()), r.PathValue("email")), "user")
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	respond(h.Deps, w, h.Service.ListUsers(r.Context(), auth.FromContext(r.Context())), "users")
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateUserInput
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.UpdateUser(r.Context(), auth.FromContext(r.Context()), in), "user")
}

// Delete serves DELETE with a {"id": n} body.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var in idBody
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.DeleteUserByID(r.Context(), auth.FromContext(r.Context()), in.ID)
	if res.Kind.Success() {
		h.disconnect(in.ID, "user deleted")
	}
	respond(h.Deps, w, res, "")
}
