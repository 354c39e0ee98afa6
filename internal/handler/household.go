package handler

import (
	"net/http"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/validate"
)

type HouseholdHandler struct {
	Deps
}

func NewHouseholdHandler(d Deps) *HouseholdHandler {
	return &HouseholdHandler{Deps: d}
}

// Get serves GET /api/household?id= or ?email=, both naming the user.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.queryLookup(w, r)
	if !ok {
		return
	}
	p := auth.FromContext(r.Context())
	if q.email != "" {
		respond(h.Deps, w, h.Service.GetHouseholdByUserEmail(r.Context(), p, q.email), "household")
		return
	}
	respond(h.Deps, w, h.Service.GetHouseholdByUserID(r.Context(), p, q.id), "household")
}

func (h *HouseholdHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetHouseholdByID(r.Context(), auth.FromContext(r.Context()), id), "household")
}

func (h *HouseholdHandler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetHouseholdByUserID(r.Context(), auth.FromContext(r.Context()), id), "household")
}

func (h *HouseholdHandler) GetByUserEmail(w http.ResponseWriter, r *http.Request) {
	respond(h.Deps, w, h.Service.GetHouseholdByUserEmail(r.Context(), auth.FromContext(r.Context()), r.PathValue("email")), "household")
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validate.HouseholdInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.SaveHousehold(r.Context(), auth.FromContext(r.Context()), in)
	if res.Kind.Success() {
		h.rescope(in.UserID, res.Value.ID)
		h.publish("household", "created", res.Value.ID, res.Value.ID)
	}
	respond(h.Deps, w, res, "household")
}

func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateHouseholdInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.UpdateHousehold(r.Context(), auth.FromContext(r.Context()), in)
	if res.Kind.Success() {
		h.publish("household", "updated", res.Value.ID, res.Value.ID)
	}
	respond(h.Deps, w, res, "household")
}
