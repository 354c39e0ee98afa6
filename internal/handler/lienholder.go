package handler

import (
	"net/http"
	"strings"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/validate"
)

type LienholderHandler struct {
	Deps
}

func NewLienholderHandler(d Deps) *LienholderHandler {
	return &LienholderHandler{Deps: d}
}

// List serves GET /api/lienholder, or a single lienholder with ?name=.
func (h *LienholderHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		respond(h.Deps, w, h.Service.GetLienholderByName(r.Context(), p, name), "lienholder")
		return
	}
	respond(h.Deps, w, h.Service.ListLienholders(r.Context(), p), "lienholders")
}

func (h *LienholderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetLienholderByID(r.Context(), auth.FromContext(r.Context()), id), "lienholder")
}

func (h *LienholderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validate.LienholderInput
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.SaveLienholder(r.Context(), auth.FromContext(r.Context()), in), "lienholder")
}

func (h *LienholderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateLienholderInput
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.UpdateLienholder(r.Context(), auth.FromContext(r.Context()), in), "lienholder")
}

// DeleteByName serves DELETE with a {"name": "..."} body.
func (h *LienholderHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	var in nameBody
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.DeleteLienholderByName(r.Context(), auth.FromContext(r.Context()), in.Name), "")
}

func (h *LienholderHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.DeleteLienholderByID(r.Context(), auth.FromContext(r.Context()), id), "")
}
