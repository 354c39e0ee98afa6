package handler

import (
	"net/http"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/validate"
)

type RecordHandler struct {
	Deps
}

func NewRecordHandler(d Deps) *RecordHandler {
	return &RecordHandler{Deps: d}
}

func (h *RecordHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetRecordByID(r.Context(), auth.FromContext(r.Context()), id), "record")
}

func (h *RecordHandler) ListByHousehold(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetRecordsUnderHouseholdID(r.Context(), auth.FromContext(r.Context()), id), "records")
}

// ListByUser serves GET /api/record/user?id= or ?email=.
func (h *RecordHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	q, ok := h.queryLookup(w, r)
	if !ok {
		return
	}
	p := auth.FromContext(r.Context())
	if q.email != "" {
		respond(h.Deps, w, h.Service.GetRecordsUnderUserEmail(r.Context(), p, q.email), "records")
		return
	}
	respond(h.Deps, w, h.Service.GetRecordsUnderUserID(r.Context(), p, q.id), "records")
}

func (h *RecordHandler) ListByUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetRecordsUnderUserID(r.Context(), auth.FromContext(r.Context()), id), "records")
}

func (h *RecordHandler) ListByUserEmail(w http.ResponseWriter, r *http.Request) {
	respond(h.Deps, w, h.Service.GetRecordsUnderUserEmail(r.Context(), auth.FromContext(r.Context()), r.PathValue("email")), "records")
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validate.RecordInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.SaveRecord(r.Context(), auth.FromContext(r.Context()), in)
	if res.Kind.Success() {
		h.publish("record", "created", res.Value.ID, res.Value.HouseholdID)
	}
	respond(h.Deps, w, res, "record")
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateRecordInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.UpdateRecord(r.Context(), auth.FromContext(r.Context()), in)
	if res.Kind.Success() {
		h.publish("record", "updated", res.Value.ID, res.Value.HouseholdID)
	}
	respond(h.Deps, w, res, "record")
}

// Delete looks the record up first so the change can be published to its
// household.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p := auth.FromContext(r.Context())
	var householdID int64
	if rec := h.Service.GetRecordByID(r.Context(), p, id); rec.Kind.Success() {
		householdID = rec.Value.HouseholdID
	}
	res := h.Service.DeleteRecordByID(r.Context(), p, id)
	if res.Kind.Success() {
		h.publish("record", "deleted", id, householdID)
	}
	respond(h.Deps, w, res, "")
}

func (h *RecordHandler) DeleteByHousehold(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	res := h.Service.DeleteRecordsUnderHouseholdID(r.Context(), auth.FromContext(r.Context()), id)
	if res.Kind.Success() {
		h.publish("record", "deleted", 0, id)
	}
	respond(h.Deps, w, res, "deleted")
}
