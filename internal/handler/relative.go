package handler

import (
	"net/http"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/service"
	"github.com/dukerupert/census/internal/validate"
)

type RelativeHandler struct {
	Deps
}

func NewRelativeHandler(d Deps) *RelativeHandler {
	return &RelativeHandler{Deps: d}
}

func (h *RelativeHandler) ListByUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetRelativesUnderUserID(r.Context(), auth.FromContext(r.Context()), id), "relatives")
}

func (h *RelativeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validate.RelativeInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.SaveRelative(r.Context(), auth.FromContext(r.Context()), in)
	h.publishRelative(r, "created", res)
	respond(h.Deps, w, res, "relative")
}

func (h *RelativeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateRelativeInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.UpdateRelative(r.Context(), auth.FromContext(r.Context()), in)
	h.publishRelative(r, "updated", res)
	respond(h.Deps, w, res, "relative")
}

// publishRelative announces a relative change to the household of its
// record.
func (h *RelativeHandler) publishRelative(r *http.Request, action string, res service.Result[*model.Relative]) {
	if !res.Kind.Success() {
		return
	}
	rec := h.Service.GetRecordByID(r.Context(), auth.FromContext(r.Context()), res.Value.RecordID)
	if rec.Kind.Success() {
		h.publish("relative", action, res.Value.ID, rec.Value.HouseholdID)
	}
}

// ListWithRecords serves GET /api/record/relative and
// /api/record/relative/user with ?id= or ?email=.
func (h *RelativeHandler) ListWithRecords(w http.ResponseWriter, r *http.Request) {
	q, ok := h.queryLookup(w, r)
	if !ok {
		return
	}
	p := auth.FromContext(r.Context())
	if q.email != "" {
		respond(h.Deps, w, h.Service.GetRecordsWithRelativesUnderUserEmail(r.Context(), p, q.email), "recordsWithRelationship")
		return
	}
	respond(h.Deps, w, h.Service.GetRecordsWithRelativesUnderUserID(r.Context(), p, q.id), "recordsWithRelationship")
}

func (h *RelativeHandler) ListWithRecordsByUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	respond(h.Deps, w, h.Service.GetRecordsWithRelativesUnderUserID(r.Context(), auth.FromContext(r.Context()), id), "recordsWithRelationship")
}

func (h *RelativeHandler) ListWithRecordsByUserEmail(w http.ResponseWriter, r *http.Request) {
	respond(h.Deps, w, h.Service.GetRecordsWithRelativesUnderUserEmail(r.Context(), auth.FromContext(r.Context()), r.PathValue("email")), "recordsWithRelationship")
}

func (h *RelativeHandler) CreateWithRecord(w http.ResponseWriter, r *http.Request) {
	var in validate.RecordWithRelationshipInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.SaveRecordWithRelationship(r.Context(), auth.FromContext(r.Context()), in)
	h.publishWithRecord("created", res)
	respond(h.Deps, w, res, "recordWithRelationship")
}

func (h *RelativeHandler) UpdateWithRecord(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdateRecordWithRelationshipInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.UpdateRecordWithRelationship(r.Context(), auth.FromContext(r.Context()), in)
	h.publishWithRecord("updated", res)
	respond(h.Deps, w, res, "recordWithRelationship")
}

// publishWithRecord announces the record of a composite write, including
// one that was only partially applied.
func (h *RelativeHandler) publishWithRecord(action string, res service.Result[*model.RecordWithRelationship]) {
	if res.Value == nil {
		return
	}
	h.publish("record", action, res.Value.Record.ID, res.Value.Record.HouseholdID)
	if res.Value.Relative != nil && res.Kind.Success() {
		h.publish("relative", action, res.Value.Relative.ID, res.Value.Record.HouseholdID)
	}
}
