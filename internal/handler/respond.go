package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/census/internal/service"
	"github.com/dukerupert/census/internal/validate"
	"github.com/dukerupert/census/internal/websocket"
)

// Publisher receives change notifications for a household and follows
// users as they move between households.
type Publisher interface {
	Publish(householdID int64, msg websocket.Message)
	Rescope(userID, householdID int64)
	Disconnect(userID int64, reason string)
}

// Deps are shared by every handler.
type Deps struct {
	Service     *service.Service
	Hub         Publisher
	DebugErrors bool
	Logger      *slog.Logger
}

func (d Deps) publish(entity, action string, id, householdID int64) {
	if d.Hub == nil || householdID == 0 {
		return
	}
	d.Hub.Publish(householdID, websocket.HouseholdMessage(entity, action, id, householdID))
}

func (d Deps) rescope(userID, householdID int64) {
	if d.Hub == nil {
		return
	}
	d.Hub.Rescope(userID, householdID)
}

func (d Deps) disconnect(userID int64, reason string) {
	if d.Hub == nil {
		return
	}
	d.Hub.Disconnect(userID, reason)
}

// Status maps an operation outcome onto an HTTP status code.
func Status(k service.Kind) int {
	switch k {
	case service.OK:
		return http.StatusOK
	case service.Created:
		return http.StatusCreated
	case service.ValidationFailed:
		return http.StatusBadRequest
	case service.AuthenticationRequired:
		return http.StatusUnauthorized
	case service.Denied:
		return http.StatusForbidden
	case service.NotFound:
		return http.StatusNotFound
	case service.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond writes res as a JSON body. The value goes under key on success and
// on a partial write; key may be empty for operations without a payload.
func respond[T any](d Deps, w http.ResponseWriter, res service.Result[T], key string) {
	body := map[string]any{}
	if res.Kind.Success() {
		body["success"] = res.Message
	} else {
		body["error"] = res.Message
		if len(res.Fields) > 0 {
			body["data"] = res.Fields
		}
		if d.DebugErrors && res.Detail != "" {
			body["db_error"] = res.Detail
		}
	}
	if key != "" && (res.Kind.Success() || res.Kind == service.PartiallyApplied) {
		body[key] = res.Value
	}
	d.writeJSON(w, Status(res.Kind), body)
}

// writeJSON encodes v with status. The header is already sent when encoding
// fails, so the failure is only logged.
func (d Deps) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && d.Logger != nil {
		d.Logger.Error("encode response", "status", status, "error", err)
	}
}

func (d Deps) writeInvalid(w http.ResponseWriter, fields []validate.FieldError) {
	d.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid fields", "data": fields})
}

// decode reads the request body into dst and answers 400 when it is not a
// JSON object of the right shape.
func (d Deps) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if fields := validate.Decode(r.Body, dst); fields != nil {
		d.writeInvalid(w, fields)
		return false
	}
	return true
}

// pathID parses the {id} path value. Non-numeric ids answer 400.
func (d Deps) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		d.writeInvalid(w, []validate.FieldError{{Field: "id", Reason: "must be a number"}})
		return 0, false
	}
	return id, true
}

// lookup is the ?id= or ?email= query of the collection GET routes.
type lookup struct {
	id    int64
	email string
}

// queryLookup reads ?id=, falling back to ?email=. At least one is required.
func (d Deps) queryLookup(w http.ResponseWriter, r *http.Request) (lookup, bool) {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			d.writeInvalid(w, []validate.FieldError{{Field: "id", Reason: "must be a number"}})
			return lookup{}, false
		}
		return lookup{id: id}, true
	}
	if email := strings.TrimSpace(q.Get("email")); email != "" {
		return lookup{email: email}, true
	}
	d.writeInvalid(w, []validate.FieldError{{Field: "id", Reason: "at least one query parameter required, id or email"}})
	return lookup{}, false
}

type idBody struct {
	ID int64 `json:"id"`
}

type nameBody struct {
	Name string `json:"name"`
}
