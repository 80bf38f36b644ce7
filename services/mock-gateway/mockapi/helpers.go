package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Issue is one entry of a validation error list.
type Issue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeIssues(w http.ResponseWriter, issues []Issue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]Issue{"detail": issues})
}

func missing(field string) Issue {
	return Issue{Loc: []string{"body", field}, Msg: "field required", Type: "value_error.missing"}
}

func invalid(field, msg string) Issue {
	return Issue{Loc: []string{"body", field}, Msg: msg, Type: "value_error"}
}

// decode reads a JSON body into dst; an empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeIssues(w, []Issue{{Loc: []string{"body"}, Msg: "invalid JSON body", Type: "value_error.jsondecode"}})
	return false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeIssues(w, []Issue{{Loc: []string{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// window slices items by skip/limit and returns the page number they correspond to.
func window[T any](items []T, skip, limit int) ([]T, int) {
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}
	page := skip/limit + 1
	if skip >= len(items) {
		return []T{}, page
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end], page
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
