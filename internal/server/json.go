package server

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/commitfind/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": message})
}

// writeDomainError maps a domain error to the HTTP status spec.md §7 fixes
// for each kind, falling back to 500 for anything that is not a tagged
// *errs.Error.
func writeDomainError(w http.ResponseWriter, err error) {
	e, ok := errs.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case errs.KindLocked:
		status = http.StatusLocked
	case errs.KindValidationFailure, errs.KindParseFailure:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"detail": e.Error()})
}
