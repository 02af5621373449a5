// Package handlers provides the HTTP handlers for the plan and memoria API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/SandraS2611/agrimensores-sde/internal/logfields"
)

// writeJSON marshals v and writes it with the given status. The body is
// marshalled fully before any header is sent, so a serialization failure
// never produces a partial response. A pretty=1 (or pretty=true) query
// parameter switches to indented output.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var (
		body []byte
		err  error
	)
	if wantsPretty(r) {
		body, err = json.MarshalIndent(v, "", "  ")
	} else {
		body, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}

func wantsPretty(r *http.Request) bool {
	if r == nil {
		return false
	}
	p := r.URL.Query().Get("pretty")
	return p == "1" || p == "true"
}
