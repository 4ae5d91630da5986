package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/pkg/convert"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    convert.ErrorKind `json:"kind"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
	Allowed []string          `json:"allowed,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req convert.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WarnContext(ctx, "request body too large", "limit", s.maxBody)
			writeError(w, http.StatusRequestEntityTooLarge, errorDetail{
				Kind:    convert.KindValidation,
				Message: fmt.Sprintf("Request body exceeds %s", humanize.Bytes(uint64(s.maxBody))),
			})
			return
		}
		logger.WarnContext(ctx, "malformed request body", "error", err)
		writeError(w, http.StatusBadRequest, errorDetail{
			Kind:    convert.KindValidation,
			Message: "Request body must be a JSON object",
		})
		return
	}

	result, err := s.pipeline.Convert(req)
	if err != nil {
		status, detail := errorResponse(err)
		logger.WarnContext(ctx, "conversion failed", "status", status, "kind", detail.Kind, "error", err)
		writeError(w, status, detail)
		return
	}

	logger.DebugContext(ctx, "conversion complete", "route", result.Route.String())
	if result.Document != nil {
		writeJSON(w, http.StatusOK, result.Document)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Markdown))
}

// errorResponse maps a conversion error to a status code and body.
func errorResponse(err error) (int, errorDetail) {
	var verr *convert.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorDetail{
			Kind:    convert.KindValidation,
			Field:   verr.Field,
			Message: verr.Message,
			Allowed: verr.Allowed,
		}
	}
	var perr *convert.ParseError
	if errors.As(err, &perr) {
		return http.StatusUnprocessableEntity, errorDetail{
			Kind:    convert.KindParse,
			Message: perr.Error(),
		}
	}
	return http.StatusInternalServerError, errorDetail{
		Kind:    "internal",
		Message: "internal error",
	}
}

func writeError(w http.ResponseWriter, status int, detail errorDetail) {
	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
