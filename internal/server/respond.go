package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/kineograph/kineograph/pkg/errors"
	"github.com/kineograph/kineograph/pkg/graph"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error: errorBody{
			Code:    string(code),
			Message: errors.UserMessage(err),
		},
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidMode,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidOptions,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeDegenerateMass,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeRunNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func readGraph(raw json.RawMessage) (*graph.Graph, error) {
	g, err := graph.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return g, nil
}
