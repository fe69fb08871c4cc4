package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Promethee/internal/document"
	"github.com/MikeSquared-Agency/Promethee/internal/runner"
)

// Evaluator runs an operation synchronously.
type Evaluator interface {
	Execute(ctx context.Context, op runner.Operation, p *document.Problem) (runner.Result, error)
}

type EvaluateHandler struct {
	eval    Evaluator
	maxBody int64
}

func NewEvaluateHandler(e Evaluator, maxBody int64) *EvaluateHandler {
	return &EvaluateHandler{eval: e, maxBody: maxBody}
}

type EvaluateResponse struct {
	Operation runner.Operation `json:"operation"`
	Result    runner.Result    `json:"result"`
}

type ProblemResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	op, err := runner.ParseOperation(chi.URLParam(r, "operation"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":      err.Error(),
			"operations": runner.Operations,
		})
		return
	}

	body, err := readBody(w, r, h.maxBody)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	p, err := document.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.eval.Execute(r.Context(), op, p)
	if err != nil {
		writeExecuteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{Operation: op, Result: res})
}

func writeExecuteError(w http.ResponseWriter, err error) {
	switch {
	case runner.IsInvalid(err):
		writeJSON(w, http.StatusUnprocessableEntity, ProblemResponse{
			Error:    "invalid problem",
			Problems: runner.Problems(err),
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
