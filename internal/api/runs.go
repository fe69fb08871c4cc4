package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
	"github.com/MikeSquared-Agency/Promethee/internal/runner"
	"github.com/MikeSquared-Agency/Promethee/internal/store"
)

// Submitter queues asynchronous runs.
type Submitter interface {
	Submit(ctx context.Context, op runner.Operation, requester string, data []byte) (*store.Run, error)
}

type RunsHandler struct {
	store   store.Store
	submit  Submitter
	maxBody int64
}

func NewRunsHandler(s store.Store, sub Submitter, maxBody int64) *RunsHandler {
	return &RunsHandler{store: s, submit: sub, maxBody: maxBody}
}

func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	op, err := runner.ParseOperation(r.URL.Query().Get("operation"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := readBody(w, r, h.maxBody)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	run, err := h.submit.Submit(r.Context(), op, r.Header.Get(clientIDHeader), body)
	if err != nil {
		if errors.Is(err, promethee.ErrInvalidInputs) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Operation: q.Get("operation"),
		Requester: q.Get("requester"),
	}
	if s := q.Get("status"); s != "" {
		status := store.RunStatus(s)
		filter.Status = &status
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}
