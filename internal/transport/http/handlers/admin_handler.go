package handlers

import (
	"context"
	"net/http"

	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

type LifecycleJob interface {
	Run(ctx context.Context) error
}

// AdminHandler exposes on-demand lifecycle triggers. The same jobs run
// on timers in the jobs binary; these endpoints exist for operators.
type AdminHandler struct {
	generator LifecycleJob
	creator   LifecycleJob
	expirer   LifecycleJob
}

func NewAdminHandler(generator, creator, expirer LifecycleJob) *AdminHandler {
	return &AdminHandler{
		generator: generator,
		creator:   creator,
		expirer:   expirer,
	}
}

func (h *AdminHandler) GenerateMatches(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.generator, "generator")
}

// GenerateOnDemand tops up the queue and immediately promotes queued
// pairs to voting. Safe to trigger redundantly: both jobs no-op above
// their floors.
func (h *AdminHandler) GenerateOnDemand(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil || h.creator == nil {
		writeInternal(w, "JOB_UNAVAILABLE", "lifecycle jobs are unavailable")
		return
	}

	if err := h.generator.Run(r.Context()); err != nil {
		writeInternal(w, "JOB_FAILED", "generator job failed")
		return
	}
	if err := h.creator.Run(r.Context()); err != nil {
		writeInternal(w, "JOB_FAILED", "creator job failed")
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *AdminHandler) PromoteProposals(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.creator, "creator")
}

func (h *AdminHandler) ExpireProposals(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.expirer, "expirer")
}

func (h *AdminHandler) runJob(w http.ResponseWriter, r *http.Request, job LifecycleJob, name string) {
	if job == nil {
		writeInternal(w, "JOB_UNAVAILABLE", name+" job is unavailable")
		return
	}

	if err := job.Run(r.Context()); err != nil {
		writeInternal(w, "JOB_FAILED", name+" job failed")
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK  bool   `json:"ok"`
		Job string `json:"job"`
	}{OK: true, Job: name})
}
