package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/bondquant/ftdfeed/internal/scheduler"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// JobHandler exposes the scheduler over the API.
type JobHandler struct {
	sched  *scheduler.Scheduler
	logger *logger.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{
		sched:  sched,
		logger: log,
	}
}

// List returns the registered job names.
// GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.sched.GetAllJobs()
	sort.Strings(jobs)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

// Stats returns aggregated statistics for one job.
// GET /api/jobs/{name}/stats
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	stats, err := h.sched.GetJobStats(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Run triggers a job immediately.
// POST /api/jobs/{name}/run
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.sched.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
