package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/domain"
)

// ─── Curriculum ─────────────────────────────────────────────────────────────

type trailView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Stages      []tracker.StageView `json:"stages"`
}

func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	views := s.tracker.Stages()
	byID := make(map[string]tracker.StageView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	trails := s.cat.Trails()
	out := make([]trailView, 0, len(trails))
	for _, tr := range trails {
		tv := trailView{ID: tr.ID, Title: tr.Title, Description: tr.Description}
		for _, st := range tr.Stages {
			tv.Stages = append(tv.Stages, byID[st.ID])
		}
		out = append(out, tv)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trails":     out,
		"totalTasks": s.cat.TotalTasks(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	hits := s.cat.Search(q)
	if hits == nil {
		hits = []curriculum.Hit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"hits":  hits,
	})
}

// ─── Progress ───────────────────────────────────────────────────────────────

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sum := s.tracker.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"progress":       s.tracker.Progress(),
		"overallPercent": sum.OverallPercent,
		"tasksCompleted": sum.TasksCompleted,
		"totalTasks":     sum.TotalTasks,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	v, err := s.tracker.Project(chi.URLParam(r, "projectID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	s.projectCommand(w, r, s.tracker.StartProject)
}

func (s *Server) handleResetProject(w http.ResponseWriter, r *http.Request) {
	s.projectCommand(w, r, s.tracker.ResetProject)
}

// projectCommand runs a command that addresses a whole project. Unlike
// toggles, these reject unknown project ids with 404.
func (s *Server) projectCommand(w http.ResponseWriter, r *http.Request, cmd func(context.Context, string) (tracker.Result, error)) {
	projectID := chi.URLParam(r, "projectID")
	if _, ok := s.cat.Project(projectID); !ok {
		writeDomainError(w, domain.ErrUnknownProject)
		return
	}
	res, err := cmd(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.ToggleTask(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleToggleChallenge(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.ToggleChallenge(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "challengeID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeResult(w, res)
}

func writeResult(w http.ResponseWriter, res tracker.Result) {
	if res.NewlyUnlocked == nil {
		res.NewlyUnlocked = []domain.Achievement{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	days := s.tracker.Activity()
	if days == nil {
		days = []domain.DayActivity{}
	}
	events := s.tracker.Events()
	if events == nil {
		events = []domain.CompletionEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":   days,
		"events": events,
	})
}
