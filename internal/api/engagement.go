package api

import (
	"net/http"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// ─── Status ─────────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

// ─── Streak ─────────────────────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.StreakView())
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"currentStreak": s.tracker.Streak().CurrentStreak,
		"milestones":    s.tracker.Milestones(),
	})
}

// ─── Achievements ───────────────────────────────────────────────────────────

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	all := s.tracker.Achievements()
	sum := s.tracker.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": all,
		"unlocked":     sum.AchievementsUnlocked,
		"total":        sum.AchievementsTotal,
		"score":        sum.Score,
	})
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	pending := s.tracker.Notifications()
	if pending == nil {
		pending = []domain.Achievement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": pending})
}

func (s *Server) handleDismissNotifications(w http.ResponseWriter, r *http.Request) {
	n := len(s.tracker.Notifications())
	s.tracker.DismissNotifications()
	writeJSON(w, http.StatusOK, map[string]int{"dismissed": n})
}
