package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kiloFitAPI/middleware"
	"kiloFitAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type SquadHandler struct {
	squadService *services.SquadService
}

func NewSquadHandler(squadService *services.SquadService) *SquadHandler {
	return &SquadHandler{
		squadService: squadService,
	}
}

func (h *SquadHandler) CreateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sq, err := h.squadService.CreateSquad(ctx, clerkID, req.Name, req.Description)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, sq)
}

func (h *SquadHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	squadID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid squad id")
		return
	}

	if err := h.squadService.Join(ctx, clerkID, squadID); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Joined squad"})
}

// Leaderboard returns the week's fresh point totals plus each member's capped
// fat-loss projection. ?week=YYYY-MM-DD picks the week containing that day;
// default is the current week.
func (h *SquadHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	squadID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid squad id")
		return
	}

	week := time.Now().UTC()
	if weekParam := r.URL.Query().Get("week"); weekParam != "" {
		week, err = time.Parse("2006-01-02", weekParam)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid week, expected YYYY-MM-DD")
			return
		}
	}

	entries, err := h.squadService.Leaderboard(ctx, clerkID, squadID, week)
	if err != nil {
		respondWithError(w, http.StatusForbidden, err.Error())
		return
	}

	projections, err := h.squadService.MemberProjections(ctx, squadID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type entryWithProgress struct {
		UserID      uuid.UUID `json:"user_id"`
		Username    string    `json:"username"`
		ImageURL    string    `json:"image_url"`
		TotalPoints int       `json:"total_points"`
		Rank        int       `json:"rank"`
		Progress    any       `json:"progress"`
	}

	out := make([]entryWithProgress, 0, len(entries))
	for _, e := range entries {
		ewp := entryWithProgress{
			UserID:      e.UserID,
			Username:    e.Username,
			ImageURL:    e.ImageURL,
			TotalPoints: e.TotalPoints,
			Rank:        e.Rank,
		}
		if report, ok := projections[e.UserID]; ok && report != nil {
			ewp.Progress = report
		}
		out = append(out, ewp)
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"leaderboard": out})
}
