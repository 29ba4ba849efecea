package handlers

import (
	"context"
	"net/http"
	"time"

	"kiloFitAPI/middleware"
	"kiloFitAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
	userService        *services.UserService
}

func NewAchievementHandler(achievementService *services.AchievementService, userService *services.UserService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
		userService:        userService,
	}
}

func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	achievements, err := h.achievementService.ListForUser(ctx, u.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (h *AchievementHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.achievementService.MarkSeen(ctx, u.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Achievements marked seen"})
}
