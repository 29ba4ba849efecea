package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kiloFitAPI/internal/training"
	"kiloFitAPI/middleware"
	"kiloFitAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type TrainingHandler struct {
	trainingService *services.TrainingService
}

func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
	}
}

func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req training.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.trainingService.Create(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, t)
}

func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	trainings, err := h.trainingService.ListUpcoming(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"trainings": trainings})
}

func (h *TrainingHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid training id")
		return
	}

	unlocked, err := h.trainingService.Signup(ctx, clerkID, trainingID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message":        "Signed up",
		"newly_unlocked": unlocked,
	})
}

func (h *TrainingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid training id")
		return
	}

	if err := h.trainingService.CheckIn(ctx, clerkID, trainingID); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Checked in"})
}
