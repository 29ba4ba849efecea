package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kiloFitAPI/internal/bodyanalysis"
	"kiloFitAPI/middleware"
	"kiloFitAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BodyAnalysisHandler struct {
	bodyAnalysisService *services.BodyAnalysisService
}

func NewBodyAnalysisHandler(bodyAnalysisService *services.BodyAnalysisService) *BodyAnalysisHandler {
	return &BodyAnalysisHandler{
		bodyAnalysisService: bodyAnalysisService,
	}
}

func (h *BodyAnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req bodyanalysis.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.bodyAnalysisService.Create(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, a)
}

func (h *BodyAnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	analyses, err := h.bodyAnalysisService.List(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

func (h *BodyAnalysisHandler) UpdateCommentary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	analysisID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid analysis id")
		return
	}

	var req struct {
		Commentary string `json:"commentary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.bodyAnalysisService.UpdateCommentary(ctx, clerkID, analysisID, req.Commentary); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Commentary updated"})
}
