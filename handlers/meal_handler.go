package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kiloFitAPI/internal/meal"
	"kiloFitAPI/middleware"
	"kiloFitAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type MealHandler struct {
	mealService *services.MealService
}

func NewMealHandler(mealService *services.MealService) *MealHandler {
	return &MealHandler{
		mealService: mealService,
	}
}

func (h *MealHandler) LogMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req meal.LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.mealService.LogMeal(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *MealHandler) GetMeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	dateParam := r.URL.Query().Get("date")
	date := time.Now().UTC()
	if dateParam != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateParam)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
	} else {
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}

	meals, err := h.mealService.ListByDate(ctx, clerkID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"date": date.Format("2006-01-02"), "meals": meals})
}

func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	mealID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid meal id")
		return
	}

	if err := h.mealService.DeleteMeal(ctx, clerkID, mealID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Meal deleted"})
}
