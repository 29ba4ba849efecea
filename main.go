package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kiloFitAPI/handlers"
	"kiloFitAPI/internal/notification"
	"kiloFitAPI/internal/workers"
	"kiloFitAPI/middleware"
	"kiloFitAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	notificationService *services.NotificationService
	dispatcher          *services.NotificationDispatcher
	achievementService  *services.AchievementService
	progressService     *services.ProgressService
	squadService        *services.SquadService
	mealService         *services.MealService
	activityService     *services.ActivityService
	bodyAnalysisService *services.BodyAnalysisService
	trainingService     *services.TrainingService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	notificationService = services.NewNotificationService(dbPool)
	dispatcher = services.NewNotificationDispatcher()
	notificationService.SetDispatcher(dispatcher)

	userService = services.NewUserService(dbPool)
	achievementService = services.NewAchievementService(dbPool, notificationService)
	progressService = services.NewProgressService(dbPool, userService)
	squadService = services.NewSquadService(dbPool, userService, progressService)
	mealService = services.NewMealService(dbPool, userService, achievementService, squadService)
	activityService = services.NewActivityService(dbPool, userService)
	bodyAnalysisService = services.NewBodyAnalysisService(dbPool, userService, squadService)
	trainingService = services.NewTrainingService(dbPool, userService, achievementService, squadService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()
	defer dispatcher.Stop()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go workers.NewStreakReminder(dbPool, notificationService).Run(workerCtx)

	userHandler := handlers.NewUserHandler(userService)
	mealHandler := handlers.NewMealHandler(mealService)
	activityHandler := handlers.NewActivityHandler(activityService)
	bodyAnalysisHandler := handlers.NewBodyAnalysisHandler(bodyAnalysisService)
	progressHandler := handlers.NewProgressHandler(progressService)
	achievementHandler := handlers.NewAchievementHandler(achievementService, userService)
	squadHandler := handlers.NewSquadHandler(squadService)
	trainingHandler := handlers.NewTrainingHandler(trainingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "kiloFit-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1: everything below requires a Clerk session
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/goals", userHandler.UpdateGoals).Methods("PUT")
	protected.HandleFunc("/user/goals/reset", userHandler.ResetGoals).Methods("POST")
	protected.HandleFunc("/user/streak", userHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/user/register-device", userHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/user/achievements", achievementHandler.List).Methods("GET")
	protected.HandleFunc("/user/achievements/seen", achievementHandler.MarkSeen).Methods("POST")

	protected.HandleFunc("/meals", mealHandler.LogMeal).Methods("POST")
	protected.HandleFunc("/meals", mealHandler.GetMeals).Methods("GET")
	protected.HandleFunc("/meals/{id}", mealHandler.DeleteMeal).Methods("DELETE")

	protected.HandleFunc("/activity", activityHandler.SyncActivity).Methods("POST")
	protected.HandleFunc("/activity", activityHandler.GetActivity).Methods("GET")

	protected.HandleFunc("/body-analysis", bodyAnalysisHandler.Create).Methods("POST")
	protected.HandleFunc("/body-analysis", bodyAnalysisHandler.List).Methods("GET")
	protected.HandleFunc("/body-analysis/{id}/commentary", bodyAnalysisHandler.UpdateCommentary).Methods("PUT")

	protected.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress/deficit-history", progressHandler.GetDeficitHistory).Methods("GET")

	protected.HandleFunc("/squads", squadHandler.CreateSquad).Methods("POST")
	protected.HandleFunc("/squads/{id}/join", squadHandler.Join).Methods("POST")
	protected.HandleFunc("/squads/{id}/leaderboard", squadHandler.Leaderboard).Methods("GET")

	protected.HandleFunc("/trainings", trainingHandler.Create).Methods("POST")
	protected.HandleFunc("/trainings", trainingHandler.List).Methods("GET")
	protected.HandleFunc("/trainings/{id}/signup", trainingHandler.Signup).Methods("POST")
	protected.HandleFunc("/trainings/{id}/checkin", trainingHandler.CheckIn).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("PUT")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
