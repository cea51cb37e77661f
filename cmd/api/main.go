package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sociowork/surveypay/docs"
	"github.com/sociowork/surveypay/internal/characteristic"
	"github.com/sociowork/surveypay/internal/config"
	"github.com/sociowork/surveypay/internal/dashboard"
	"github.com/sociowork/surveypay/internal/database"
	"github.com/sociowork/surveypay/internal/payment"
	"github.com/sociowork/surveypay/internal/pricing"
	"github.com/sociowork/surveypay/internal/survey"
	"github.com/sociowork/surveypay/internal/wallet"
	mw "github.com/sociowork/surveypay/pkg/middleware"
)

// @title           SurveyPay API
// @version         1.0
// @description     Payment settlement and result analytics for the survey platform
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logrus.Info("Connected to database successfully")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	// Survey and characteristic stores (read side)
	surveyRepo := survey.NewRepository(db)
	characteristicRepo := characteristic.NewRepository(db)

	// Wallet feature
	walletRepo := wallet.NewRepository(db)
	accountRepo := wallet.NewAccountRepository(db)
	walletService := wallet.NewService(db, walletRepo, accountRepo)
	walletHandler := wallet.NewHandler(walletService, rdb)

	// Pricing feature
	pricingRepo := pricing.NewRepository(db)
	pricingService := pricing.NewService(pricingRepo)
	pricingHandler := pricing.NewHandler(pricingService)

	// Payment feature
	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(db, paymentRepo, walletService, surveyRepo, pricingService)
	paymentHandler := payment.NewHandler(paymentService, rdb)

	// Dashboard feature
	summarizer := dashboard.NewHTTPSummarizer(cfg.SummarizerURL)
	dashboardService := dashboard.NewService(surveyRepo, characteristicRepo, summarizer)
	dashboardHandler := dashboard.NewHandler(dashboardService, rdb)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.JWTSecret))

		// Mount feature routers
		r.Mount("/wallet", walletHandler.Routes())
		r.Mount("/pricing", pricingHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes())
		r.Mount("/surveys", dashboardHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logrus.Infof("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
