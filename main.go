package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/auth"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/chart"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/clickhouse"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/dal"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/handlers"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/mocks"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pipeline"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pubsub"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/sheets"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/transform"
)

var (
	templates    *template.Template
	dataStore    dal.ReportDAL
	authProvider auth.AuthProvider
	ps           interface {
		Publish(pubsub.Event)
		Subscribe() chan pubsub.Event
		Unsubscribe(chan pubsub.Event)
	}
	chClient interface {
		InsertMatches(context.Context, string, string, []models.MatchRecord) error
		DailyKills(context.Context, string) (map[string]int, error)
		Close() error
	}
)

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting Activision privacy data visualizer")

	// Initialize database driver
	dbDriver := os.Getenv("DB_DRIVER")
	if dbDriver == "" {
		dbDriver = "memory"
	}

	var err error
	switch dbDriver {
	case "memory":
		dataStore = dal.NewMemoryDAL()
		logger.Info("Using in-memory data store")
	case "sqlite":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "dev.sqlite"
		}
		dataStore, err = dal.NewSQLiteDAL(sqliteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", sqliteFile)
	case "postgres":
		dbConnString := os.Getenv("DATABASE_URL")
		if dbConnString == "" {
			logger.Error("DATABASE_URL environment variable is required for postgres driver")
			log.Fatal("DATABASE_URL environment variable is required for postgres driver")
		}
		dataStore, err = dal.NewPostgresDAL(dbConnString)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	default:
		logger.Error("Unknown DB_DRIVER", "driver", dbDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, sqlite, postgres)", dbDriver)
	}

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	natsSubject := os.Getenv("NATS_SUBJECT")
	if natsSubject == "" {
		natsSubject = "reports.events"
	}

	environment := os.Getenv("ENVIRONMENT")
	var natsPubSub interface {
		Publish(pubsub.Event)
		Subscribe() chan pubsub.Event
		Unsubscribe(chan pubsub.Event)
	}

	// Use embedded NATS in development mode, real NATS in production
	if environment == "" || environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       0, // Random available port
			Subject:    natsSubject,
			StreamName: pubsub.StreamName,
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		natsPubSub = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(natsURL, natsSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		natsPubSub = realNats
		logger.Info("Connected to NATS", "url", natsURL)
	}

	ps = natsPubSub

	// Initialize ClickHouse telemetry client (or mock in development)
	if environment == "" || environment == "development" {
		chClient = mocks.NewMockClickHouseClient()
	} else {
		chAddr := os.Getenv("CLICKHOUSE_ADDR")
		if chAddr == "" {
			chAddr = "localhost:9000"
		}
		chDB := os.Getenv("CLICKHOUSE_DB")
		if chDB == "" {
			chDB = "default"
		}
		chUser := os.Getenv("CLICKHOUSE_USER")
		if chUser == "" {
			chUser = "default"
		}
		chPass := os.Getenv("CLICKHOUSE_PASSWORD")

		var chErr error
		chClient, chErr = clickhouse.NewClient(chAddr, chDB, chUser, chPass)
		if chErr != nil {
			logger.Error("Failed to initialize ClickHouse", "error", chErr, "address", chAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", chErr)
		}
		logger.Info("Connected to ClickHouse", "address", chAddr, "database", chDB)
	}

	// Initialize spreadsheet store (or mock in development)
	var sheetStore sheets.Store
	sheetsURL := os.Getenv("SHEETS_API_URL")
	if sheetsURL == "" {
		sheetStore = mocks.NewMockSheetsStore()
	} else {
		sheetStore = sheets.NewClient(sheetsURL)
		logger.Info("Using spreadsheet API", "url", sheetsURL)
	}

	// Initialize authentication
	// Use mock auth in development mode, Authentik OAuth2 in production
	if environment == "" || environment == "development" {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authentikBaseURL := os.Getenv("AUTHENTIK_BASE_URL")
		authentikClientID := os.Getenv("AUTHENTIK_CLIENT_ID")
		authentikClientSecret := os.Getenv("AUTHENTIK_CLIENT_SECRET")
		authentikRedirectURL := os.Getenv("AUTHENTIK_REDIRECT_URL")

		if authentikBaseURL == "" || authentikClientID == "" || authentikClientSecret == "" {
			logger.Error("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
			log.Fatal("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
		}

		if authentikRedirectURL == "" {
			authentikRedirectURL = "http://localhost:3000/auth/callback"
		}

		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      authentikBaseURL,
			ClientID:     authentikClientID,
			ClientSecret: authentikClientSecret,
			RedirectURL:  authentikRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to Authentik", "url", authentikBaseURL)
	}

	// Load templates
	var tmplErr error
	templates, tmplErr = template.ParseGlob("templates/*.html")
	if tmplErr != nil {
		logger.Error("Failed to parse templates", "error", tmplErr)
		log.Fatalf("Failed to parse templates: %v", tmplErr)
	}
	logger.Info("Templates loaded successfully")

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	// Page routes (protected)
	mux.HandleFunc("/", homeHandler)
	mux.HandleFunc("/upload", authProvider.Middleware(uploadPageHandler))

	// API routes
	localPS := convertPubSub(ps)
	runner := pipeline.NewRunner(transform.NewRegistry(), localPS)
	api := handlers.NewAPIHandlers(dataStore, localPS, runner, chart.NewChartJS(), sheetStore, chClient)

	// Reports API
	mux.HandleFunc("/api/reports/upload", api.UploadReport)
	mux.HandleFunc("/api/reports", api.ListReports)
	mux.HandleFunc("/api/reports/get", api.GetReport)
	mux.HandleFunc("/api/reports/chart-data", api.ChartData)
	mux.HandleFunc("/api/reports/export", api.ExportSheet)

	// Chart page
	mux.HandleFunc("/chart", api.ViewChart)

	// SSE for realtime progress updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	addr := "0.0.0.0:" + port
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

func uploadPageHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	data := map[string]interface{}{
		"User":    user,
		"IsAdmin": auth.IsAdmin(user),
	}

	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check database connectivity
	if dataStore != nil {
		_, err := dataStore.ListReports()
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Check ClickHouse connectivity (only in production)
	environment := os.Getenv("ENVIRONMENT")
	if environment == "production" && chClient != nil {
		_, err := chClient.DailyKills(r.Context(), "healthcheck")
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["clickhouse"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["clickhouse"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else if environment == "production" {
		checks["clickhouse"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// NATS connection health is handled internally by the client
	if environment == "production" && ps != nil {
		checks["nats"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	// Database connectivity is critical for readiness
	if dataStore != nil {
		_, err := dataStore.ListReports()
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "database_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// convertPubSub wraps the NATS pubsub to provide a local *pubsub.PubSub for handlers
// This creates a bidirectional bridge: publishes go to NATS, and NATS events come to local subscribers
func convertPubSub(ps interface {
	Publish(pubsub.Event)
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}) *pubsub.PubSub {
	// Create a wrapper that publishes to NATS and has local subscribers
	wrapper := pubsub.NewWithUpstream(ps)

	return wrapper
}
