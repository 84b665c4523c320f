package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"homeledger/internal/api/handlers"
	"homeledger/internal/api/middleware"
	"homeledger/internal/categorize"
	"homeledger/internal/config"
	"homeledger/internal/gcsuploader"
	bqstore "homeledger/internal/infra/bigquery"
	"homeledger/internal/jobs"
	"homeledger/internal/jobs/inmemory"
	"homeledger/internal/logger"
	"homeledger/internal/simplefin"
	syncsvc "homeledger/internal/sync"
)

func main() {
	log := logger.New()
	cfg := config.Load(log)

	if cfg.GCPProject == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}
	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - document uploads will be disabled")
	}

	ctx := context.Background()

	store, err := bqstore.NewStore(ctx, cfg.GCPProject, cfg.BQDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store")
	}
	defer store.Close()

	// Services
	syncService := syncsvc.NewService(simplefin.NewClient(), store, log)
	categorizeService := categorize.NewService(categorize.NewGeminiOracle(cfg.GeminiModel), store, log)

	// Job infrastructure: a sync that inserts transactions enqueues one
	// categorization pass, processed here in the background.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.CategorizeJob) (int, error) {
		log.Info().
			Str("job_id", job.JobID).
			Str("reason", job.Reason).
			Msg("Processing categorization job")

		res, err := categorizeService.Run(ctx)
		if err != nil {
			return 0, err
		}
		return res.Categorized, nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Handlers
	syncHandler := handlers.NewSyncHandler(syncService, store, jobQueue, log)
	categorizeHandler := handlers.NewCategorizeHandler(categorizeService, log)
	accountsHandler := handlers.NewAccountsHandler(store, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, log)
	categoriesHandler := handlers.NewCategoriesHandler(store, log)
	documentsHandler := handlers.NewDocumentsHandler(store, gcsuploader.NewGCSStorageService(), cfg.GCSBucket, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/simplefin/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.Sync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/simplefin/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			syncHandler.GetConfig(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/categorize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			categorizeHandler.Categorize(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			accountsHandler.ListAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			accountID := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
			if accountID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
				return
			}
			accountsHandler.UpdateAccount(w, r, accountID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.ListCategories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			documentsHandler.ListDocuments(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/documents/upload-url", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			documentsHandler.CreateUploadURL(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/documents/upload/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			documentID := strings.TrimPrefix(r.URL.Path, "/api/documents/upload/")
			if documentID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Document ID is required")
				return
			}
			documentsHandler.UploadDocument(w, r, documentID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		// The categorize endpoint waits on the oracle, which gets up to a
		// minute; the write timeout must outlast it.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
