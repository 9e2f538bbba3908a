package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mzansipay/wallet/internal/config"
	"github.com/mzansipay/wallet/internal/stub"
	mw "github.com/mzansipay/wallet/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Pick a store: Postgres when configured, otherwise the embedded file DB
	var store stub.Store
	var err error
	if cfg.DatabaseURL != "" {
		store, err = stub.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Println("Using Postgres store")
	} else {
		store, err = stub.NewBoltStore(cfg.StubDBPath)
		if err != nil {
			log.Fatalf("Failed to open store at %s: %v", cfg.StubDBPath, err)
		}
		log.Printf("Using embedded store at %s", cfg.StubDBPath)
	}
	defer store.Close()

	// Ledger state is in-memory; seed a few dev accounts
	ledger := stub.NewLedger()
	ledger.SeedAccount("u-alice", "alice@example.com", "Alice", "Mokoena", 500)
	ledger.SeedAccount("u-bob", "bob@example.com", "Bob", "Dlamini", 500)
	ledger.SeedAccount("u-carol", "carol@example.com", "Carol", "Nkosi", 500)
	ledger.SeedAccount("u-dan", "dan@example.com", "Dan", "Botha", 500)
	ledger.SeedAccount("m-cafe", "cafe@example.com", "Corner", "Cafe", 0)

	service := stub.NewService(store)
	handler := stub.NewHandler(service, ledger)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Service surfaces sit behind bearer auth
	r.Group(func(r chi.Router) {
		r.Use(mw.BearerAuth)
		r.Use(mw.UserContext)
		r.Mount("/", handler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Stub backend starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
