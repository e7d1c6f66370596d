package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/api/option"

	"github.com/expenso-app/expenso-backend/internal/advisor"
	"github.com/expenso-app/expenso-backend/internal/auth"
	"github.com/expenso-app/expenso-backend/internal/config"
	"github.com/expenso-app/expenso-backend/internal/server"
	"github.com/expenso-app/expenso-backend/internal/service"
	"github.com/expenso-app/expenso-backend/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth
	var fcmClient *messaging.Client

	if cfg.Store.UseMemory {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
		// Mock auth, no push. Local dev needs no Firebase project.
		firebaseAuth = nil
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.Store.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)

		opts := []option.ClientOption{}
		if creds := auth.ServiceAccountPath(); creds != "" {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
		app, err := firebase.NewApp(ctx, nil, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase app: %v", err)
		}

		if cfg.Server.SkipAuth {
			log.Println("SKIP_AUTH enabled, using mock authentication (testing only)")
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx, app)
			if err != nil {
				log.Fatalf("Failed to initialize Firebase Auth: %v", err)
			}
		}

		fcmClient, err = app.Messaging(ctx)
		if err != nil {
			log.Printf("FCM unavailable, push notifications disabled: %v", err)
			fcmClient = nil
		}
	}

	remote := advisor.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

	pusher := service.NewPushSender(fcmClient, storeImpl)
	srv := server.New(
		service.NewFinanceService(storeImpl),
		service.NewAdvisoryService(storeImpl, remote),
		service.NewNotificationService(storeImpl),
		service.NewNotificationTrigger(storeImpl, pusher),
		cfg.Advisory.DefaultWeeklyBudget,
	)

	mux := http.NewServeMux()
	srv.Routes(mux)

	var handler http.Handler = mux
	if firebaseAuth != nil {
		handler = auth.Middleware(firebaseAuth)(handler)
	} else {
		handler = auth.LocalDevMiddleware()(handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})
	handler = c.Handler(handler)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
