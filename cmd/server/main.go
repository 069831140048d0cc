package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v78"

	"arrive/internal/api"
	"arrive/internal/auth"
	"arrive/internal/clock"
	"arrive/internal/repository"
	"arrive/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	clk := clock.NewSystem()

	bookingRepo := repository.NewBookingRepository(db)
	listingRepo := repository.NewListingRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	stripeSvc := service.NewStripeService(os.Getenv("STRIPE_CURRENCY"))
	notifySvc := service.NewNotifyService()
	bookingSvc := service.NewBookingService(bookingRepo, userRepo, stripeSvc, notifySvc, clk)
	listingSvc := service.NewListingService(listingRepo, clk)
	reportSvc := service.NewReportService(reportRepo, clk)
	authSvc := service.NewAuthService(userRepo, clk)
	jobSvc := service.NewJobService(jobRepo, clk)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	listingHandler := api.NewListingHandler(listingSvc)
	authHandler := api.NewAuthHandler(authSvc)
	stripeHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), bookingSvc)
	graphqlHandler, err := api.NewGraphQLHandler(reportSvc)
	if err != nil {
		log.Fatalf("Failed to build GraphQL schema: %v", err)
	}

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/listings", listingHandler.ListListings).Methods("GET")
	r.HandleFunc("/api/listings/{id}", listingHandler.GetListing).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.Handle("/graphql", graphqlHandler).Methods("POST")

	// Authenticated endpoints
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware)
	authed.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	authed.HandleFunc("/bookings", bookingHandler.ListBookings).Methods("GET")
	authed.HandleFunc("/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	authed.HandleFunc("/bookings/{id}", bookingHandler.UpdateBooking).Methods("PUT")
	authed.HandleFunc("/bookings/{id}/confirm", bookingHandler.ConfirmBooking).Methods("POST")
	authed.HandleFunc("/bookings/{id}/cancel", bookingHandler.CancelBooking).Methods("POST")
	authed.HandleFunc("/listings", listingHandler.CreateListing).Methods("POST")
	authed.HandleFunc("/listings/host/my-listings", listingHandler.MyListings).Methods("GET")
	authed.HandleFunc("/listings/{id}", listingHandler.UpdateListing).Methods("PUT")
	authed.HandleFunc("/listings/{id}", listingHandler.DeleteListing).Methods("DELETE")

	c := cron.New()
	c.AddFunc("@every 1m", func() { jobSvc.Run(context.Background()) })
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
