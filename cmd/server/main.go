package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/customers"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/handlers/payment"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/payments"
	"storefront_back_end/internal/repository"
	"storefront_back_end/internal/routes"
	"storefront_back_end/internal/services"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront back end: Stripe checkout webhooks and order history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to Postgres",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.Load()
			cred := database.PostgresCredentials(cfg)
			repo, err := repository.NewRepository(cred)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.RunMigrations(cred); err != nil {
				return err
			}
			log.Println("✅ Migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <products.json>",
		Short: "Load catalog products from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var products []models.Product
			if err := json.Unmarshal(raw, &products); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			cfg := config.Load()
			repo, err := repository.NewRepository(database.PostgresCredentials(cfg))
			if err != nil {
				return err
			}
			defer repo.Close()

			created := 0
			for i := range products {
				if err := repo.CreateProduct(cmd.Context(), &products[i]); err != nil {
					log.Printf("⚠️ Product %s skipped: %v", products[i].ID, err)
					continue
				}
				created++
			}
			log.Printf("✅ %d/%d products seeded", created, len(products))
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := clients.Close(); err != nil {
			log.Println("⚠️ Error closing clients:", err)
		}
	}()

	gateway := payments.NewGateway(payments.GatewayConfig{
		SecretKey:  cfg.StripeSecretKey,
		Timeout:    cfg.StripeTimeout,
		MaxRetries: 2,
	})
	log.Println("✅ Stripe gateway ready")

	var (
		hooks      []checkout.Hook
		stockCache product.StockCache
		archive    payment.EventArchiver
		limiter    middleware.RateCounter
	)
	if clients.Redis != nil {
		redisCache := cache.NewRedisCache(clients.Redis)
		stockCache = redisCache
		limiter = redisCache
		hooks = append(hooks, cache.NewOrderHook(redisCache))
	}
	if clients.Scylla != nil {
		hooks = append(hooks, services.NewStockLedger(clients.Scylla))
	}
	if clients.Elastic != nil {
		hooks = append(hooks, services.NewSearchIndex(clients.Elastic, cfg.ElasticIndex))
	}
	if clients.Kafka != nil {
		hooks = append(hooks, services.NewOrderPublisher(clients.Kafka))
	}
	if cfg.SMTPHost != "" {
		mailer, err := services.NewMailer(services.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			log.Println("⚠️ Confirmation emails disabled:", err)
		} else {
			hooks = append(hooks, mailer)
		}
	}
	if clients.MinIO != nil {
		archive = services.NewEventArchive(clients.MinIO, cfg.MinIOBucket)
	}
	log.Printf("✅ %d post-commit hooks enabled", len(hooks))

	resolver := customers.NewResolver(clients.Repo)
	dispatcher := checkout.NewDispatcher(clients.Repo, resolver, gateway, hooks...)

	h := routes.Handlers{
		Webhook:     payment.NewWebhookHandler(payments.NewVerifier(cfg.StripeWebhookSecret, cfg.StripeWebhookTolerance), dispatcher, archive),
		Orders:      user.NewOrderHandler(clients.Repo),
		Customers:   user.NewCustomerHandler(customers.NewSyncer(clients.Repo, gateway)),
		Stock:       product.NewStockHandler(clients.Repo, stockCache),
		JWTSecret:   []byte(cfg.JWTSecret),
		RateCounter: limiter,
	}

	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	routes.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("🚀 Server listening on port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	dispatcher.Wait()
	log.Println("✅ Post-commit hooks drained")
	return shutdownErr
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Stripe-Signature")
	return cfg
}
