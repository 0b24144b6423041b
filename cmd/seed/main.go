package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-orders-api/config"
	appuser "github.com/oksasatya/go-user-orders-api/internal/application"
	"github.com/oksasatya/go-user-orders-api/internal/container"
	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
	mongoinfra "github.com/oksasatya/go-user-orders-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-user-orders-api/internal/router"
	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
)

func ptr[T any](v T) *T { return &v }

func demoUsers() []appuser.CreateUserRequest {
	return []appuser.CreateUserRequest{
		{
			UserID:   ptr(int64(1)),
			Username: ptr("demoUser"),
			Password: ptr("password123"),
			FullName: &appuser.FullNameInput{FirstName: ptr("Demo"), LastName: ptr("User")},
			Age:      ptr(28),
			Email:    ptr("demo@example.com"),
			IsActive: ptr(true),
			Hobbies:  []string{"reading", "cycling"},
			Address:  &appuser.AddressInput{Street: ptr("Main Street"), City: ptr("Dhaka"), Country: ptr("Bangladesh")},
			Orders: []appuser.OrderInput{
				{ProductName: ptr("Mechanical Keyboard"), Price: ptr(10.0), Quantity: ptr(1)},
				{ProductName: ptr("Wireless Mouse"), Price: ptr(5.0), Quantity: ptr(2)},
			},
		},
		{
			UserID:   ptr(int64(2)),
			Username: ptr("janeRoe"),
			Password: ptr("password123"),
			FullName: &appuser.FullNameInput{FirstName: ptr("Jane"), LastName: ptr("Roe")},
			Age:      ptr(34),
			Email:    ptr("jane@example.com"),
			IsActive: ptr(true),
			Hobbies:  []string{"chess"},
			Address:  &appuser.AddressInput{Street: ptr("Baker Street"), City: ptr("London"), Country: ptr("England")},
		},
		{
			UserID:   ptr(int64(3)),
			Username: ptr("sleepyJoe"),
			Password: ptr("password123"),
			FullName: &appuser.FullNameInput{FirstName: ptr("Joe"), LastName: ptr("Sleepy")},
			Age:      ptr(41),
			Email:    ptr("joe@example.com"),
			IsActive: ptr(false),
			Hobbies:  []string{"napping"},
			Address:  &appuser.AddressInput{Street: ptr("Quiet Lane"), City: ptr("Oslo"), Country: ptr("Norway")},
		},
	}
}

// seededLine describes a stored user without its credential.
func seededLine(u *entity.User) string {
	return fmt.Sprintf("seeded user: userId=%d username=%s email=%s active=%v", u.UserID, u.Username, u.Email, u.IsActive)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	client, err := mongoinfra.NewClient(ctx, cfg.MongoURL, cfg.MongoConnectTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	repo := mongoinfra.NewUserRepository(db.Collection(cfg.MongoUsersCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongoDB(db)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass); err == nil {
			container.SetES(es)
		}
	}

	// Seeding goes through the service so passwords are hashed and the search index is fed.
	svc := router.BuildUserService(repo)
	for _, req := range demoUsers() {
		u, err := svc.Create(ctx, req)
		switch {
		case errors.Is(err, appuser.ErrUserAlreadyExists):
			fmt.Printf("user %d already exists, skipped\n", *req.UserID)
		case err != nil:
			log.Fatalf("failed to seed user %d: %v", *req.UserID, err)
		default:
			fmt.Println(seededLine(u))
		}
	}
}
