package main

import (
	"context"
	"log"
	"os"

	"tapgame_webapp/internal/db"
	"tapgame_webapp/internal/service"
)

// Seeds a local test account with starter tasks and prints a usable token.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	service.InitJWT(secret)

	users := service.NewUserService(pool)
	ctx := context.Background()

	tgID := int64(1234567890)
	u, created, err := users.GetOrCreate(ctx, tgID, "testuser", "Tester")
	if err != nil {
		log.Fatalf("get or create failed: %v", err)
	}
	if created {
		log.Printf("user created id=%d referral_code=%s\n", u.ID, u.ReferralCode)
	} else {
		log.Printf("user already exists id=%d referral_code=%s\n", u.ID, u.ReferralCode)
	}

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
