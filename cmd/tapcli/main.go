package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"tapgame_webapp/internal/session"
)

// tapcli is an offline-first client: taps apply locally through the shared
// game rules, queue in Redis, and sync to the server when asked. The server
// response always overwrites the local view.
func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	token := flag.String("token", os.Getenv("TAPGAME_TOKEN"), "bearer token")
	tgID := flag.Int64("tg-id", 0, "telegram id used as the snapshot key")
	taps := flag.Int("taps", 0, "taps to apply locally before syncing")
	sync := flag.Bool("sync", false, "push the pending queue to the server")
	reset := flag.Bool("reset", false, "discard the local snapshot")
	flag.Parse()

	if *token == "" || *tgID == 0 {
		log.Fatal("both -token and -tg-id are required (or set TAPGAME_TOKEN)")
	}

	store := session.NewRedisStore(
		envDefault("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		envInt("REDIS_DB"),
	)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := session.NewClient(*server, *token)

	if *reset {
		if err := store.Delete(ctx, *tgID); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		fmt.Println("snapshot discarded")
		return
	}

	sess, err := store.Load(ctx, *tgID)
	if err != nil {
		if !errors.Is(err, session.ErrNoSnapshot) {
			log.Fatalf("load snapshot: %v", err)
		}
		u, err := client.Fetch(ctx)
		if err != nil {
			log.Fatalf("fetch state: %v", err)
		}
		sess = session.New(u, time.Now())
		fmt.Println("started fresh session from server state")
	}

	for left := *taps; left > 0; {
		n := left
		if n > 10 {
			n = 10
		}
		res, err := sess.Tap(n, time.Now())
		if err != nil {
			fmt.Printf("tap stopped: %v\n", err)
			break
		}
		left -= n
		if res.LevelsGained > 0 {
			fmt.Printf("level up! now level %d\n", sess.User.Level)
		}
	}

	if *sync {
		consumed, err := client.Sync(ctx, sess)
		if err != nil {
			log.Fatalf("sync failed: %v", err)
		}
		fmt.Printf("synced %d batch(es)\n", consumed)
	}

	if err := store.Save(ctx, *tgID, sess); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}

	fmt.Printf("coins=%d level=%d xp=%d/%d energy=%d/%d pending=%d\n",
		sess.User.Coins, sess.User.Level,
		sess.User.Experience, sess.User.ExperienceToNext(),
		sess.User.Energy, sess.User.MaxEnergy,
		len(sess.Pending),
	)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
