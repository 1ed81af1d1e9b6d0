// Command seed populates the database with demo discussion data.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"alphaboard/internal/bootstrap"
	"alphaboard/internal/config"
	"alphaboard/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	tickers := flag.String("tickers", strings.Join(opts.Tickers, ","), "comma-separated ticker symbols")
	flag.IntVar(&opts.PostsPerTicker, "posts", opts.PostsPerTicker, "posts per ticker")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "comments per post")
	flag.IntVar(&opts.Voters, "voters", opts.Voters, "size of the voter pool")
	flag.Parse()
	opts.Tickers = strings.Split(*tickers, ",")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Migrate: true})
	if err != nil {
		log.Fatalf("Runtime initialization failed: %v", err)
	}

	if err := seed.NewFactory(rt.DB, opts).Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
