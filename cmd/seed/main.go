package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/database"
    "github.com/iliyamo/fleet-booking/internal/seed"
)

func main() {
    _ = godotenv.Load()

    cfg := config.Load()
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
    defer cancel()

    if err := seed.Run(ctx, db, cfg); err != nil {
        log.Fatalf("seed: %v", err)
    }
}
