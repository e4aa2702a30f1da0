package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/database"
    "github.com/iliyamo/fleet-booking/internal/handler"
    "github.com/iliyamo/fleet-booking/internal/queue"
    "github.com/iliyamo/fleet-booking/internal/repository"
    "github.com/iliyamo/fleet-booking/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional infrastructure: a nil client disables the rate
    // limiter and response cache but the API still serves.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; rate limiting and caching disabled")
    }

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    employees := repository.NewEmployeeRepo(db)
    vehicles := repository.NewVehicleRepo(db)
    bookings := repository.NewBookingRepo(db)
    fuel := repository.NewFuelRepo(db)

    e := echo.New()
    e.HideBanner = true

    router.RegisterShared(e, rdb)
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, employees), cfg.JWTSecret)
    router.RegisterEmployee(e, handler.NewBookingHandler(bookings, vehicles, employees, fuel), cfg.JWTSecret)
    router.RegisterAdmin(e,
        handler.NewAdminVehicleHandler(vehicles),
        handler.NewAdminEmployeeHandler(cfg, users, employees, tokens),
        handler.NewAdminBookingHandler(bookings, fuel),
        handler.NewReportHandler(cfg, vehicles, bookings, fuel),
        cfg.JWTSecret)

    // The returned-trip consumer runs for the life of the process and
    // reconnects on broker failures.
    go func() {
        if err := queue.StartReturnedConsumer(); err != nil {
            log.Printf("returned-consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
