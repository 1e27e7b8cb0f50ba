// README: Entry point; loads config, wires services, starts HTTP server and background loops.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"busline/internal/ai"
	"busline/internal/config"
	httptransport "busline/internal/http"
	"busline/internal/infra"
	"busline/internal/maps"
	"busline/internal/modules/booking"
	"busline/internal/modules/conductor"
	"busline/internal/modules/fare"
	"busline/internal/modules/fleet"
	"busline/internal/modules/lostfound"
	"busline/internal/ticketsvc"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("postgres", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	ticketClient := ticketsvc.New(cfg.TicketService.BaseURL, cfg.TicketService.Timeout)

	journal := conductor.NewStore(dbPool)
	session := conductor.NewSession(ticketClient, journal, cfg.Conductor.PollInterval)
	if cfg.Conductor.DefaultBusCode != "" {
		if err := session.SetBusCode(ctx, cfg.Conductor.DefaultBusCode); err != nil {
			log.Warn("initial bus code", "busCode", cfg.Conductor.DefaultBusCode, "error", err)
		}
	}

	fleetStore := fleet.NewStore(redisClient)
	fleetSvc := fleet.NewService(fleetStore)
	if err := fleetSvc.Seed(ctx); err != nil {
		log.Warn("fleet seed", "error", err)
	}

	var distance fare.DistanceSource
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Error("maps", "error", err)
			os.Exit(1)
		}
		distance = routeSvc
	}
	fareSvc := fare.NewService(distance)

	bookingSvc := booking.NewService(fleetSvc, fareSvc, ticketClient)

	var matcher ai.DescriptionMatcher
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiMatcher(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Error("gemini", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		matcher = gemini
	}
	lostFoundSvc := lostfound.NewService(lostfound.NewStore(dbPool), matcher, log)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Session:   session,
		Booking:   bookingSvc,
		Fares:     fareSvc,
		Fleet:     fleetSvc,
		LostFound: lostFoundSvc,
		Log:       log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go session.Run(ctx)
	go fleetSvc.RunSimulator(ctx)
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server", "error", err)
		os.Exit(1)
	}
}
