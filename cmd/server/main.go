package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/config"
	"briefbox/backend/internal/db"
	"briefbox/backend/internal/email"
	"briefbox/backend/internal/logger"
	"briefbox/backend/internal/network"
	"briefbox/backend/internal/repository"
	"briefbox/backend/internal/scheduler"
	"briefbox/backend/internal/service"
	"briefbox/backend/internal/snowflake"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(os.Getenv("BRIEFBOX_LOG_LEVEL")))

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	channelRepo := repository.NewChannelRepository(dbConn)
	updateRepo := repository.NewUpdateRepository(dbConn)
	listRepo := repository.NewListRepository(dbConn)
	subscriptionRepo := repository.NewSubscriptionRepository(dbConn)
	digestRepo := repository.NewDigestRepository(dbConn)

	clients := network.NewClientFactory()
	httpClient := clients.NewHTTPClient(30 * time.Second)

	registry := channel.NewRegistry(
		channel.NewRSSAdapter(httpClient),
		channel.NewGithubAdapter(cfg.GithubAPIBase, httpClient),
		channel.NewTwitterAdapter(cfg.TwitterAPIBase, cfg.TwitterToken, httpClient),
	)

	sender := email.NewTemplateClient(cfg.EmailAPIBase, cfg.EmailAPIToken, cfg.EmailFrom, httpClient)

	poller := service.NewPollerService(channelRepo, updateRepo, registry, cfg.FetchInterval, cfg.PollConcurrency)
	cleaner := service.NewCleanerService(channelRepo, updateRepo, registry, cfg.CleanInterval, cfg.Retention, cfg.CleanLocalBatch, cfg.CleanProviderBatch)
	digestScheduler := service.NewDigestSchedulerService(subscriptionRepo, digestRepo)
	digestSender := service.NewDigestSenderService(digestRepo, subscriptionRepo, channelRepo, listRepo, updateRepo, sender, cfg.Environment)
	orchestrator := service.NewRunOrchestrator(poller, cleaner, digestScheduler, digestSender)

	sched := scheduler.New(orchestrator, cfg.RunInterval)
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down...")
	sched.Stop()
}
