package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watthome/auth"
	"watthome/internal/assist"
	"watthome/internal/automation"
	"watthome/internal/bridge"
	"watthome/internal/config"
	"watthome/internal/logging"
	"watthome/internal/mqtt"
	"watthome/internal/redis"
	"watthome/internal/scheduler"
	"watthome/internal/store"
	"watthome/internal/taskqueue"
	"watthome/internal/web"

	"github.com/pion/mdns/v2"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger("watthome-backend", cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(cfg.Redis.Addr)

	mqttClient, err := mqtt.NewClient(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		logger.Fatal("failed to connect to MQTT", zap.Error(err))
	}
	defer mqttClient.Disconnect(250)

	devices := store.NewDeviceStore(db, redisClient, mqttClient, logger)
	automations := store.NewAutomationStore(db, logger)

	executor := automation.NewExecutor(automations, devices, logger)
	timeEval := automation.NewTimeTriggerEvaluator(automations, executor, logger)
	thresholdEval := automation.NewThresholdTriggerEvaluator(automations, devices, executor, logger)

	taskqueue.SetGlobalInstances(timeEval, thresholdEval, logger)
	go taskqueue.StartWorkers(cfg.Redis.Addr)

	sched := scheduler.New(logger, taskqueue.EnqueueTimeCheck, taskqueue.EnqueueThresholdCheck)
	sched.Run()

	authModule := auth.NewModule(db.Pool(), redisClient, cfg.JWT.Secret)
	assistSvc := assist.NewService(cfg.Assist.URL, cfg.Assist.APIKey, cfg.Assist.Model, logger)

	server := web.New(authModule, devices, automations, assistSvc, sched, logger)
	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			logger.Fatal("web server stopped", zap.Error(err))
		}
	}()

	if cfg.MDNS.Enabled {
		go startMDNSServer(cfg.MDNS.LocalName, logger)
	}

	if cfg.RemoteAccess.Enabled {
		go bridge.Start(bridge.Config{
			PublicWS:   cfg.RemoteAccess.PublicWS,
			LocalURL:   fmt.Sprintf("127.0.0.1:%d", cfg.App.Port),
			AgentID:    cfg.App.AgentID,
			RetryDelay: time.Duration(cfg.RemoteAccess.RetryDelaySecs) * time.Second,
			Logger:     logger,
		})
	} else {
		logger.Info("remote access bridge is disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	sched.Shutdown()
	taskqueue.StopWorkers()
	logger.Info("shutdown complete")
}

func startMDNSServer(localName string, logger *zap.Logger) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		logger.Warn("failed to resolve UDP4 address for mDNS", zap.Error(err))
		return
	}
	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		logger.Warn("failed to resolve UDP6 address for mDNS", zap.Error(err))
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		logger.Warn("failed to listen on UDP4 for mDNS", zap.Error(err))
		return
	}
	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		logger.Warn("failed to listen on UDP6 for mDNS", zap.Error(err))
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		logger.Warn("failed to start mDNS server", zap.Error(err))
		return
	}
	logger.Info("mDNS server started", zap.String("local_name", localName))
}
