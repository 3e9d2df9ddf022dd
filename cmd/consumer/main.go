// Command consumer reads simulation envelopes from the event stream and logs
// each one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"loan-simulator/config"
	"loan-simulator/logging"
	"loan-simulator/repository"

	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", config.DefaultConfigFile, "path to configuration file")
	consumerName := flag.String("name", "consumer-1", "consumer name within the group")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if conf.EventHub.ConnectionString == "" {
		logger.Fatal("eventHub.connectionString must be set", zap.String("op", "main"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := repository.NewRedisClient(ctx, conf.EventHub.ConnectionString, conf.EventHub.MaxRetries)
	if err != nil {
		logger.Fatal("failed to connect to event hub", zap.String("op", "main"), zap.Error(err))
	}
	defer client.Close()

	consumer := repository.NewRedisStreamConsumer(client, conf.EventHub.Name, conf.EventHub.ConsumerGroup,
		repository.ConsumerOptions{Consumer: *consumerName}, logger)

	logger.Info("consuming simulations",
		zap.String("op", "main"),
		zap.String("stream", conf.EventHub.Name),
		zap.String("group", conf.EventHub.ConsumerGroup),
	)

	err = consumer.Consume(ctx, func(_ context.Context, id string, payload []byte) error {
		logger.Info("received simulation",
			zap.String("simulation", id),
			zap.ByteString("envelope", payload),
		)
		return nil
	})
	if err != nil {
		logger.Error("consumer stopped", zap.String("op", "main"), zap.Error(err))
		return
	}
	logger.Info("consumer exited", zap.String("op", "main"))
}
