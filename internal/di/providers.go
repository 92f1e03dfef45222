package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	mid "FinCast/internal/middleware"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/stream"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	pkgcache "FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/queue"
	"FinCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "dev" || cfg.Environment == "local" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the ClickHouse-backed daily candle store, or nil
// when ClickHouse is disabled.
func ProvidePriceStore(cfg *config.Config, lgr *applogger.Logger) (repository.PriceStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS fincast",
		`CREATE TABLE IF NOT EXISTS fincast.daily_candles (
            bucket DateTime, symbol String,
            open Float64, high Float64, low Float64, close Float64, vol Float64
        ) ENGINE=MergeTree ORDER BY (symbol, bucket)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	store := internalrepo.NewCHPriceStore(client)
	store.SetLogger(lgr)
	return store, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher, or nil when
// Kafka is disabled.
func ProvideSignalPublisher(cfg *config.Config) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	topic := cfg.Forecast.SignalsTopic
	if topic == "" {
		topic = "fincast.signals"
	}
	return internalrepo.NewKafkaSignalPublisher(producer, topic), nil
}

// ProvideWindows creates the in-memory live price windows.
func ProvideWindows(cfg *config.Config) *stream.Windows {
	return stream.NewWindows(cfg.Forecast.WindowSize)
}

// ProvideQuoteCollector wires the WebSocket feed through the pipeline into
// the live windows, or nil when streaming is disabled.
func ProvideQuoteCollector(
	cfg *config.Config,
	windows *stream.Windows,
	m repository.Metrics,
) *usecase.QuoteCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	client := stream.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
	proc := usecase.NewQuoteProcessor(windows, m)
	pipe := mid.NewQuotePipeline(proc, m,
		mid.WithMaxRPS(cfg.Stream.MaxRPS),
		mid.WithBufferSize(cfg.Stream.BufferSize),
	)
	return usecase.NewQuoteCollector(client, proc, m, pipe)
}

// ProvideOrchestrator assembles the forecasting engine.
func ProvideOrchestrator(
	cfg *config.Config,
	store repository.PriceStore,
	windows *stream.Windows,
	pub repository.SignalPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
) *usecase.ForecastOrchestrator {
	fcfg := forecast.ForecasterConfig{
		Lookback:   cfg.Forecast.Lookback,
		MaxHorizon: cfg.Forecast.MaxHorizon,
		Epochs:     cfg.Forecast.Epochs,
	}
	tcfg := forecast.TriggerConfig{
		PriceUpThreshold:   cfg.Trigger.MinUpProb,
		PriceDownThreshold: cfg.Trigger.MinDownProb,
		LiquidityThreshold: cfg.Trigger.MinLiqProb,
		QuantileSpreadMax:  cfg.Trigger.SpreadMax,
	}
	var window repository.PriceWindow
	if windows != nil {
		window = windows
	}
	return usecase.NewForecastOrchestrator(
		forecast.NewGBMForecaster(fcfg),
		forecast.NewStatLiquidityModel(forecast.DefaultLiquidityConfig()),
		forecast.NewExecutionTrigger(tcfg),
		forecast.NewExplainer(nil),
		store,
		window,
		pub,
		m,
		lgr,
	)
}

// ProvideResponseCache creates the layered response cache, or nil when Redis
// is disabled.
func ProvideResponseCache(cfg *config.Config) (*pkgcache.LayeredCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, port := splitAddr(cfg.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideJobQueue creates the Redis-backed training job queue, or nil when
// Redis is disabled.
func ProvideJobQueue(
	cfg *config.Config,
	cache *pkgcache.LayeredCache,
	orch *usecase.ForecastOrchestrator,
	lgr *applogger.Logger,
) *queue.RedisQueue {
	if !cfg.Redis.Enabled || cache == nil {
		return nil
	}
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: cfg.Redis.Queue.RetryDelay,
	}, cache.Redis().Client(), queue.ModeProducerConsumer)
	q.RegisterJobs([]queue.Job{
		usecase.NewTransferLearnJob(orch, lgr),
		usecase.NewAugmentJob(orch, lgr),
	})
	return q
}

// ProvideForecastHandler wires the HTTP surface.
func ProvideForecastHandler(
	lgr *applogger.Logger,
	orch *usecase.ForecastOrchestrator,
	store repository.PriceStore,
	cache *pkgcache.LayeredCache,
	jobs *queue.RedisQueue,
) *api.ForecastHandler {
	h := api.NewForecastHandler(lgr, orch)
	if cache != nil {
		h.SetCache(cache)
	}
	if store != nil {
		h.SetHistory(usecase.NewHistoryUseCase(store))
	}
	if jobs != nil {
		h.SetJobQueue(jobs)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	handler *api.ForecastHandler,
	collector *usecase.QuoteCollector,
	jobs *queue.RedisQueue,
	store repository.PriceStore,
	pub repository.SignalPublisher,
) *server.App {
	return server.New(cfg, lgr, handler, collector, jobs, store, pub)
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}
