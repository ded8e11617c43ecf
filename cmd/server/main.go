// Command server serves the runbox API and executes queued runs against a
// Judge0 instance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/gsarma/runbox/internal/api"
	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/config"
	"github.com/gsarma/runbox/internal/run"
	"github.com/gsarma/runbox/internal/status"
	"github.com/gsarma/runbox/internal/store"
	"github.com/gsarma/runbox/internal/worker"
)

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func(), cleanUp stopFunc)
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.InfoLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", redact(*conf))))
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	pool := newPool(initCtx, conf)
	rdb := newRedis(initCtx, conf)
	initCancel()

	deps := api.Deps{
		Runner:      newRunner(conf),
		Logger:      logger.Named("api"),
		MaxAttempts: conf.MaxAttempts,
	}
	if pool != nil {
		deps.Queries = store.New(pool)
	}
	if rdb != nil {
		deps.Board = status.New(rdb, conf.StatusTTL)
	}
	h := api.NewHandler(deps)

	servers := []initFunc{
		initHTTPServer(conf, h),
		initMonitorHTTPServer(conf),
		initWorker(conf, deps.Queries, h),
	}

	// Gracefully shutdown, with signal / HTTP server / Monitor HTTP server / worker
	sig := make(chan os.Signal, 1+len(servers))

	stops := []stopFunc{}
	for _, s := range servers {
		start, stop := s()
		if start != nil {
			go func() {
				start()
				sig <- os.Interrupt
			}()
		}
		if stop != nil {
			stops = append(stops, stop)
		}
	}

	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Shutting Down...")

	ctx, cancel := context.WithTimeout(context.TODO(), 10*time.Second)
	defer cancel()

	go func() {
		logger.Info("Shutdown Finished", zap.Error(shutdown(ctx, stops, closeStores(pool, rdb))))
		cancel()
	}()
	<-ctx.Done()
}

// shutdown runs stops concurrently and then closeStores, so that in-flight
// jobs can still record their status before the connections go away.
func shutdown(ctx context.Context, stops []stopFunc, closeStores stopFunc) error {
	var eg errgroup.Group
	for _, s := range stops {
		eg.Go(func() error {
			return s(ctx)
		})
	}
	err := eg.Wait()
	if closeStores != nil {
		err = errors.Join(err, closeStores(ctx))
	}
	return err
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

func redact(c config.Config) config.Config {
	for _, s := range []*string{&c.AuthToken, &c.Judge0AuthToken, &c.RedisPassword, &c.DatabaseURL} {
		if *s != "" {
			*s = "***"
		}
	}
	return c
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

func newRunner(conf *config.Config) run.Runner {
	client := code.NewJudge0Client(code.Judge0Config{
		URL:       conf.Judge0URL,
		AuthToken: conf.Judge0AuthToken,
		Timeout:   conf.RequestTimeout,
	})
	var r run.Runner = run.New(client, run.Config{
		PollInterval:     conf.PollInterval,
		MaxWait:          conf.MaxWait,
		TransportRetries: conf.TransportRetries,
		RetryFloor:       conf.RetryFloor,
		RetryCeil:        conf.RetryCeil,
	}, run.WithLogger(logger.Named("run")))
	if conf.EnableMetrics {
		r = run.NewMetricsRunner(r)
	}
	logger.Info("Judge0 client ready", zap.String("url", conf.Judge0URL),
		zap.Duration("pollInterval", conf.PollInterval), zap.Duration("maxWait", conf.MaxWait))
	return r
}

func newPool(ctx context.Context, conf *config.Config) *pgxpool.Pool {
	if conf.DatabaseURL == "" {
		logger.Warn("No database configured, only synchronous runs are served")
		return nil
	}
	pool, err := pgxpool.New(ctx, conf.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Database ping failed", zap.Error(err))
	}
	if err := store.Migrate(ctx, pool); err != nil {
		logger.Fatal("Database migration failed", zap.Error(err))
	}
	return pool
}

func newRedis(ctx context.Context, conf *config.Config) *redis.Client {
	if conf.RedisAddr == "" {
		return nil
	}
	rdb, err := status.Connect(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
	if err != nil {
		logger.Warn("Status board disabled", zap.Error(err))
		return nil
	}
	return rdb
}

func closeStores(pool *pgxpool.Pool, rdb *redis.Client) stopFunc {
	return func(ctx context.Context) error {
		if pool != nil {
			pool.Close()
		}
		if rdb != nil {
			return rdb.Close()
		}
		return nil
	}
}

func initHTTPServer(conf *config.Config, h *api.Handler) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		if conf.Mode == config.ModeWorker {
			return nil, nil
		}
		srv := http.Server{
			Addr:    conf.HTTPAddr,
			Handler: initHTTPMux(conf, h),
		}

		return func() {
				logger.Info("Starting http server", zap.String("addr", conf.HTTPAddr))
				if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
					logger.Info("Http server stopped", zap.Error(err))
				} else {
					logger.Error("Http server stopped", zap.Error(err))
				}
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initHTTPMux(conf *config.Config, h *api.Handler) http.Handler {
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Metrics Handle
	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	if conf.AuthToken != "" {
		logger.Info("Attach token auth")
	}
	api.RegisterRoutes(r, h, conf.AuthToken)
	return r
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		if !conf.EnableMetrics {
			return nil, nil
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		msrv := http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mux,
		}
		return func() {
				logger.Info("Starting monitoring http server", zap.String("addr", conf.MonitorAddr))
				logger.Info("Monitoring http server stopped", zap.Error(msrv.ListenAndServe()))
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func initWorker(conf *config.Config, q store.Querier, exec worker.JobExecutor) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		if conf.Mode == config.ModeAPI || q == nil {
			return nil, nil
		}
		w := worker.New(q, exec, worker.Config{
			Concurrency: conf.WorkerConcurrency,
			Tick:        conf.WorkerTick,
			Logger:      logger.Named("worker"),
		})
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		return func() {
				logger.Info("Worker started", zap.Int("concurrency", conf.WorkerConcurrency))
				w.Start(ctx)
				close(done)
			}, func(stopCtx context.Context) error {
				cancel()
				select {
				case <-done:
					logger.Info("Worker stopped")
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			}
	}
}
