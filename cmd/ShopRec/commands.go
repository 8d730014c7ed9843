package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpServer "ShopRec/api/http"
	"ShopRec/internal/app"
	"ShopRec/internal/config"
	"ShopRec/internal/initial"
	"ShopRec/pkg/redis"
	"ShopRec/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const backfillLockKey = "lock:backfill"

var (
	configPath string
	reindex    bool

	rootCmd = &cobra.Command{
		Use:           "shoprec",
		Short:         "Product recommendation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the event worker when Kafka is configured)",
		RunE:  runServe,
	}

	backfillCmd = &cobra.Command{
		Use:   "backfill",
		Short: "Compute embeddings for products that have none",
		RunE:  runBackfill,
	}

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "Consume interaction events and update product popularity",
		RunE:  runWorker,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the TOML config file")
	backfillCmd.Flags().BoolVar(&reindex, "reindex", false, "also rebuild the Milvus index from stored embeddings")
	rootCmd.AddCommand(serveCmd, backfillCmd, workerCmd)
}

// setup 加载配置、日志、数据库与 Redis，并装配全部服务
func setup(ctx context.Context) (*app.Container, error) {
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		zlog.Warn("config file not loaded, using defaults", zap.String("path", configPath), zap.Error(err))
	}
	zlog.Setup(conf.LogConfig.LogPath, conf.LogConfig.Level)

	db, err := initial.InitGorm(conf)
	if err != nil {
		return nil, err
	}
	if _, err := initial.InitRedis(conf); err != nil {
		// Redis 不可用时退回 SQL 聚合
		zlog.Error("redis unavailable, popularity falls back to sql", zap.Error(err))
	}

	c, err := app.Build(ctx, conf, db, nil)
	if err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return c, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	gin.SetMode(gin.ReleaseMode)
	mc := c.Conf.MainConfig
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", mc.Host, mc.Port),
		Handler:           httpServer.NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("服务器正在启动", zap.String("addr", srv.Addr), zap.Bool("tls", mc.TLS))
		var err error
		if mc.TLS {
			err = srv.ListenAndServeTLS(mc.CertFile, mc.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("正在关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if c.KafkaEnabled() {
		g.Go(func() error {
			return c.RunWorker(gctx)
		})
	}

	err = g.Wait()
	zlog.Info("服务器已关闭")
	return err
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if redis.IsConnected() {
		ok, err := redis.Lock(ctx, c.Conf.RedisConfig.KeyPrefix+backfillLockKey, 30*time.Minute)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("another backfill is running")
		}
		defer redis.Unlock(context.Background(), c.Conf.RedisConfig.KeyPrefix+backfillLockKey)
	}

	res, err := c.Catalog.BackfillEmbeddings(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created=%d skipped=%d failed=%d\n", res.Created, res.Skipped, res.Failed)

	if reindex {
		if c.MilvusIndex == nil {
			return errors.New("--reindex requires recommendConfig.vectorIndex = \"milvus\"")
		}
		n, err := c.MilvusIndex.Rebuild(ctx, c.Catalog)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reindexed=%d\n", n)
	}
	return nil
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if !c.KafkaEnabled() {
		return errors.New("kafkaConfig.brokers is empty, nothing to consume")
	}
	return c.RunWorker(ctx)
}
