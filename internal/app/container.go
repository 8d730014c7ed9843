package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ShopRec/internal/config"
	"ShopRec/internal/initial"
	catalogService "ShopRec/internal/modules/catalog/application/service"
	catalogPersistence "ShopRec/internal/modules/catalog/infrastructure/persistence"
	interactionService "ShopRec/internal/modules/interaction/application/service"
	"ShopRec/internal/modules/interaction/domain/event"
	interactionPersistence "ShopRec/internal/modules/interaction/infrastructure/persistence"
	"ShopRec/internal/modules/interaction/infrastructure/mq"
	"ShopRec/internal/modules/interaction/infrastructure/mq/kafka"
	recService "ShopRec/internal/modules/recommend/application/service"
	recRepository "ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/infrastructure/embedding"
	"ShopRec/internal/modules/recommend/infrastructure/popularity"
	"ShopRec/internal/modules/recommend/infrastructure/vectordb"
	userService "ShopRec/internal/modules/user/application/service"
	userPersistence "ShopRec/internal/modules/user/infrastructure/persistence"
	"ShopRec/pkg/redis"
	"ShopRec/pkg/ws"
	"ShopRec/pkg/zlog"

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container 进程内全部服务的装配结果
type Container struct {
	Conf *config.Config
	DB   *gorm.DB

	Hub          *ws.Hub
	Users        userService.UserService
	Catalog      catalogService.CatalogService
	Recommend    recService.RecommendService
	Interactions interactionService.InteractionService

	// 以下为可选基础设施，未配置时为 nil
	Milvus      mclient.Client
	MilvusIndex *vectordb.MilvusIndex
	Publisher   mq.Publisher
}

// Overrides 测试用，替换外部依赖
type Overrides struct {
	Embedder einoEmbedding.Embedder
	Meta     embedding.EmbedderMeta
	Sink     event.Sink
}

func Build(ctx context.Context, conf *config.Config, db *gorm.DB, ov *Overrides) (*Container, error) {
	if conf == nil || db == nil {
		return nil, errors.New("config and db are required")
	}
	c := &Container{Conf: conf, DB: db, Hub: ws.NewHub()}

	embedder, meta, err := c.embedder(ctx, ov)
	if err != nil {
		return nil, err
	}

	userRepo := userPersistence.NewUserRepository(db)
	productRepo := catalogPersistence.NewProductRepository(db)
	embeddingRepo := catalogPersistence.NewEmbeddingRepository(db)
	interactionRepo := interactionPersistence.NewInteractionRepository(db)

	// 向量索引：database 为每次全量扫描，milvus 为写穿 + ANN 检索
	var writeThrough recRepository.VectorIndex
	if strings.EqualFold(conf.RecommendConfig.VectorIndex, "milvus") {
		cli, err := initial.InitMilvus(ctx, conf)
		if err != nil {
			return nil, err
		}
		if cli == nil {
			return nil, errors.New("vectorIndex=milvus but milvusConfig.address is empty")
		}
		idx, err := vectordb.NewMilvusIndex(cli, conf.MilvusConfig.CollectionName,
			initial.MilvusFieldProductID, initial.MilvusFieldVector, meta.Dim)
		if err != nil {
			_ = cli.Close()
			return nil, err
		}
		c.Milvus, c.MilvusIndex, writeThrough = cli, idx, idx
	}

	c.Users = userService.NewUserService(userRepo)
	c.Catalog = catalogService.NewCatalogService(productRepo, embeddingRepo, embedder, meta, writeThrough)

	var index recRepository.VectorIndex = vectordb.NewDatabaseIndex(c.Catalog)
	if writeThrough != nil {
		index = writeThrough
	}

	var pop recRepository.PopularityStore = popularity.NewSQLStore(interactionRepo)
	if redis.IsConnected() {
		pop = popularity.NewRedisStore(conf.RedisConfig.KeyPrefix)
	}

	rc := conf.RecommendConfig
	c.Recommend = recService.NewRecommendService(productRepo, embeddingRepo, c.Catalog, interactionRepo, index, pop, recService.Options{
		TopN:        rc.TopN,
		PriceBand:   rc.PriceBand,
		MinSupport:  rc.MinSupport,
		MinLift:     rc.MinLift,
		RecentViews: rc.RecentViews,
	})

	sink, err := c.eventSink(ov)
	if err != nil {
		if c.Milvus != nil {
			_ = c.Milvus.Close()
		}
		return nil, err
	}
	c.Interactions = interactionService.NewInteractionService(interactionRepo, userRepo, productRepo, c.Recommend, sink, c.Hub, rc.RecentViews)
	return c, nil
}

func (c *Container) embedder(ctx context.Context, ov *Overrides) (einoEmbedding.Embedder, embedding.EmbedderMeta, error) {
	if ov != nil && ov.Embedder != nil {
		return ov.Embedder, ov.Meta, nil
	}
	em, meta, err := embedding.NewEmbedderFromConfig(ctx, c.Conf)
	if err != nil {
		return nil, embedding.EmbedderMeta{}, fmt.Errorf("init embedder: %w", err)
	}
	zlog.Info("embedder ready", zap.String("model", meta.Name()), zap.Int("dim", meta.Dim))
	return em, meta, nil
}

// eventSink 配置了 Kafka 时写入 topic 由 worker 消费，否则进程内直接累加热度
func (c *Container) eventSink(ov *Overrides) (event.Sink, error) {
	if ov != nil && ov.Sink != nil {
		return ov.Sink, nil
	}
	kc := c.Conf.KafkaConfig
	if len(kc.Brokers) == 0 {
		return event.SinkFunc(c.Recommend.ApplyEvent), nil
	}
	if err := kafka.EnsureTopic(kafka.TopicAdminConfig{Brokers: kc.Brokers, ClientID: kc.ClientID}, kc.EventTopic, 3, 1); err != nil {
		zlog.Warn("ensure kafka topic failed", zap.String("topic", kc.EventTopic), zap.Error(err))
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{Brokers: kc.Brokers, ClientID: kc.ClientID})
	if err != nil {
		return nil, fmt.Errorf("init kafka publisher: %w", err)
	}
	c.Publisher = pub
	return mq.NewEventSink(pub, kc.EventTopic), nil
}

// KafkaEnabled 是否需要运行事件消费者
func (c *Container) KafkaEnabled() bool {
	return len(c.Conf.KafkaConfig.Brokers) > 0
}

// RunWorker 消费交互事件并更新热度，阻塞直到 ctx 取消
func (c *Container) RunWorker(ctx context.Context) error {
	kc := c.Conf.KafkaConfig
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  kc.Brokers,
		GroupID:  kc.ConsumerGroupID,
		Topics:   []string{kc.EventTopic},
		ClientID: kc.ClientID,
	})
	if err != nil {
		return fmt.Errorf("init kafka consumer: %w", err)
	}
	defer consumer.Close()

	zlog.Info("interaction worker started", zap.String("topic", kc.EventTopic), zap.String("group", kc.ConsumerGroupID))
	return consumer.Run(ctx, mq.EventHandler(c.Recommend.ApplyEvent))
}

func (c *Container) Close() error {
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Milvus != nil {
		errs = append(errs, c.Milvus.Close())
	}
	errs = append(errs, redis.Close())
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
