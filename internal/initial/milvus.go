package initial

import (
	"context"
	"fmt"
	"strings"

	"ShopRec/internal/config"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	MilvusFieldProductID = "product_id"
	MilvusFieldVector    = "vector"
)

// InitMilvus 未配置地址时返回 nil client
func InitMilvus(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	if addr == "" {
		return nil, nil
	}
	cli, err := newMilvusClientAndEnsureSchema(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("milvus init failed: %w", err)
	}
	return cli, nil
}

func newMilvusClientAndEnsureSchema(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	dbName := strings.TrimSpace(conf.MilvusConfig.DBName)
	collection := strings.TrimSpace(conf.MilvusConfig.CollectionName)
	if dbName == "" {
		dbName = "shoprec"
	}
	dim := conf.AIConfig.Embedding.Dimensions

	defaultCli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   "default",
	})
	if err != nil {
		return nil, err
	}
	defer defaultCli.Close()

	dbs, err := defaultCli.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	exists := false
	for _, db := range dbs {
		if db.Name == dbName {
			exists = true
			break
		}
	}
	if !exists {
		if err := defaultCli.CreateDatabase(ctx, dbName); err != nil {
			return nil, err
		}
	}

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   dbName,
	})
	if err != nil {
		return nil, err
	}

	has, err := cli.HasCollection(ctx, collection)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	if !has {
		schema := entity.NewSchema().
			WithName(collection).
			WithDescription("product description embeddings").
			WithField(entity.NewField().WithName(MilvusFieldProductID).WithDataType(entity.FieldTypeInt64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(MilvusFieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))

		if err := cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			_ = cli.Close()
			return nil, err
		}
		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			_ = cli.Close()
			return nil, err
		}
		if err := cli.CreateIndex(ctx, collection, MilvusFieldVector, idx, false); err != nil {
			_ = cli.Close()
			return nil, err
		}
	}

	if err := cli.LoadCollection(ctx, collection, false); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return cli, nil
}
