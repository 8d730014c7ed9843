package config

import (
	"log"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

const DefaultConfigPath = "configs/config_local.toml"

type MainConfig struct {
	AppName  string `toml:"appName"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	TLS      bool   `toml:"tls"`
	CertFile string `toml:"certFile"`
	KeyFile  string `toml:"keyFile"`
}

type MysqlConfig struct {
	// Driver mysql | sqlite，sqlite 只用于本地开发与测试
	Driver       string `toml:"driver"`
	SqlitePath   string `toml:"sqlitePath"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
	Level   string `toml:"level"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type MilvusConfig struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbName"`
	CollectionName string `toml:"collectionName"`
}

type KafkaConfig struct {
	Brokers         []string `toml:"brokers"`
	ClientID        string   `toml:"clientID"`
	EventTopic      string   `toml:"eventTopic"`
	ConsumerGroupID string   `toml:"consumerGroupID"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
	KeyPrefix    string `toml:"keyPrefix"`
}

type AIEmbeddingConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"apiKey"`
	BaseURL        string `toml:"baseURL"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
}

// RecommendConfig 推荐策略参数
type RecommendConfig struct {
	TopN        int     `toml:"topN"`
	VectorIndex string  `toml:"vectorIndex"` // database | milvus
	PriceBand   float64 `toml:"priceBand"`
	MinSupport  float64 `toml:"minSupport"`
	MinLift     float64 `toml:"minLift"`
	RecentViews int     `toml:"recentViews"`
}

// MCPConfig MCP 配置
type MCPConfig struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	JwtConfig       `toml:"jwtConfig"`
	MilvusConfig    `toml:"milvusConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	AIConfig        `toml:"aiConfig"`
	LogConfig       `toml:"logConfig"`
	RedisConfig     `toml:"redisConfig"`
	RecommendConfig `toml:"recommendConfig"`
	MCPConfig       `toml:"mcpConfig"`
}

var (
	config *Config
	mu     sync.Mutex
)

// LoadConfig 从指定路径加载配置并设置为全局配置；文件缺失时使用默认值
func LoadConfig(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath
	}
	c := new(Config)
	_, err := toml.DecodeFile(path, c)
	if err != nil {
		log.Printf("加载配置文件失败: %v, 使用默认设置", err)
	}
	c.ApplyDefaults()

	mu.Lock()
	config = c
	mu.Unlock()
	return c, err
}

// Decode 从字符串解析配置，不影响全局配置
func Decode(data string) (*Config, error) {
	c := new(Config)
	if _, err := toml.Decode(data, c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return c, nil
}

func GetConfig() *Config {
	mu.Lock()
	loaded := config != nil
	mu.Unlock()
	if !loaded {
		_, _ = LoadConfig(DefaultConfigPath)
	}
	mu.Lock()
	defer mu.Unlock()
	return config
}

// SetConfig 替换全局配置（测试与命令行使用）
func SetConfig(c *Config) {
	if c != nil {
		c.ApplyDefaults()
	}
	mu.Lock()
	config = c
	mu.Unlock()
}

func (c *Config) ApplyDefaults() {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "shoprec"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.MysqlConfig.Driver == "" {
		c.MysqlConfig.Driver = "mysql"
	}
	if c.MysqlConfig.SqlitePath == "" {
		c.MysqlConfig.SqlitePath = "shoprec.db"
	}
	if c.MysqlConfig.Port == 0 {
		c.MysqlConfig.Port = 3306
	}
	if c.MysqlConfig.DatabaseName == "" {
		c.MysqlConfig.DatabaseName = "shopping_recommender"
	}
	if c.JwtConfig.ExpireHours <= 0 {
		c.JwtConfig.ExpireHours = 24
	}
	if c.KafkaConfig.EventTopic == "" {
		c.KafkaConfig.EventTopic = "shoprec.interactions"
	}
	if c.KafkaConfig.ConsumerGroupID == "" {
		c.KafkaConfig.ConsumerGroupID = "shoprec-popularity"
	}
	if c.RedisConfig.KeyPrefix == "" {
		c.RedisConfig.KeyPrefix = "shoprec:"
	}
	if c.MilvusConfig.CollectionName == "" {
		c.MilvusConfig.CollectionName = "product_vectors"
	}
	if c.AIConfig.Embedding.Provider == "" {
		c.AIConfig.Embedding.Provider = "hash"
	}
	if c.AIConfig.Embedding.Dimensions <= 0 {
		// all-MiniLM-L6-v2 同维度
		c.AIConfig.Embedding.Dimensions = 384
	}
	r := &c.RecommendConfig
	if r.TopN <= 0 {
		r.TopN = 5
	}
	if r.VectorIndex == "" {
		r.VectorIndex = "database"
	}
	if r.PriceBand <= 0 {
		r.PriceBand = 0.2
	}
	if r.MinSupport <= 0 {
		r.MinSupport = 0.2
	}
	if r.MinLift <= 0 {
		r.MinLift = 1.1
	}
	if r.RecentViews <= 0 {
		r.RecentViews = 20
	}
	if c.MCPConfig.Name == "" {
		c.MCPConfig.Name = "shoprec"
	}
	if c.MCPConfig.Version == "" {
		c.MCPConfig.Version = "1.0.0"
	}
}
