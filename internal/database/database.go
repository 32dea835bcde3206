package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/repository"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Clients holds every backing client built at startup. Only Postgres is
// mandatory; the others are nil when unconfigured or unreachable.
type Clients struct {
	Repo    *repository.Repository
	Redis   *redis.Client
	Scylla  *gocql.Session
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
	Kafka   *kafka.Writer
}

// PostgresCredentials maps the config onto repository credentials.
func PostgresCredentials(cfg *config.Config) *repository.Credentials {
	return &repository.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.MigrationsDir,
	}
}

// Connect opens Postgres and every optional backend that is configured.
func Connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repo, err := repository.NewRepository(PostgresCredentials(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	c := &Clients{Repo: repo}

	if cfg.RedisHost != "" {
		if c.Redis, err = NewRedis(ctx, cfg); err != nil {
			log.Printf("⚠️ Redis disabled: %v", err)
		}
	}
	if len(cfg.ScyllaHosts) > 0 {
		if c.Scylla, err = NewScyllaSession(cfg); err != nil {
			log.Printf("⚠️ ScyllaDB disabled: %v", err)
		}
	}
	if cfg.ElasticURL != "" {
		if c.Elastic, err = NewElastic(cfg); err != nil {
			log.Printf("⚠️ Elasticsearch disabled: %v", err)
		}
	}
	if cfg.MinIOEndpoint != "" {
		if c.MinIO, err = NewMinIO(ctx, cfg); err != nil {
			log.Printf("⚠️ MinIO disabled: %v", err)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		c.Kafka = NewKafkaWriter(cfg)
		log.Printf("✅ Kafka writer ready for topic %s", cfg.KafkaTopic)
	}

	return c, nil
}

func (c *Clients) Close() error {
	var errs []error
	if c.Kafka != nil {
		errs = append(errs, c.Kafka.Close())
	}
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.Repo != nil {
		errs = append(errs, c.Repo.Close())
	}
	return errors.Join(errs...)
}

func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Println("✅ Connected to Redis")
	return client, nil
}

func NewScyllaSession(cfg *config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create scylla session for %s: %w", cfg.ScyllaKeyspace, err)
	}
	log.Printf("✅ ScyllaDB session for keyspace '%s'", cfg.ScyllaKeyspace)
	return session, nil
}

func NewElastic(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	log.Println("✅ Connected to Elasticsearch")
	return client, nil
}

// NewMinIO connects and makes sure the archive bucket exists.
func NewMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
		log.Println("🪣 Bucket created:", cfg.MinIOBucket)
	}
	log.Println("✅ Connected to MinIO:", cfg.MinIOEndpoint)
	return client, nil
}

func NewKafkaWriter(cfg *config.Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
