// Package database ouvre les connexions aux backends de la passerelle :
// Redis ou ScyllaDB pour l'état acheteur, Elasticsearch et MinIO en option.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/config"
)

// Connections regroupe les clients ouverts ; les champs optionnels restent nil.
type Connections struct {
	Redis   *redis.Client
	Scylla  *gocql.Session
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	store   cache.Store
	counter cache.Counter
}

// Connect ouvre le backend d'état choisi puis les services optionnels.
// Un échec Elasticsearch ou MinIO n'est pas bloquant.
func Connect(ctx context.Context, cfg config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	c := &Connections{}
	switch cfg.StorageBackend {
	case config.BackendMemory:
		mem := cache.NewMemoryStore()
		c.store, c.counter = mem, mem
		log.Println("⚠️ Stockage en mémoire : l'état acheteur sera perdu au redémarrage")

	case config.BackendScylla:
		session, err := ConnectScylla(cfg)
		if err != nil {
			return nil, err
		}
		c.Scylla = session
		store := cache.NewScyllaStore(session)
		if err := store.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("schéma ScyllaDB: %w", err)
		}
		c.store = store
		// Scylla ne compte pas : le rate limit passe par Redis si disponible
		if rdb, err := ConnectRedis(ctx, cfg); err == nil {
			c.Redis = rdb
			c.counter = cache.NewRedisStore(rdb)
		} else {
			log.WithError(err).Warn("⚠️ Redis indisponible, rate limit en mémoire")
			c.counter = cache.NewMemoryStore()
		}

	default:
		rdb, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.Redis = rdb
		store := cache.NewRedisStore(rdb)
		c.store, c.counter = store, store
	}

	if cfg.ElasticEnabled() {
		client, err := ConnectElastic(cfg)
		if err != nil {
			log.WithError(err).Warn("⚠️ Elasticsearch indisponible, recherche en mémoire")
		} else {
			c.Elastic = client
		}
	}

	if cfg.MinioEnabled() {
		client, err := ConnectMinIO(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("⚠️ MinIO indisponible, preuves gardées en ligne")
		} else {
			c.MinIO = client
		}
	}

	log.Println("✅ Toutes les bases de données sont connectées")
	return c, nil
}

// Store est l'état persistant de l'acheteur.
func (c *Connections) Store() cache.Store { return c.store }

// Counter sert au rate limiting.
func (c *Connections) Counter() cache.Counter { return c.counter }

func (c *Connections) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.WithError(err).Warn("⚠️ Fermeture Redis")
		}
	}
	if c.Scylla != nil {
		c.Scylla.Close()
		log.Println("🔌 Session ScyllaDB fermée")
	}
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("❌ Erreur connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")
	return rdb, nil
}

// =============================================
// SCYLLA DB
// =============================================

func scyllaCluster(cfg config.Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}
	if cfg.ScyllaSSL {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.ScyllaCAPath,
			EnableHostVerification: cfg.ScyllaCAPath != "",
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

func ConnectScylla(cfg config.Config) (*gocql.Session, error) {
	session, err := scyllaCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", cfg.ScyllaKeyspace, err)
	}
	log.Printf("✅ Session ScyllaDB pour keyspace '%s'", cfg.ScyllaKeyspace)
	return session, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func ConnectElastic(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("création client Elasticsearch: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("connexion Elasticsearch: %s", res.Status())
	}
	log.Println("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

func ConnectMinIO(ctx context.Context, cfg config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", cfg.MinioBucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.MinioBucket)
	}
	log.Println("✅ Connecté à MinIO :", cfg.MinioEndpoint)
	return client, nil
}
