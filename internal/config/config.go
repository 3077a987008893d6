package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Backends de stockage pour l'état persistant de l'acheteur.
const (
	BackendRedis  = "redis"
	BackendScylla = "scylla"
	BackendMemory = "memory"
)

// Config regroupe les réglages de la passerelle acheteur.
type Config struct {
	Port    string
	GinMode string

	// Services distants : le service vendeur (catalogue, commandes, uploads)
	// et le service acheteur (détails produit, profil, notifications, boutiques).
	SellerServiceURL string
	BuyerServiceURL  string
	HTTPTimeout      time.Duration

	StorageBackend string
	RedisHost      string
	RedisPassword  string
	RedisDB        int

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string
	ScyllaSSL      bool
	ScyllaCAPath   string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	GcashAccount       string
	SearchReindexEvery time.Duration

	SessionSecret    string
	SessionJWTSecret string
	SecureCookies    bool
	AllowedOrigins   []string

	NotificationPollInterval time.Duration
	CartTTL                  time.Duration
	APIMaxRequests           int
}

// Load charge le fichier .env s'il existe.
func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// FromEnv construit la configuration à partir de l'environnement, avec des valeurs par défaut.
func FromEnv() Config {
	return Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		SellerServiceURL: strings.TrimRight(getEnv("SELLER_SERVICE_URL", "http://localhost:5001"), "/"),
		BuyerServiceURL:  strings.TrimRight(getEnv("BUYER_SERVICE_URL", "http://localhost:5002"), "/"),
		HTTPTimeout:      getDuration("HTTP_TIMEOUT", 15*time.Second),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendRedis)),
		RedisHost:      getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),

		ScyllaHosts:    splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "sea_merkado_buyer"),
		ScyllaUsername: os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaSSL:      getBool("SCYLLA_SSL_ENABLED", false),
		ScyllaCAPath:   os.Getenv("SCYLLA_SSL_CA_PATH"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "payment-proofs"),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),

		GcashAccount:       os.Getenv("GCASH_ACCOUNT"),
		SearchReindexEvery: getDuration("SEARCH_REINDEX_INTERVAL", 5*time.Minute),

		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionJWTSecret: os.Getenv("SESSION_JWT_SECRET"),
		SecureCookies:    getBool("SECURE_COOKIES", false),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		NotificationPollInterval: getDuration("NOTIFICATION_POLL_INTERVAL", 10*time.Second),
		CartTTL:                  getDuration("CART_TTL", 30*24*time.Hour),
		APIMaxRequests:           getInt("API_MAX_REQUESTS", 100),
	}
}

// Validate vérifie les réglages obligatoires.
func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET manquant")
	}
	switch c.StorageBackend {
	case BackendRedis, BackendMemory:
	case BackendScylla:
		if len(c.ScyllaHosts) == 0 {
			return errors.New("SCYLLA_HOSTS requis pour le backend scylla")
		}
	default:
		return errors.New("STORAGE_BACKEND inconnu: " + c.StorageBackend)
	}
	if c.NotificationPollInterval <= 0 {
		return errors.New("NOTIFICATION_POLL_INTERVAL doit être positif")
	}
	if c.ElasticEnabled() && c.SearchReindexEvery <= 0 {
		return errors.New("SEARCH_REINDEX_INTERVAL doit être positif")
	}
	return nil
}

// UploadsBaseURL est la racine des images servies par le service vendeur.
func (c Config) UploadsBaseURL() string {
	return c.SellerServiceURL + "/uploads"
}

func (c Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != ""
}

func (c Config) ElasticEnabled() bool {
	return c.ElasticURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.ToLower(v) == "true"
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
