package global

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"AProject/data/database/mgo/mongoutil"
	mid "AProject/middleware"
	midsec "AProject/middleware/security"
	"AProject/service/storage"
	storageredis "AProject/service/storage/redis"
	ids "AProject/tools/ids"
	security "AProject/tools/security"
)

// AppConfig is the configuration surface the gateway consumes: the local
// federation identity, the listen address, and the backing stores.
type AppConfig struct {
	GatewayID      string
	ServerDomain   string // local home-server domain, e.g. chat.example.org
	PublicEndpoint string // publicly reachable base URL, e.g. https://chat.example.org
	ListenAddr     string

	JWTSecret []byte
	JWTTTL    time.Duration

	PresenceTTL time.Duration

	Redis storageredis.Config
	Mongo mongoutil.Config
}

func LoadConfig() *AppConfig {
	cfg := &AppConfig{
		GatewayID:      envOr("GATEWAY_ID", "msg_gw-1"),
		ServerDomain:   envOr("SERVER_DOMAIN", "chat.local"),
		PublicEndpoint: envOr("PUBLIC_ENDPOINT", "https://chat.local"),
		ListenAddr:     envOr("LISTEN_ADDR", ":8080"),
		JWTSecret:      []byte(envOr("JWT_SECRET", "mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")),
		JWTTTL:         24 * time.Hour,
		PresenceTTL:    2 * time.Minute,
		Redis: storageredis.Config{
			Addr:     envOr("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Mongo: mongoutil.Config{
			Uri:         envOr("MONGO_URI", "mongodb://localhost:27017"),
			Database:    envOr("MONGO_DB", "agora"),
			Username:    os.Getenv("MONGO_USER"),
			Password:    os.Getenv("MONGO_PASSWORD"),
			MaxPoolSize: 20,
			MaxRetry:    3,
		},
	}
	if ttl := os.Getenv("JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			cfg.JWTTTL = time.Duration(h) * time.Hour
		}
	}
	return cfg
}

func (c *AppConfig) JWTOptions() security.Options {
	opts := security.DefaultOptions(c.JWTSecret)
	opts.TTL = c.JWTTTL
	return opts
}

func ConfigIds() {
	ids.SetNodeID(100)
}

func ConfigMiddleware(c *AppConfig) {
	mid.Configure(midsec.Options{JWT: c.JWTOptions()})
}

func ConfigRedis(c *AppConfig) error {
	if err := storageredis.InitRedis(c.Redis); err != nil {
		return err
	}
	storage.Use(storageredis.GetRedis())
	return nil
}

func ConfigMongo(ctx context.Context, c *AppConfig) (*mongo.Database, error) {
	cli, err := mongoutil.NewMongoDB(ctx, &c.Mongo)
	if err != nil {
		return nil, err
	}
	return cli.GetDB(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
