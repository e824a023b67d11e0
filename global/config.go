package global

import (
	"os"
	"strconv"
	"time"

	"DMRelay/logger"
	redis "DMRelay/service/storage/redis"
	"DMRelay/tools/ids"
)

// AppConfig holds everything the relay reads from the environment.
// The relay keeps no durable state of its own; shared presence state lives
// behind the Redis address configured here.
type AppConfig struct {
	NodeID        int64
	Port          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AllowedOrigin string
	TypingTTL     time.Duration
}

var Config = AppConfig{
	NodeID:        1,
	Port:          3001,
	RedisAddr:     "127.0.0.1:6379",
	AllowedOrigin: "http://localhost:3000",
	TypingTTL:     3 * time.Second,
}

func Load() {
	Config.Port = envInt("PORT", Config.Port)
	Config.NodeID = int64(envInt("NODE_ID", int(Config.NodeID)))
	Config.RedisAddr = envOr("REDIS_ADDR", Config.RedisAddr)
	Config.RedisPassword = envOr("REDIS_PASSWORD", Config.RedisPassword)
	Config.RedisDB = envInt("REDIS_DB", Config.RedisDB)
	Config.AllowedOrigin = envOr("ALLOWED_ORIGIN", Config.AllowedOrigin)
}

func ConfigIds() {
	ids.SetNodeID(Config.NodeID)
}

func ConfigRedis() error {
	err := redis.InitRedis(redis.Config{
		Addr:     Config.RedisAddr,
		Password: Config.RedisPassword,
		DB:       Config.RedisDB,
	})
	if err != nil {
		logger.Errorf("redis init failed: %v", err)
	}
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warnf("ignoring %s=%q: %v", key, v, err)
		return def
	}
	return n
}
