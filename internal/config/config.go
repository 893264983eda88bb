package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/galantry1/luba.tv/pkg/config"
)

type Config struct {
	Server    ServerConfig
	Room      RoomConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RoomConfig struct {
	// EmptyTTL is how long a room with no participants survives before it is
	// deleted. A join within the window cancels the deletion.
	EmptyTTL       time.Duration `mapstructure:"empty_ttl"`
	AllowHostClaim bool          `mapstructure:"allow_host_claim"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type CORSConfig struct {
	// AllowedOrigins is parsed from a comma-separated list; empty means any
	// origin is accepted.
	AllowedOrigins []string `mapstructure:"-"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("room.empty_ttl", "10m")
	v.SetDefault("room.allow_host_claim", true)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 65536)
	v.SetDefault("cors.allowed_origins", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("room.empty_ttl", "EMPTY_ROOM_TTL")
	v.BindEnv("room.allow_host_claim", "ALLOW_HOST_CLAIM")
	v.BindEnv("cors.allowed_origins", "CORS_ORIGINS")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Room.EmptyTTL = parseDuration(v, "room.empty_ttl", 10*time.Minute)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)

	cfg.CORS.AllowedOrigins = splitOrigins(v.GetString("cors.allowed_origins"))

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
