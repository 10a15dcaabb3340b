package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mkraev/chime/internal/domain"
)

type Config struct {
	Mode         string             `mapstructure:"mode"`
	Port         int                `mapstructure:"port"`
	Secret       string             `mapstructure:"secret"`
	ReadLimit    int64              `mapstructure:"read_limit"`
	WriteTimeout time.Duration      `mapstructure:"write_timeout"`
	SendBuffer   int                `mapstructure:"send_buffer"`
	RingTimeout  time.Duration      `mapstructure:"ring_timeout"`
	MsgRateLimit int                `mapstructure:"msg_rate_limit"`
	MsgRateEvery time.Duration      `mapstructure:"msg_rate_every"`
	ICEServers   []domain.ICEServer `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 32)
	// 0 disables the ringing timeout; the upstream behavior is to ring
	// until the peer answers or disconnects.
	v.SetDefault("ring_timeout", "45s")
	v.SetDefault("msg_rate_limit", 60)
	v.SetDefault("msg_rate_every", "10s")
	v.SetDefault("ice_servers", defaultICEServers())

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func defaultICEServers() []map[string]any {
	return []map[string]any{
		{"urls": []string{
			"stun:stun.l.google.com:19302",
			"stun:stun1.l.google.com:19302",
			"stun:stun2.l.google.com:19302",
		}},
	}
}
