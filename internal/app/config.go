package app

import (
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/viper"

	"palisade/internal/protocol/handshake"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Role             string        `mapstructure:"role"`              // "initiator" or "responder"
	EndpointID       string        `mapstructure:"endpoint_id"`       // origin identifier announced to the peer
	CodeIdentity     string        `mapstructure:"code_identity"`     // code hash/version folded into derivation
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"` // wait for the peer announce
	ReplayCacheSize  int           `mapstructure:"replay_cache_size"` // inbound nonce cache bound
	Window           uint64        `mapstructure:"window"`            // 0 = strict monotonic sequencing
	LogLevel         string        `mapstructure:"log_level"`
}

// Load reads configuration from an optional file plus PALISADE_* environment
// variables, with sane defaults for everything.
func Load(file string) (Config, error) {
	v := viper.New()
	v.SetDefault("role", "initiator")
	v.SetDefault("endpoint_id", "host")
	v.SetDefault("code_identity", "")
	v.SetDefault("handshake_timeout", 5*time.Second)
	v.SetDefault("replay_cache_size", 4096)
	v.SetDefault("window", 0)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("palisade")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, oops.Wrapf(err, "read config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, oops.Wrapf(err, "unmarshal config")
	}
	return cfg, nil
}

// HandshakeRole maps the configured role string onto the protocol role.
func (c Config) HandshakeRole() (handshake.Role, error) {
	switch strings.ToLower(c.Role) {
	case "initiator", "host":
		return handshake.Initiator, nil
	case "responder", "enclave":
		return handshake.Responder, nil
	default:
		return 0, oops.Errorf("unknown role %q", c.Role)
	}
}
