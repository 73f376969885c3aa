package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every option of the sidecar, read once at startup.
// For check options an empty / zero value means "not configured"; each
// check decides on its own whether it has enough configuration to be
// enabled.
type Config struct {
	BindHost           string        `envconfig:"BIND_HOST" required:"true"`
	RevalidateInterval time.Duration `envconfig:"REVALIDATE_INTERVAL" default:"5s"`
	LogDir             string        `envconfig:"LOG_DIR"`

	ForceSuccessFilePath string `envconfig:"FORCE_SUCCESS_FILE_PATH"`
	MtcFilePath          string `envconfig:"MTC_FILE_PATH"`

	SocketCheckAddr                string `envconfig:"SOCKET_ADDR"`
	SocketCheckReadInitialResponse bool   `envconfig:"SOCKET_READ_INITIAL_RESPONSE"`

	HTTPCheckURL             string `envconfig:"HTTP_URL"`
	HTTPCheckMethod          string `envconfig:"HTTP_METHOD"`
	HTTPCheckStatusCodes     []int  `envconfig:"HTTP_STATUS_CODES"`
	HTTPProxyProtocolVersion int    `envconfig:"HTTP_PROXY_PROTOCOL_VERSION"`
}

// FromEnv reads the configuration from EASYCHECK_* environment
// variables. A .env file in the working directory is loaded first when
// present, so local setups don't need to export anything.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("easycheck", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
