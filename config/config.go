// Package config holds the API location every request is built against.
//
// [Default] returns the compiled-in values. [Load] overlays an optional
// .env file and the process environment on top of them, then validates
// the result:
//
//	HTTPSPEC_API_SCHEME=http
//	HTTPSPEC_API_HOST=localhost:8080
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// Scheme is the default API scheme.
	Scheme = "https"
	// Host is the default API host.
	Host = "jsonplaceholder.typicode.com"

	// EnvPrefix prefixes every environment variable Load reads.
	EnvPrefix = "HTTPSPEC"
)

// API locates the remote service.
type API struct {
	Scheme string `mapstructure:"api_scheme" validate:"required,oneof=http https"`
	Host   string `mapstructure:"api_host" validate:"required,hostname|hostname_port"`
}

// Default returns the compiled-in API location.
func Default() API {
	return API{Scheme: Scheme, Host: Host}
}

// Load builds an API from defaults, the optional envFile and the
// environment, in increasing order of precedence. A missing envFile is
// not an error.
func Load(envFile string) (API, error) {
	v := viper.New()

	v.SetDefault("api_scheme", Scheme)
	v.SetDefault("api_host", Host)

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return API{}, fmt.Errorf("reading env file %q: %w", envFile, err)
		default:
			for k, val := range values {
				if key, ok := strings.CutPrefix(k, EnvPrefix+"_"); ok {
					v.SetDefault(strings.ToLower(key), val)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var api API
	if err := v.Unmarshal(&api); err != nil {
		return API{}, fmt.Errorf("unmarshal config: %w", err)
	}

	api.Scheme = strings.ToLower(strings.TrimSpace(api.Scheme))
	api.Host = strings.TrimSpace(api.Host)

	if err := api.Validate(); err != nil {
		return API{}, err
	}

	return api, nil
}
