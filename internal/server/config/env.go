package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// Environment variable names.
const (
	EnvServerHost    = "SERVER_HOST"
	EnvServerPort    = "SERVER_PORT"
	EnvGRPCAddr      = "GRPC_ADDRESS"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvJWTSecret     = "JWT_SECRET"
	EnvAccessTTL     = "JWT_ACCESS_TOKEN_EXPIRES_IN"
	EnvRefreshTTL    = "JWT_REFRESH_TOKEN_EXPIRES_IN"
	EnvRefreshRecord = "REFRESH_RECORD_EXPIRES_IN"
	EnvSweepInterval = "SWEEP_INTERVAL"
	EnvBcryptCost    = "BCRYPT_COST"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(name string) string {
		v, _ := lookup(name)
		return v
	}

	host, port := get(EnvServerHost), get(EnvServerPort)
	if host != "" || port != "" {
		h, p, err := net.SplitHostPort(config.EndpointAddrHTTP)
		if err != nil {
			h, p = "", "8000"
		}
		if host != "" {
			h = host
		}
		if port != "" {
			p = port
		}
		config.EndpointAddrHTTP = net.JoinHostPort(h, p)
	}

	setString(&config.EndpointAddrGRPC, get(EnvGRPCAddr))
	setString(&config.DatabaseDSN, get(EnvDatabaseURL))
	setString(&config.SecretKey, get(EnvJWTSecret))
	setString(&config.LogLevel, get(EnvLogLevel))
	setString(&config.LogFormat, get(EnvLogFormat))

	setDuration(&config.AccessTokenTTL, EnvAccessTTL, get(EnvAccessTTL))
	setDuration(&config.RefreshTokenTTL, EnvRefreshTTL, get(EnvRefreshTTL))
	setDuration(&config.RefreshRecordTTL, EnvRefreshRecord, get(EnvRefreshRecord))
	setDuration(&config.SweepInterval, EnvSweepInterval, get(EnvSweepInterval))

	if v := get(EnvBcryptCost); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("config: %s: %w", EnvBcryptCost, err))
		}
		config.BcryptCost = cost
	}
}

func setDuration(dst *time.Duration, name, v string) {
	if v == "" {
		return
	}
	d, err := timex.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("config: %s: %w", name, err))
	}
	*dst = d
}
