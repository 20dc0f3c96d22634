package config

import (
	"flag"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-g string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t duration access token lifetime ("15m")
//	-r duration refresh token lifetime ("7d")
//	-l string   log level
//
// Only these flags are picked out of args so that -c/-config and flags owned
// by other components do not collide. A malformed value panics.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	access := timex.Duration{Duration: config.AccessTokenTTL}
	refresh := timex.Duration{Duration: config.RefreshTokenTTL}
	fs.Var(&access, "t", "access token lifetime, e.g. 15m")
	fs.Var(&refresh, "r", "refresh token lifetime, e.g. 7d")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = access.Duration
	config.RefreshTokenTTL = refresh.Duration
}
