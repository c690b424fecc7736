package reserve

import (
	"context"

	"github.com/egimarket/reserve/lib/env"
)

const (
	// EnvCfgHost is the env config key for the externally accessible host.
	EnvCfgHost env.ConfigKey = "host"
	// EnvCfgPort is the env config key for the port to listen on.
	EnvCfgPort env.ConfigKey = "port"
	// EnvCfgSigningSecret is the env config key for the certificate signing
	// secret.
	EnvCfgSigningSecret env.ConfigKey = "signing_secret"
	// EnvCfgGateURL is the env config key for the availability gate base
	// URL.
	EnvCfgGateURL env.ConfigKey = "gate_url"
	// EnvCfgRedisAddr is the env config key for the redis address used to
	// cache availability gate answers (optional).
	EnvCfgRedisAddr env.ConfigKey = "redis_addr"
	// EnvCfgOnePerWallet is the env config key for the duplicate claim
	// policy. When "true" a wallet cannot hold two active reservations on
	// the same asset.
	EnvCfgOnePerWallet env.ConfigKey = "one_per_wallet"
)

// GetHost returns the host of the currently running server.
func GetHost(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgHost]
}

// GetPort returns the port of the currently running server.
func GetPort(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgPort]
}

// GetOnePerWallet returns the duplicate claim policy: whether a wallet is
// restricted to one active reservation per asset.
func GetOnePerWallet(
	ctx context.Context,
) bool {
	return env.Get(ctx).Config[EnvCfgOnePerWallet] == "true"
}
