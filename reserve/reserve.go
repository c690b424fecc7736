package reserve

import (
	"context"
	"regexp"

	"github.com/egimarket/reserve/lib/env"
	"github.com/egimarket/reserve/lib/logging"
)

const (
	// Version is the current version.
	Version string = "0.0.1"

	// TimeResolutionNs is the resolution of our time variables in nanoseconds
	// (we use milliseconds throughout the API).
	TimeResolutionNs int64 = 1000 * 1000
)

var (
	// TokenRegexp is used to validate object tokens.
	TokenRegexp = regexp.MustCompile(
		"^[a-z_]+_[a-f0-9]{32}$")

	// AssetRegexp is used to validate external asset ids.
	AssetRegexp = regexp.MustCompile(
		"^[a-zA-Z0-9][a-zA-Z0-9_.:-]{0,255}$")

	// WalletRegexp is used to validate claimant wallet identifiers.
	WalletRegexp = regexp.MustCompile(
		"^[a-zA-Z0-9][a-zA-Z0-9:_-]{2,127}$")
)

var (
	// ReservationExpiryMs is the time it takes for a reservation to expire
	// if it was not superseded or cancelled in the meantime. Overridable at
	// startup.
	ReservationExpiryMs int64 = 1000 * 60 * 60 * 72
)

// DefaultPort is the default port by environment.
var DefaultPort = map[env.Environment]string{
	env.Production: "2406",
	env.QA:         "2407",
}

// Logf shells out to logging.Logf adding reserve specific information.
func Logf(
	ctx context.Context,
	format string,
	args ...interface{},
) {
	logging.Logf(ctx, "[reserve] "+format, args...)
}
