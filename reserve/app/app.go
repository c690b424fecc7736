package app

import (
	"context"
	"fmt"

	"goji.io"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/env"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/lib/logging"
	"github.com/egimarket/reserve/lib/recoverer"
	"github.com/egimarket/reserve/lib/requestlogger"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/async"
	"github.com/egimarket/reserve/reserve/async/task"
	"github.com/egimarket/reserve/reserve/gate"

	// force initialization of schemas
	_ "github.com/egimarket/reserve/reserve/model/schemas"
)

// Config is the startup configuration of the reserve service, generally
// extracted from flags.
type Config struct {
	EnvName       string
	DSN           string
	Host          string
	Port          string
	SigningSecret string
	GateURL       string
	RedisAddr     string
	ExpiryMs      int64
	OnePerWallet  bool
}

// BackgroundContextFromConfig initializes a background context fully loaded
// with everything that could be extracted from the config.
func BackgroundContextFromConfig(
	config Config,
) (context.Context, error) {
	ctx := context.Background()

	reserveEnv := env.Env{
		Environment: env.QA,
		Config:      map[env.ConfigKey]string{},
	}
	if config.EnvName == "production" || config.EnvName == "prod" {
		reserveEnv.Environment = env.Production
	}
	reserveEnv.Config[reserve.EnvCfgHost] = config.Host

	port := reserve.DefaultPort[reserveEnv.Environment]
	if config.Port != "" {
		port = config.Port
	}
	reserveEnv.Config[reserve.EnvCfgPort] = port

	reserveEnv.Config[reserve.EnvCfgGateURL] = config.GateURL
	reserveEnv.Config[reserve.EnvCfgRedisAddr] = config.RedisAddr
	if config.OnePerWallet {
		reserveEnv.Config[reserve.EnvCfgOnePerWallet] = "true"
	}

	ctx = env.With(ctx, &reserveEnv)

	if config.ExpiryMs > 0 {
		reserve.ReservationExpiryMs = config.ExpiryMs
	}

	reserveDB, err := db.NewDBForDSN(ctx,
		config.DSN,
		fmt.Sprintf("sqlite3://~/.reserve/reserve-%s.db",
			env.Get(ctx).Environment))
	if err != nil {
		return nil, errors.Trace(err)
	}
	err = db.CreateDBTables(ctx, "reserve", reserveDB)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = db.WithDB(ctx, "reserve", reserveDB)

	signer, err := signature.NewSigner(config.SigningSecret)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = signature.With(ctx, signer)

	var g gate.Gate
	if config.GateURL == "" {
		g = gate.NewStatic()
	} else {
		client := gate.NewClient(config.GateURL, 0)
		if config.RedisAddr != "" {
			g = gate.NewCache(client, config.RedisAddr, 0)
		} else {
			g = client
		}
	}
	ctx = gate.With(ctx, g)

	a, err := async.NewAsync(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = async.With(ctx, a)

	return ctx, nil
}

// Build initializes the app and its web stack.
func Build(
	ctx context.Context,
) (*goji.Mux, error) {
	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(livemode.Middleware)
	mux.Use(db.Middleware(db.GetDBMap(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))
	mux.Use(signature.Middleware(signature.Get(ctx)))
	mux.Use(gate.Middleware(gate.Get(ctx)))
	mux.Use(async.Middleware(async.Get(ctx)))

	logging.Logf(ctx, "Initializing: environment=%s port=%s "+
		"signing_public_key=%s",
		env.Get(ctx).Environment, reserve.GetPort(ctx),
		signature.Get(ctx).PublicKey())

	(&Controller{}).Bind(mux)

	// Start an async worker.
	go func() {
		async.Get(ctx).Run()
	}()

	// Expire reservations whose window elapsed while the service was down.
	go func() {
		if err := task.SweepStale(ctx); err != nil {
			reserve.Logf(ctx, "Stale sweep error: error=%q", err.Error())
		}
	}()

	return mux, nil
}
