package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/app"
	"github.com/egimarket/reserve/reserve/async/task"
	"github.com/zenazn/goji/graceful"
	"goji.io"
)

var actFlag string

var envFlag string
var dsnFlag string
var hstFlag string
var prtFlag string

var sctFlag string
var gteFlag string
var rdsFlag string
var expFlag int64
var opwFlag bool

func init() {
	flag.StringVar(&actFlag, "action",
		"run", "The action to perform (run, expire_stale)")

	flag.StringVar(&envFlag, "env",
		"qa", "The environment to run in (qa, production), default: qa")
	flag.StringVar(&dsnFlag, "db_dsn",
		"", "The DSN of the database to use, default: sqlite3://~/.reserve/reserve-$env.db")
	flag.StringVar(&hstFlag, "host",
		"", "The externally accessible host name of this service")
	flag.StringVar(&prtFlag, "port",
		"", "The port to listen on, default: 2406 (production), 2407 (qa)")

	flag.StringVar(&sctFlag, "signing_secret",
		"", "The secret used to derive the certificate signing key (required)")
	flag.StringVar(&gteFlag, "gate_url",
		"", "The base URL of the availability gate, default: none (every asset reservable)")
	flag.StringVar(&rdsFlag, "redis_addr",
		"", "The address of the redis used to cache gate answers, default: none")
	flag.Int64Var(&expFlag, "expiry_ms",
		0, "The reservation expiry window in milliseconds, default: 72h")
	flag.BoolVar(&opwFlag, "one_per_wallet",
		false, "Restrict wallets to one active reservation per asset")

	if fl := log.Flags(); fl&log.Ltime != 0 {
		log.SetFlags(fl | log.Lmicroseconds)
	}
	graceful.DoubleKickWindow(2 * time.Second)
}

// Serve starts the given mux, gracefully draining connections on signals.
func Serve(mux *goji.Mux, addr string) {
	http.Handle("/", mux)

	log.Println("Starting reserve on", addr)

	graceful.HandleSignals()
	graceful.PreHook(func() { log.Printf("Received signal, gracefully stopping") })
	graceful.PostHook(func() { log.Printf("Stopped") })

	err := graceful.ListenAndServe(addr, http.DefaultServeMux)
	if err != nil {
		log.Fatal(err)
	}

	graceful.Wait()
}

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	ctx, err := app.BackgroundContextFromConfig(app.Config{
		EnvName:       envFlag,
		DSN:           dsnFlag,
		Host:          hstFlag,
		Port:          prtFlag,
		SigningSecret: sctFlag,
		GateURL:       gteFlag,
		RedisAddr:     rdsFlag,
		ExpiryMs:      expFlag,
		OnePerWallet:  opwFlag,
	})
	if err != nil {
		log.Fatal(errors.Details(err))
	}

	switch actFlag {
	case "run":
		mux, err := app.Build(ctx)
		if err != nil {
			log.Fatal(errors.Details(err))
		}
		Serve(mux, ":"+reserve.GetPort(ctx))
	case "expire_stale":
		err := task.SweepStale(ctx)
		if err != nil {
			log.Fatal(errors.Details(err))
		}
	default:
		log.Fatalf("Invalid action: %s (valid actions: run, expire_stale)",
			actFlag)
	}
}
