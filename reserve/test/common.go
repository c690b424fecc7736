package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/env"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/lib/recoverer"
	"github.com/egimarket/reserve/lib/requestlogger"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/egimarket/reserve/lib/svc"
	"github.com/egimarket/reserve/lib/token"
	"github.com/egimarket/reserve/reserve/app"
	"github.com/egimarket/reserve/reserve/async"
	"github.com/egimarket/reserve/reserve/gate"
	"github.com/stretchr/testify/require"
	goji "goji.io"
)

// Reserve represents a test reserve service backed by an in-memory DB, a
// static gate and a synchronous async queue (tasks are run with
// async.TestRunOne).
type Reserve struct {
	Server *httptest.Server
	Ctx    context.Context
	Gate   *gate.Static
	Signer *signature.Signer
}

// CreateReserve creates a new test service with an in-memory DB.
func CreateReserve(
	t *testing.T,
) *Reserve {
	ctx := context.Background()

	reserveEnv := env.Env{
		Environment: env.QA,
		Config:      map[env.ConfigKey]string{},
	}
	ctx = env.With(ctx, &reserveEnv)

	reserveDB, err := db.NewSqlite3DBInMemory(ctx)
	require.NoError(t, err)
	err = db.CreateDBTables(ctx, "reserve", reserveDB)
	require.NoError(t, err)
	ctx = db.WithDB(ctx, "reserve", reserveDB)

	signer, err := signature.NewSigner("test_secret_" + token.RandStr())
	require.NoError(t, err)
	ctx = signature.With(ctx, signer)

	g := gate.NewStatic()
	ctx = gate.With(ctx, g)

	a, err := async.NewAsync(ctx)
	require.NoError(t, err)
	ctx = async.With(ctx, a)

	ctx = livemode.With(ctx, false)

	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(livemode.Middleware)
	mux.Use(db.Middleware(db.GetDBMap(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))
	mux.Use(signature.Middleware(signer))
	mux.Use(gate.Middleware(g))
	mux.Use(async.Middleware(a))

	(&app.Controller{}).Bind(mux)

	return &Reserve{
		Server: httptest.NewServer(mux),
		Ctx:    ctx,
		Gate:   g,
		Signer: signer,
	}
}

// Close shuts the test service down.
func (r *Reserve) Close() {
	r.Server.Close()
}

// RunOne synchronously runs one pending async task.
func (r *Reserve) RunOne() {
	async.TestRunOne(r.Ctx)
}

// Post performs a POST request to the test service.
func (r *Reserve) Post(
	t *testing.T,
	path string,
	params url.Values,
) (int, svc.Resp) {
	req, err := http.NewRequest("POST",
		r.Server.URL+path,
		strings.NewReader(params.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw svc.Resp
	err = json.NewDecoder(resp.Body).Decode(&raw)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

// Get performs a GET request to the test service.
func (r *Reserve) Get(
	t *testing.T,
	path string,
) (int, svc.Resp) {
	resp, err := http.Get(r.Server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw svc.Resp
	err = json.NewDecoder(resp.Body).Decode(&raw)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

// Delete performs a DELETE request to the test service.
func (r *Reserve) Delete(
	t *testing.T,
	path string,
) (int, svc.Resp) {
	req, err := http.NewRequest("DELETE", r.Server.URL+path, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw svc.Resp
	err = json.NewDecoder(resp.Body).Decode(&raw)
	require.NoError(t, err)

	return resp.StatusCode, raw
}
