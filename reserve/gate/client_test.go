package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIsReservable(
	t *testing.T,
) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/assets/egi:sword-1/reservable":
				fmt.Fprintf(w, `{"reservable": true}`)
			case "/assets/egi:shield-1/reservable":
				fmt.Fprintf(w, `{"reservable": false}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	defer server.Close()

	client := NewClient(server.URL, 0)

	reservable, err := client.IsReservable(context.Background(), "egi:sword-1")
	require.NoError(t, err)
	assert.True(t, reservable)

	reservable, err = client.IsReservable(context.Background(), "egi:shield-1")
	require.NoError(t, err)
	assert.False(t, reservable)

	_, err = client.IsReservable(context.Background(), "egi:unknown")
	assert.Error(t, err)
}

func TestStaticGate(
	t *testing.T,
) {
	g := NewStatic()

	reservable, err := g.IsReservable(context.Background(), "egi:sword-1")
	require.NoError(t, err)
	assert.True(t, reservable)

	g.SetReservable("egi:sword-1", false)
	reservable, err = g.IsReservable(context.Background(), "egi:sword-1")
	require.NoError(t, err)
	assert.False(t, reservable)

	g.SetReservable("egi:sword-1", true)
	reservable, err = g.IsReservable(context.Background(), "egi:sword-1")
	require.NoError(t, err)
	assert.True(t, reservable)
}
