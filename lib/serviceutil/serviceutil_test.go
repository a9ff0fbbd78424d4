package serviceutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartHttpServerShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- StartHttpServer(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()

	time.Sleep(time.Millisecond * 50)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second * 5):
		t.Fatal("server did not shut down")
	}
}

func TestStartHttpServerBadAddr(t *testing.T) {
	err := StartHttpServer(context.Background(), "not-an-address", http.NotFoundHandler())
	require.Error(t, err)
}
