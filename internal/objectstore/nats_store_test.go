// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/objectstore"
)

// StartTestServer starts an in-memory NATS server for testing purposes.
func StartTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNatsObjectStore_UploadDownloadDelete(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "tts-audio-test")
	require.NoError(t, err)

	ctx := context.Background()
	key := "3b9f2d4e.wav"
	uploadData := []byte("RIFF-wav-bytes-for-test")

	err = store.Upload(ctx, key, uploadData)
	require.NoError(t, err)

	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, uploadData, downloadData)

	err = store.Delete(ctx, key)
	require.NoError(t, err)

	_, err = store.Download(ctx, key)
	require.Error(t, err, "deleted object should no longer download")
}

func TestNatsObjectStore_BindsToExistingBucket(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	first, err := objectstore.New(jetstreamContext, "tts-audio-shared")
	require.NoError(t, err)

	err = first.Upload(context.Background(), "seed.wav", []byte("seed"))
	require.NoError(t, err)

	second, err := objectstore.New(jetstreamContext, "tts-audio-shared")
	require.NoError(t, err)

	data, err := second.Download(context.Background(), "seed.wav")
	require.NoError(t, err)
	require.Equal(t, []byte("seed"), data)
}
