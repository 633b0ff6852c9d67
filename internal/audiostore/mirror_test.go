package audiostore_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/book-expert/events"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/audiostore"
	"github.com/naija-speech/tts-api/internal/objectstore"
)

func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)

	return natsServer, natsConnection
}

func TestMirror_PublishUploadsAndAnnounces(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	remote, err := objectstore.New(jetstreamContext, "tts-audio-mirror-test")
	require.NoError(t, err)

	const subject = "tts.audio.created"

	sub, err := natsConnection.SubscribeSync(subject)
	require.NoError(t, err)

	mirror := audiostore.NewMirror(remote, natsConnection, subject, newTestLogger(t))

	wavData := []byte("RIFF-mirror-test")

	err = mirror.Publish(context.Background(), "chunk-1.wav", wavData)
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var event events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "chunk-1.wav", event.AudioKey)
	assert.NotEmpty(t, event.Header.EventID)

	fetched, err := mirror.Fetch(context.Background(), "chunk-1.wav")
	require.NoError(t, err)
	assert.Equal(t, wavData, fetched)
}

func TestMirror_EmptySubjectSkipsPublish(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	remote, err := objectstore.New(jetstreamContext, "tts-audio-silent-test")
	require.NoError(t, err)

	mirror := audiostore.NewMirror(remote, natsConnection, "", newTestLogger(t))

	err = mirror.Publish(context.Background(), "quiet.wav", []byte("bytes"))
	require.NoError(t, err)

	fetched, err := mirror.Fetch(context.Background(), "quiet.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), fetched)
}

func TestMirror_FetchUnknownKey(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	remote, err := objectstore.New(jetstreamContext, "tts-audio-empty-test")
	require.NoError(t, err)

	mirror := audiostore.NewMirror(remote, natsConnection, "", newTestLogger(t))

	_, err = mirror.Fetch(context.Background(), "missing.wav")
	require.ErrorIs(t, err, audiostore.ErrNotFound)
}
