// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/ieee0824/pinyin-go/internal/objectstore"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// startTestServer starts an in-memory NATS server with JetStream enabled.
func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		natsServer.Shutdown()
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	t.Cleanup(func() {
		natsConnection.Close()
		natsServer.Shutdown()
	})

	return natsServer, natsConnection
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	_, natsConnection := startTestServer(t)

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "models")
	require.NoError(t, err)
	require.Equal(t, "models", store.Bucket())

	ctx := context.Background()
	uploadData := []byte(`{"ni": [["你", -1.0]]}`)

	require.NoError(t, store.Upload(ctx, "unigrams.json", uploadData))

	downloadData, err := store.Download(ctx, "unigrams.json")
	require.NoError(t, err)
	require.Equal(t, uploadData, downloadData)

	// A second upload replaces the object
	replaced := []byte(`{"hao": [["好", -0.5]]}`)
	require.NoError(t, store.Upload(ctx, "unigrams.json", replaced))

	downloadData, err = store.Download(ctx, "unigrams.json")
	require.NoError(t, err)
	require.Equal(t, replaced, downloadData)
}

func TestNatsObjectStore_BindExisting(t *testing.T) {
	t.Parallel()

	_, natsConnection := startTestServer(t)

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	first, err := objectstore.New(jetstreamContext, "models")
	require.NoError(t, err)
	require.NoError(t, first.Upload(context.Background(), "bigrams.json", []byte(`{}`)))

	second, err := objectstore.New(jetstreamContext, "models")
	require.NoError(t, err)

	data, err := second.Download(context.Background(), "bigrams.json")
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), data)
}

func TestNatsObjectStore_DownloadMissing(t *testing.T) {
	t.Parallel()

	_, natsConnection := startTestServer(t)

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "models")
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "missing.json")
	require.Error(t, err)
}
