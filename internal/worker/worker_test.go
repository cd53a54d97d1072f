// Package worker_test tests the NATS decode worker.
package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	pinyin "github.com/ieee0824/pinyin-go"
	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/internal/worker"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubject = "pinyin.decode.test"

func createTestNatsClient(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	if err != nil {
		server.Shutdown()
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	t.Cleanup(func() {
		natsConnection.Close()
		server.Shutdown()
	})

	return natsConnection
}

func newConverter(t *testing.T) *pinyin.Converter {
	t.Helper()

	m := language.NewModel(
		language.UnigramTable{
			"ni":  {{Text: "你", LogProb: -1.0}, {Text: "呢", LogProb: -2.0}},
			"hao": {{Text: "好", LogProb: -0.5}, {Text: "号", LogProb: -3.0}},
		},
		language.BigramTable{{"你", "好"}: -0.1},
	)

	c, err := pinyin.NewConverterFromModel(m)
	require.NoError(t, err)

	return c
}

func startWorker(t *testing.T) *nats.Conn {
	t.Helper()

	natsConnection := createTestNatsClient(t)

	testLogger, err := logger.New(t.TempDir(), "worker-test.log")
	require.NoError(t, err)

	workerInstance, err := worker.NewNatsWorker(natsConnection, testSubject, newConverter(t), testLogger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- workerInstance.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errChan, "worker.Run should not error on graceful shutdown")
		_ = testLogger.Close()
	})

	return natsConnection
}

func request(t *testing.T, natsConnection *nats.Conn, data []byte) worker.DecodeReply {
	t.Helper()

	var (
		replyMsg *nats.Msg
		err      error
	)
	// The subscription is created asynchronously by Run
	require.Eventually(t, func() bool {
		replyMsg, err = natsConnection.Request(testSubject, data, time.Second)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	var reply worker.DecodeReply
	require.NoError(t, json.Unmarshal(replyMsg.Data, &reply))

	return reply
}

func newRequest(t *testing.T, line string) (*worker.DecodeRequest, []byte) {
	t.Helper()

	req := &worker.DecodeRequest{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "user-1",
			TenantID:   "tenant-1",
		},
		Pinyin: line,
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	return req, data
}

func TestMessageHandler_Success(t *testing.T) {
	t.Parallel()

	natsConnection := startWorker(t)
	req, data := newRequest(t, "ni hao")

	reply := request(t, natsConnection, data)

	assert.Equal(t, "你好", reply.Text)
	assert.Empty(t, reply.Code)
	assert.Empty(t, reply.Error)
	assert.Equal(t, req.Header.WorkflowID, reply.Header.WorkflowID)
	assert.Equal(t, req.Header.TenantID, reply.Header.TenantID)
	assert.NotEqual(t, req.Header.EventID, reply.Header.EventID)
}

func TestMessageHandler_Errors(t *testing.T) {
	t.Parallel()

	natsConnection := startWorker(t)

	_, badInput := newRequest(t, "ni3 hao")
	_, gap := newRequest(t, "ni zhuang")

	tests := []struct {
		name string
		data []byte
		code string
	}{
		{"invalid syllable", badInput, worker.CodeInput},
		{"coverage gap", gap, worker.CodeCoverage},
		{"not json", []byte("ni hao"), worker.CodeInput},
	}

	for _, tt := range tests {
		reply := request(t, natsConnection, tt.data)
		assert.Equal(t, tt.code, reply.Code, tt.name)
		assert.NotEmpty(t, reply.Error, tt.name)
		assert.Empty(t, reply.Text, tt.name)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Empty(t, worker.Classify(nil))
	assert.Equal(t, worker.CodeInput, worker.Classify(fmt.Errorf("wrap: %w", lexicon.ErrInput)))
	assert.Equal(t, worker.CodeInput, worker.Classify(worker.ErrBadRequest))
	assert.Equal(t, worker.CodeCoverage, worker.Classify(fmt.Errorf("wrap: %w", decoder.ErrCoverageGap)))
	assert.Equal(t, worker.CodeInternal, worker.Classify(errors.New("boom")))
	assert.Equal(t, worker.CodeInternal, worker.Classify(decoder.ErrConfig))
}

func TestNewNatsWorker_Validation(t *testing.T) {
	t.Parallel()

	_, err := worker.NewNatsWorker(nil, "", newConverter(t), nil)
	require.ErrorIs(t, err, worker.ErrSubjectEmpty)

	_, err = worker.NewNatsWorker(nil, testSubject, nil, nil)
	require.ErrorIs(t, err, worker.ErrNoConverter)
}
