// Package worker provides a NATS worker that answers pinyin decode requests.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/lexicon"
	"github.com/nats-io/nats.go"
)

// Reply codes.
const (
	CodeInput    = "input"
	CodeCoverage = "coverage"
	CodeInternal = "internal"
)

var (
	// ErrSubjectEmpty indicates that no subject was configured.
	ErrSubjectEmpty = errors.New("subject cannot be empty")
	// ErrNoConverter indicates that the worker was created without a converter.
	ErrNoConverter = errors.New("converter cannot be nil")
	// ErrBadRequest indicates a request that is not a valid decode request document.
	ErrBadRequest = errors.New("malformed decode request")
)

// Converter turns one line of pinyin into text.
type Converter interface {
	Convert(line string) (string, error)
}

// DecodeRequest asks for the conversion of one line of pinyin.
type DecodeRequest struct {
	Header events.EventHeader `json:"header"`
	Pinyin string             `json:"pinyin"`
}

// DecodeReply answers a DecodeRequest. Code is empty on success.
type DecodeReply struct {
	Header events.EventHeader `json:"header"`
	Text   string             `json:"text"`
	Error  string             `json:"error,omitempty"`
	Code   string             `json:"code,omitempty"`
}

// Classify maps a conversion error to a reply code.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, lexicon.ErrInput), errors.Is(err, ErrBadRequest):
		return CodeInput
	case errors.Is(err, decoder.ErrCoverageGap):
		return CodeCoverage
	default:
		return CodeInternal
	}
}

// NatsWorker listens for decode requests on a NATS subject and replies to each.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	converter      Converter
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	converter Converter,
	log *logger.Logger,
) (*NatsWorker, error) {
	if subject == "" {
		return nil, ErrSubjectEmpty
	}
	if converter == nil {
		return nil, ErrNoConverter
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		converter:      converter,
		log:            log,
	}, nil
}

// Run subscribes and serves requests until ctx is done, then drains the subscription.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("Listening for decode requests on subject: %s", w.subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	reply := w.process(msg.Data)
	if reply.Code != "" {
		w.log.Warn("Decode request %s failed (%s): %s", reply.Header.WorkflowID, reply.Code, reply.Error)
	}

	err := w.publishReply(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish reply for workflow %s: %v", reply.Header.WorkflowID, err)
	}
}

// process decodes one request document. It never fails: errors are reported in the reply.
func (w *NatsWorker) process(data []byte) *DecodeReply {
	var req DecodeRequest

	err := json.Unmarshal(data, &req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrBadRequest, err)
		return newReply(events.EventHeader{}, "", err)
	}

	text, err := w.converter.Convert(req.Pinyin)

	return newReply(req.Header, text, err)
}

func newReply(reqHeader events.EventHeader, text string, err error) *DecodeReply {
	header := reqHeader
	header.EventID = uuid.NewString()
	header.Timestamp = time.Now()

	reply := &DecodeReply{Header: header, Text: text}
	if err != nil {
		reply.Text = ""
		reply.Error = err.Error()
		reply.Code = Classify(err)
	}

	return reply
}

func (w *NatsWorker) publishReply(msg *nats.Msg, reply *DecodeReply) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply: %w", err)
	}

	return nil
}
