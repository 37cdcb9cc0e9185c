package speechkit

import (
	"context"
	"errors"
	"friday/app/config"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeStream struct {
	grpc.ClientStream

	ctx       context.Context
	responses chan *stt.StreamingResponse
	recvErr   error
	sent      atomic.Int32
}

func (f *fakeStream) Send(*stt.StreamingRequest) error {
	f.sent.Add(1)
	return nil
}

func (f *fakeStream) Recv() (*stt.StreamingResponse, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}

	select {
	case res := <-f.responses:
		return res, nil
	case <-f.ctx.Done():
		return nil, status.Error(codes.Canceled, "context canceled")
	}
}

func newTestHandle(ctx context.Context) (*Handle, *fakeStream) {
	streamCtx, cancel := context.WithCancel(ctx)

	stream := &fakeStream{
		ctx:       streamCtx,
		responses: make(chan *stt.StreamingResponse, 4),
	}

	return &Handle{
		client:   stream,
		cancel:   cancel,
		language: "en-US",
		model:    "general",
	}, stream
}

func finalResponse(texts ...string) *stt.StreamingResponse {
	alternatives := make([]*stt.Alternative, 0, len(texts))
	for _, text := range texts {
		alternatives = append(alternatives, &stt.Alternative{Text: text})
	}

	var res stt.StreamingResponse
	res.SetFinal(&stt.AlternativeUpdate{Alternatives: alternatives})

	return &res
}

func partialResponse(text string) *stt.StreamingResponse {
	var res stt.StreamingResponse
	res.SetPartial(&stt.AlternativeUpdate{Alternatives: []*stt.Alternative{{Text: text}}})

	return &res
}

func TestRecognize_FinalText(t *testing.T) {
	defer goleak.VerifyNone(t)

	handle, stream := newTestHandle(context.Background())
	stream.responses <- partialResponse("call")
	stream.responses <- finalResponse("  ", "call mom")

	audio := make(chan []byte, 1)
	audio <- []byte{0, 1}

	text, err := recognize(context.Background(), audio, handle)
	require.NoError(t, err)
	assert.Equal(t, "call mom", text)
	assert.GreaterOrEqual(t, stream.sent.Load(), int32(1))
}

func TestRecognize_EmptyFinalIsUnclear(t *testing.T) {
	defer goleak.VerifyNone(t)

	handle, stream := newTestHandle(context.Background())
	stream.responses <- finalResponse("")

	_, err := recognize(context.Background(), make(chan []byte), handle)
	assert.ErrorIs(t, err, ErrUnclear)
}

func TestRecognize_TimeoutIsNoSpeech(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	handle, _ := newTestHandle(ctx)

	_, err := recognize(ctx, make(chan []byte), handle)
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestRecognize_ServiceDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	handle, stream := newTestHandle(context.Background())
	stream.recvErr = status.Error(codes.Unavailable, "connection refused")

	_, err := recognize(context.Background(), make(chan []byte), handle)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRecognize_MicrophoneClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	handle, _ := newTestHandle(context.Background())
	audio := make(chan []byte)
	close(audio)

	_, err := recognize(context.Background(), audio, handle)
	assert.ErrorIs(t, err, ErrMicrophoneClosed)
}

func TestStart_WithoutKey(t *testing.T) {
	client := &YandexSpeechKit{cfg: &config.Config{}}

	_, err := client.Recognize(context.Background(), make(chan []byte))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClassify(t *testing.T) {
	other := errors.New("boom")

	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrNoSpeech)
	assert.ErrorIs(t, classify(status.Error(codes.DeadlineExceeded, "late")), ErrNoSpeech)
	assert.ErrorIs(t, classify(status.Error(codes.Unauthenticated, "bad key")), ErrUnavailable)
	assert.ErrorIs(t, classify(ErrUnclear), ErrUnclear)
	assert.Equal(t, other, classify(other))
}
