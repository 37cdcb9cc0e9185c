package speechkit

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	errRecognized       = errors.New("utterance recognized")
	ErrMicrophoneClosed = errors.New("microphone stream closed")
)

// Recognize streams audio until the service returns one final utterance or
// ctx ends. A ctx deadline means the user said nothing: ErrNoSpeech.
func (y *YandexSpeechKit) Recognize(ctx context.Context, audio <-chan []byte) (string, error) {
	handle, err := y.Start(ctx)
	if err != nil {
		return "", err
	}

	return recognize(ctx, audio, handle)
}

func recognize(ctx context.Context, audio <-chan []byte, handle *Handle) (string, error) {
	defer handle.Close()

	var text string

	g, gctx := errgroup.WithContext(ctx)

	// the first recorded error cancels gctx, which unblocks Recv
	stop := context.AfterFunc(gctx, func() {
		_ = handle.Close()
	})
	defer stop()

	g.Go(func() error {
		return streamAudio(gctx, audio, handle)
	})

	g.Go(func() error {
		result, err := receiveFinal(handle)
		if err != nil {
			return err
		}

		text = result
		return errRecognized
	})

	err := g.Wait()
	if errors.Is(err, errRecognized) {
		return text, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", classify(ctxErr)
	}

	return "", classify(err)
}

func streamAudio(ctx context.Context, audio <-chan []byte, handle *Handle) error {
	if err := handle.SendConfig(); err != nil {
		return fmt.Errorf("failed to send audio config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-audio:
			if !ok {
				return ErrMicrophoneClosed
			}

			if err := handle.Send(chunk); err != nil {
				return fmt.Errorf("failed to send audio: %w", err)
			}
		}
	}
}

func receiveFinal(handle *Handle) (string, error) {
	for {
		texts, final, err := handle.Recv()
		if err != nil {
			return "", err
		}

		if !final {
			continue
		}

		if len(texts) == 0 {
			return "", ErrUnclear
		}

		return texts[0], nil
	}
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoSpeech), errors.Is(err, ErrUnclear), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrNoSpeech
	}

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return ErrNoSpeech
	case codes.Unavailable, codes.Unauthenticated, codes.PermissionDenied, codes.ResourceExhausted:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return err
}
