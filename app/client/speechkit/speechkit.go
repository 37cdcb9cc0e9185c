package speechkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"friday/app/config"
	"os"

	"github.com/samber/do"
	ycsdk "github.com/yandex-cloud/go-sdk"
	"github.com/yandex-cloud/go-sdk/iamkey"
)

var (
	ErrNoSpeech    = errors.New("no speech detected")
	ErrUnclear     = errors.New("speech not recognized")
	ErrUnavailable = errors.New("speech service unavailable")
)

// YandexSpeechKit recognizes single utterances with SpeechKit streaming STT.
type YandexSpeechKit struct {
	cfg *config.Config
	sdk *ycsdk.SDK
}

// NewClient builds the SDK when a service account key is configured. Without
// one every recognition fails with ErrUnavailable.
func NewClient(di *do.Injector) (*YandexSpeechKit, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.SpeechKit.KeyFile == "" {
		return &YandexSpeechKit{cfg: cfg}, nil
	}

	keyBytes, err := os.ReadFile(cfg.SpeechKit.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not read service account key: %w", err)
	}

	var key iamkey.Key
	if err = json.Unmarshal(keyBytes, &key); err != nil {
		return nil, fmt.Errorf("could not parse service account key: %w", err)
	}

	creds, err := ycsdk.ServiceAccountKey(&key)
	if err != nil {
		return nil, fmt.Errorf("could not create service account key: %w", err)
	}

	sdk, err := ycsdk.Build(ctx, ycsdk.Config{
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Yandex SDK: %w", err)
	}

	return &YandexSpeechKit{
		cfg: cfg,
		sdk: sdk,
	}, nil
}

func (y *YandexSpeechKit) Start(ctx context.Context) (*Handle, error) {
	if y.sdk == nil {
		return nil, fmt.Errorf("%w: speech_kit.key_file is not set", ErrUnavailable)
	}

	ctx, cancel := context.WithCancel(ctx)

	client, err := y.sdk.AI().STTV3().Recognizer().RecognizeStreaming(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create client: %w", classify(err))
	}

	return &Handle{
		client:   client,
		cancel:   cancel,
		language: y.cfg.SpeechKit.Language,
		model:    y.cfg.SpeechKit.Model,
	}, nil
}
