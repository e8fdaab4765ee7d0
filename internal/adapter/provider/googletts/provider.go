// Package googletts synthesizes speech through the Google Cloud
// Text-to-Speech REST API.
package googletts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/retry"
)

const audioEncoding = "MP3"

// Provider implements audio.Synthesizer.
type Provider struct {
	svc     *texttospeech.Service
	policy  retry.Policy
	timeout time.Duration
	log     *slog.Logger
}

// Options configures the API client. APIKey and CredentialsFile are
// mutually exclusive; with neither set, application default credentials
// are used.
type Options struct {
	APIKey          string
	CredentialsFile string
	Endpoint        string
	Timeout         time.Duration
	Retry           retry.Policy
}

// NewProvider creates a Provider.
func NewProvider(ctx context.Context, logger *slog.Logger, opts Options) (*Provider, error) {
	var clientOpts []option.ClientOption
	switch {
	case opts.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	case opts.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := texttospeech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("googletts: create service: %w", err)
	}

	policy := opts.Retry
	if policy.Attempts == 0 {
		policy = retry.DefaultPolicy()
	}

	return &Provider{
		svc:     svc,
		policy:  policy,
		timeout: opts.Timeout,
		log:     logger.With("adapter", "googletts"),
	}, nil
}

// Synthesize returns MP3 bytes for text spoken with voice.
func (p *Provider) Synthesize(ctx context.Context, text string, voice audio.Voice) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: audioEncoding,
			SpeakingRate:  voice.Rate,
		},
	}

	p.log.DebugContext(ctx, "synthesize request", slog.String("voice", voice.Name), slog.Int("chars", len(text)))

	policy := p.policy
	policy.OnRetry = func(attempt int, err error) {
		p.log.WarnContext(ctx, "synthesize retry", slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}

	resp, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*texttospeech.SynthesizeSpeechResponse, error) {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.svc.Text.Synthesize(req).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("googletts: synthesize: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("googletts: decode audio: %w", err)
	}
	return data, nil
}
