// Package tts synthesizes speech with Google Cloud Text-to-Speech.
package tts

import (
	"context"
	"errors"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// DefaultLanguage is used when no language code is configured.
const DefaultLanguage = "en-US"

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// Google implements segments.Synthesizer. Credentials come from the
// standard application default lookup unless options say otherwise.
type Google struct {
	language   string
	voice      string
	synthesize synthesizeFunc
	close      func() error
}

// NewGoogle dials the service. An empty voice selects a neutral voice for
// the language.
func NewGoogle(ctx context.Context, language, voice string, opts ...option.ClientOption) (*Google, error) {
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	g := newGoogle(language, voice, func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return client.SynthesizeSpeech(ctx, req)
	})
	g.close = client.Close
	return g, nil
}

func newGoogle(language, voice string, fn synthesizeFunc) *Google {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	return &Google{language: language, voice: strings.TrimSpace(voice), synthesize: fn}
}

// WithVoice returns a synthesizer sharing the same connection but speaking
// with the named voice. Closing it is a no-op.
func (g *Google) WithVoice(name string) *Google {
	return &Google{language: g.language, voice: strings.TrimSpace(name), synthesize: g.synthesize}
}

// Voice reports the configured voice name, empty for automatic selection.
func (g *Google) Voice() string {
	return g.voice
}

// Synthesize returns MP3 audio. When ssml is set the text is sent as an
// SSML document instead of plain text.
func (g *Google) Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error) {
	resp, err := g.synthesize(ctx, g.request(text, ssml))
	if err != nil {
		return nil, err
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, errors.New("speech service returned no audio")
	}
	return resp.GetAudioContent(), nil
}

func (g *Google) request(text string, ssml bool) *texttospeechpb.SynthesizeSpeechRequest {
	input := &texttospeechpb.SynthesisInput{}
	if ssml {
		input.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: text}
	} else {
		input.InputSource = &texttospeechpb.SynthesisInput_Text{Text: text}
	}

	voice := &texttospeechpb.VoiceSelectionParams{LanguageCode: g.language}
	if g.voice != "" {
		voice.Name = g.voice
	} else {
		voice.SsmlGender = texttospeechpb.SsmlVoiceGender_NEUTRAL
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
}

// Close releases the underlying connection.
func (g *Google) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}
