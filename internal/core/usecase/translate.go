package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

// PlaceholderAudio is a short silent WAV data URL substituted when speech
// synthesis is unavailable, so clients always receive a playable reference.
const PlaceholderAudio = "data:audio/wav;base64,UklGRiQAAABXQVZFZm10IBAAAAABAAEAQB8AAEAfAAABAAgAZGF0YQAAAAA="

// TranslateUseCase and SynthesizeUseCase are stateless: they never touch
// document state and never fail outward on capability errors. The caller
// always gets a deterministic placeholder.
type TranslateUseCase struct {
	provider ports.TranslationProvider
}

func NewTranslateUseCase(provider ports.TranslationProvider) *TranslateUseCase {
	return &TranslateUseCase{provider: provider}
}

func (uc *TranslateUseCase) Translate(ctx context.Context, text string, target domain.LanguageCode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "translate", fmt.Errorf("text is empty"))
	}
	if !target.Supported() {
		return "", domain.WrapError(domain.ErrInvalidInput, "translate",
			fmt.Errorf("unsupported language code %q", target))
	}

	translated, err := uc.provider.Translate(ctx, text, target)
	if err != nil {
		slog.Warn("translation_degraded", "target", target, "error", err)
		return placeholderTranslation(text, target), nil
	}
	return translated, nil
}

// placeholderTranslation tags the untranslated text with the target code so
// the degradation is visible to the reader, unlike a silent passthrough.
func placeholderTranslation(text string, target domain.LanguageCode) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(target)), text)
}

type SynthesizeUseCase struct {
	provider ports.SpeechProvider
}

func NewSynthesizeUseCase(provider ports.SpeechProvider) *SynthesizeUseCase {
	return &SynthesizeUseCase{provider: provider}
}

func (uc *SynthesizeUseCase) Synthesize(ctx context.Context, text string, lang domain.LanguageCode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "synthesize speech", fmt.Errorf("text is empty"))
	}
	if lang == "" {
		lang = domain.LangEnglish
	}
	if !lang.Supported() {
		return "", domain.WrapError(domain.ErrInvalidInput, "synthesize speech",
			fmt.Errorf("unsupported language code %q", lang))
	}

	audioRef, err := uc.provider.Synthesize(ctx, text, lang)
	if err != nil {
		slog.Warn("tts_degraded", "language", lang, "error", err)
		return PlaceholderAudio, nil
	}
	return audioRef, nil
}
