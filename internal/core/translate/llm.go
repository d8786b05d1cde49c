package translate

import "context"

const providerLLM = "llm"

// TextTranslator is the part of the LLM client used for translation.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)
}

// LLMProvider translates through a chat-completion model. The model detects the
// source language itself, so source is ignored.
type LLMProvider struct {
	client TextTranslator
}

// NewLLMProvider creates the provider.
func NewLLMProvider(client TextTranslator) *LLMProvider {
	return &LLMProvider{client: client}
}

// Name implements Provider.
func (p *LLMProvider) Name() string {
	return providerLLM
}

// Translate implements Provider.
func (p *LLMProvider) Translate(ctx context.Context, text, _, target string) (string, error) {
	return p.client.TranslateText(ctx, text, target)
}
