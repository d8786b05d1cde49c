package llm

import "time"

// Defaults
const (
	DefaultModel          = "z-ai/glm-4.5-air:free"
	DefaultEmbeddingModel = "text-embedding-3-small"

	// EmbeddingDimensions is the width of analysis_history.embedding.
	EmbeddingDimensions = 1536

	defaultTimeout   = 60 * time.Second
	rateLimiterBurst = 5
	maxSummaryTexts  = 20
	maxEmbedRunes    = 8000

	// Models accepting the dimensions request parameter.
	shortenableEmbeddingPrefix = "text-embedding-3"
)

// Operations reported in metrics.
const (
	operationSummarize = "summarize"
	operationTranslate = "translate"
	operationEmbed     = "embed"
)

// Error message templates
const (
	errRateLimiter    = "rate limiter error: %w"
	errChatCompletion = "chat completion error: %w"
	errEmbeddings     = "failed to create embeddings: %w"
)

// Prompts
const (
	summarySystemPrompt = "You are a sentiment analysis assistant. Analyze the provided content " +
		"(Title, Description, and Comments/Reviews). Provide a 4-5 line summary of what people are saying. " +
		"Conclude with whether the overall sentiment is Positive or Negative."
	summaryContentFmt  = "Title: %s\nDescription: %s\n\nComments/Reviews:\n"
	translatePromptFmt = "Translate the user's text to %s. Output ONLY the translation, nothing else. The output must be in %s language."
)

// HTTP headers
const (
	headerReferer = "HTTP-Referer"
	headerTitle   = "X-Title"
)

// Log key strings
const (
	logKeyModel       = "model"
	logKeyOperation   = "operation"
	logKeyTotalTokens = "total_tokens"
)
