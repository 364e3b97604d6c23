package constants

import "time"

const (
	OpenAIEndpoint = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
	DefaultPort    = "3000"

	// MaxMessages is the number of messages one client address may send per window.
	MaxMessages   = 20
	ResetInterval = 24 * time.Hour

	// MaxTokens caps the completion length; enforced by the API, not locally.
	MaxTokens = 400

	RequestTimeout = 30 * time.Second

	ChatPath = "/chat"
)

// Replies sent to the client in place of a completion.
const (
	LimitReachedMessage = "Limit reached: 20 messages per day"
	AIFailedMessage     = "Error: AI server failed. Try again later."
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
