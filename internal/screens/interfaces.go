package screens

import (
	"context"

	"github.com/ajramos/mailpilot/internal/models"
)

// InboxAPI is what the inbox screen needs from the backend
type InboxAPI interface {
	IngestEmails(ctx context.Context) error
	ListEmails(ctx context.Context) ([]models.Email, error)
}

// EmailAPI fetches a single email
type EmailAPI interface {
	GetEmail(ctx context.Context, id string) (*models.Email, error)
}

// DraftAPI is what the drafts screen needs from the backend
type DraftAPI interface {
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	DeleteDraft(ctx context.Context, id string) (string, error)
}

// PromptAPI is what the prompt brain screen needs from the backend
type PromptAPI interface {
	ListPrompts(ctx context.Context) ([]models.Prompt, error)
	UpdatePrompt(ctx context.Context, id string, update models.PromptUpdate) (*models.Prompt, error)
	SeedPrompts(ctx context.Context) error
}

// AgentAPI is what a chat session needs from the backend
type AgentAPI interface {
	Chat(ctx context.Context, req models.ChatRequest) (string, error)
	GenerateDraft(ctx context.Context, req models.DraftRequest) (*models.GeneratedDraft, error)
}

// Backend is the full gateway surface; *api.Client implements it
type Backend interface {
	InboxAPI
	EmailAPI
	DraftAPI
	PromptAPI
	AgentAPI
}
