package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/mailpilot/internal/models"
	"go.uber.org/zap"
)

const (
	// ChatApology replaces the agent reply when the chat request fails
	ChatApology = "Sorry, I encountered an error."

	// DraftApology replaces the confirmation when draft generation fails
	DraftApology = "Sorry, I failed to generate a draft."

	// DraftUtterance is logged on behalf of the user before drafting
	DraftUtterance = "Draft a reply for me."

	// DefaultDraftInstructions is used when the user typed nothing
	DefaultDraftInstructions = "Draft a polite reply."
)

// DraftConfirmation is the agent entry logged after a successful draft
func DraftConfirmation(content string) string {
	return fmt.Sprintf("I've drafted a reply for you:\n\n%s\n\n**(Saved to Drafts)**", content)
}

// Chat is one conversation with the agent about an optional email. The log
// is append-only and lives as long as the session.
type Chat struct {
	mu       sync.RWMutex
	api      AgentAPI
	logger   *zap.Logger
	email    *models.Email
	context  string
	messages []models.ChatMessage
	busy     bool
	onChange func()
}

// NewChat starts an empty session; email may be nil
func NewChat(api AgentAPI, logger *zap.Logger, email *models.Email) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Chat{api: api, logger: logger.Named("chat")}
	if email != nil {
		e := *email
		c.email = &e
		c.logger = c.logger.With(zap.String("email", e.ID))
	}
	return c
}

func (c *Chat) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Chat) changed() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// SetContext sets free-form context forwarded with every chat request
func (c *Chat) SetContext(s string) {
	c.mu.Lock()
	c.context = s
	c.mu.Unlock()
}

// begin appends the user entry and marks the session busy. It returns false
// when another request is already in flight.
func (c *Chat) begin(utterance string) bool {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	c.messages = append(c.messages, models.ChatMessage{Role: models.RoleUser, Content: utterance})
	c.mu.Unlock()
	c.changed()
	return true
}

func (c *Chat) finish(reply string) {
	c.mu.Lock()
	c.messages = append(c.messages, models.ChatMessage{Role: models.RoleAgent, Content: reply})
	c.busy = false
	c.mu.Unlock()
	c.changed()
}

// Send asks the agent about text. Blank input, or input while a request is
// pending, is ignored and reported as false.
func (c *Chat) Send(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !c.begin(text) {
		return false
	}

	c.mu.RLock()
	req := models.ChatRequest{Message: text, Email: c.email, Context: c.context}
	c.mu.RUnlock()

	reply, err := c.api.Chat(ctx, req)
	if err != nil {
		c.logger.Error("chat request failed", zap.Error(err))
		reply = ChatApology
	}
	c.finish(reply)
	return true
}

// DraftReply asks the agent to draft a reply to the session email using
// instructions, or DefaultDraftInstructions when blank. The backend stores
// the draft; the session only logs the outcome.
func (c *Chat) DraftReply(ctx context.Context, instructions string) bool {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		instructions = DefaultDraftInstructions
	}
	if !c.begin(DraftUtterance) {
		return false
	}

	c.mu.RLock()
	email := c.email
	c.mu.RUnlock()

	if email == nil {
		c.logger.Warn("draft requested without an email")
		c.finish(DraftApology)
		return true
	}

	draft, err := c.api.GenerateDraft(ctx, models.DraftRequest{Email: email, Instructions: instructions})
	if err != nil || draft == nil {
		if err != nil {
			c.logger.Error("draft generation failed", zap.Error(err))
		}
		c.finish(DraftApology)
		return true
	}
	c.logger.Info("draft generated", zap.String("draft", draft.DraftID))
	c.finish(DraftConfirmation(draft.Content))
	return true
}

// Busy reports whether a request is in flight
func (c *Chat) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

// Email returns the email the session is about, or nil
func (c *Chat) Email() *models.Email {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// Messages returns a copy of the log in append order
func (c *Chat) Messages() []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
