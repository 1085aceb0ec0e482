package models

import (
	"fmt"
	"strings"
	"time"
)

// ActionItem is a task extracted from an email by the backend
type ActionItem struct {
	Task     string `json:"task"`
	Deadline string `json:"deadline,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// EmailMetadata is attached asynchronously by backend processing
type EmailMetadata struct {
	Category    string       `json:"category,omitempty"`
	ActionItems []ActionItem `json:"action_items,omitempty"`
	Summary     string       `json:"summary,omitempty"`
}

// Email is the client copy of a backend email. It is never mutated locally.
type Email struct {
	ID        string         `json:"_id"`
	Sender    string         `json:"sender"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Timestamp string         `json:"timestamp"`
	IsRead    bool           `json:"is_read"`
	Processed bool           `json:"processed"`
	Metadata  *EmailMetadata `json:"metadata,omitempty"`
}

// Category returns the metadata category or an empty string
func (e Email) Category() string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata.Category
}

// Preview returns the summary when the backend produced one, otherwise the body
func (e Email) Preview() string {
	if e.Metadata != nil && strings.TrimSpace(e.Metadata.Summary) != "" {
		return e.Metadata.Summary
	}
	return e.Body
}

// ActionItems returns the extracted tasks, if any
func (e Email) ActionItems() []ActionItem {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata.ActionItems
}

// Time parses the backend timestamp
func (e Email) Time() (time.Time, bool) {
	return ParseTimestamp(e.Timestamp)
}

// PromptType is the closed set of prompt kinds understood by the backend
type PromptType string

const (
	PromptCategorization PromptType = "categorization"
	PromptExtraction     PromptType = "extraction"
	PromptReply          PromptType = "reply"
	PromptChat           PromptType = "chat"
)

// Valid reports whether t is one of the known prompt types
func (t PromptType) Valid() bool {
	switch t {
	case PromptCategorization, PromptExtraction, PromptReply, PromptChat:
		return true
	}
	return false
}

// Prompt is an instruction template stored in the backend "brain"
type Prompt struct {
	ID       string     `json:"_id"`
	Name     string     `json:"name"`
	Type     PromptType `json:"type"`
	Template string     `json:"template"`
	IsActive bool       `json:"is_active"`
}

// PromptUpdate carries the fields sent in a partial prompt update
type PromptUpdate struct {
	Name     *string     `json:"name,omitempty"`
	Type     *PromptType `json:"type,omitempty"`
	Template *string     `json:"template,omitempty"`
	IsActive *bool       `json:"is_active,omitempty"`
}

// DraftStatus is the closed set of draft lifecycle tags
type DraftStatus string

const (
	DraftGenerated DraftStatus = "generated"
	DraftEdited    DraftStatus = "edited"
	DraftApproved  DraftStatus = "approved"
)

// Draft is a reply generated by the agent for a source email
type Draft struct {
	ID        string      `json:"_id"`
	EmailID   string      `json:"email_id"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Status    DraftStatus `json:"status"`
	CreatedAt string      `json:"created_at"`
}

// Age renders how long ago the draft was generated relative to now
func (d Draft) Age(now time.Time) string {
	created, ok := ParseTimestamp(d.CreatedAt)
	if !ok {
		return "at an unknown time"
	}
	secs := int(now.Sub(created).Seconds())
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%d minutes ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	}
	return fmt.Sprintf("%d days ago", secs/86400)
}

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleAgent ChatRole = "agent"
)

// ChatMessage lives only for one chat session and is never persisted
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the body of POST /api/agent/chat
type ChatRequest struct {
	Message string `json:"message"`
	Email   *Email `json:"email,omitempty"`
	Context string `json:"context,omitempty"`
}

// ChatResponse is the agent reply
type ChatResponse struct {
	Response string `json:"response"`
}

// DraftRequest is the body of POST /api/agent/draft
type DraftRequest struct {
	Email        *Email `json:"email"`
	Instructions string `json:"instructions,omitempty"`
}

// GeneratedDraft is returned after the backend generated and stored a draft
type GeneratedDraft struct {
	DraftID string `json:"draft_id"`
	Content string `json:"content"`
}

// DeleteResult is returned by delete endpoints
type DeleteResult struct {
	Message string `json:"message"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the ISO timestamps emitted by the backend. Naive
// timestamps (no zone) are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
