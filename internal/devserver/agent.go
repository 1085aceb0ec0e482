package devserver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ajramos/mailpilot/internal/models"
)

// DefaultPrompts are the prompts created by POST /api/prompts/seed
func DefaultPrompts() []models.Prompt {
	return []models.Prompt{
		{
			Name:     "Default Categorization",
			Type:     models.PromptCategorization,
			Template: "Categorize emails into: Important, Newsletter, Spam, To-Do. To-Do emails must include a direct request requiring user action. Return only the category name.",
			IsActive: true,
		},
		{
			Name:     "Default Action Extraction",
			Type:     models.PromptExtraction,
			Template: "Extract tasks from the email. Respond in JSON format: { \"tasks\": [ { \"task\": \"...\", \"deadline\": \"...\", \"priority\": \"High/Medium/Low\" } ] }. If no tasks, return { \"tasks\": [] }.",
			IsActive: true,
		},
		{
			Name:     "Default Auto-Reply",
			Type:     models.PromptReply,
			Template: "Draft a polite and professional reply. Address the sender by name if possible. Keep it concise.",
			IsActive: true,
		},
		{
			Name:     "Default Chat",
			Type:     models.PromptChat,
			Template: "You are a helpful email assistant. Answer questions based on the email context provided.",
			IsActive: true,
		},
	}
}

func ingestMessage(added, processed int) string {
	return fmt.Sprintf("Ingested %d new emails and processed %d emails", added, processed)
}

var (
	spamPattern       = regexp.MustCompile(`(?i)\b(selected|prize|claim your|winner|reward)\b`)
	newsletterPattern = regexp.MustCompile(`(?i)(newsletter|weekly|unsubscribe|read online)`)
	requestPattern    = regexp.MustCompile(`(?i)\b(please|could you|kindly|action required|reply if)\b`)
	deadlinePattern   = regexp.MustCompile(`(?i)\b(?:by|before|within)\s+([A-Za-z0-9 ]+?(?:EOD|\d{1,2}|hours|days|Monday|Tuesday|Wednesday|Thursday|Friday))\b`)
	sentenceSplit     = regexp.MustCompile(`[.!?\n]+`)
)

// Analyze is the devserver's rule-based stand-in for backend categorization,
// action extraction and summarization.
func Analyze(e models.Email) *models.EmailMetadata {
	text := e.Subject + "\n" + e.Body
	meta := &models.EmailMetadata{Summary: firstSentence(e.Body)}

	switch {
	case spamPattern.MatchString(text):
		meta.Category = "Spam"
	case newsletterPattern.MatchString(text):
		meta.Category = "Newsletter"
	case requestPattern.MatchString(text):
		meta.Category = "To-Do"
	default:
		meta.Category = "Important"
	}

	if meta.Category == "To-Do" {
		for _, s := range sentenceSplit.Split(e.Body, -1) {
			s = strings.TrimSpace(s)
			if s == "" || !requestPattern.MatchString(s) {
				continue
			}
			item := models.ActionItem{Task: s, Priority: "Medium"}
			if m := deadlinePattern.FindStringSubmatch(s); m != nil {
				item.Deadline = strings.TrimSpace(m[1])
				item.Priority = "High"
			}
			meta.ActionItems = append(meta.ActionItems, item)
		}
	}
	return meta
}

func firstSentence(body string) string {
	for _, s := range sentenceSplit.Split(body, -1) {
		s = strings.TrimSpace(s)
		// skip greetings like "Hi team,"
		if s == "" || (strings.HasSuffix(s, ",") && len(strings.Fields(s)) <= 3) {
			continue
		}
		return s + "."
	}
	return ""
}

func emailContext(e *models.Email) string {
	if e == nil {
		return ""
	}
	subject := e.Subject
	if subject == "" {
		subject = "No Subject"
	}
	sender := e.Sender
	if sender == "" {
		sender = "Unknown"
	}
	return fmt.Sprintf("Subject: %s\nFrom: %s\nBody:\n%s\n", subject, sender, e.Body)
}

func chatPrompt(req models.ChatRequest) string {
	return fmt.Sprintf("You are an AI email assistant.\n\nHere is the email the user is asking about:\n\n%s\nUser message: %s\nContext: %s\n",
		emailContext(req.Email), req.Message, req.Context)
}

func draftPrompt(req models.DraftRequest, replyTemplate string) string {
	return fmt.Sprintf("Original Email:\n%s\nInstructions: %s\n\n%s\n",
		emailContext(req.Email), req.Instructions, replyTemplate)
}

// EchoResponder answers with a deterministic text derived from the prompt
func EchoResponder(prompt string) string {
	if strings.HasPrefix(prompt, "Original Email:") {
		subject := lineValue(prompt, "Subject: ")
		sender := lineValue(prompt, "From: ")
		name := sender
		if at := strings.Index(sender, "@"); at > 0 {
			name = sender[:at]
		}
		return fmt.Sprintf("Hi %s,\n\nThank you for your email regarding \"%s\". I will follow up shortly.\n\nBest regards", name, subject)
	}
	msg := lineValue(prompt, "User message: ")
	if subject := lineValue(prompt, "Subject: "); subject != "" {
		return fmt.Sprintf("About \"%s\": you asked \"%s\".", subject, msg)
	}
	return fmt.Sprintf("You asked \"%s\".", msg)
}

func lineValue(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
