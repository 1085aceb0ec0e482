// Package devserver is an in-memory stand-in for the assistant backend. It
// serves the same routes with deterministic responses so the client can be
// developed and tested without the real service.
package devserver

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/mailpilot/internal/api"
	"github.com/ajramos/mailpilot/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listLimit = 100

// Responder produces agent text for a rendered prompt
type Responder func(prompt string) string

// Options configures a Server
type Options struct {
	Logger    *zap.Logger
	Snapshot  *api.Snapshot
	Responder Responder
	Now       func() time.Time

	// DisableDraftDelete makes DELETE /api/agent/drafts/{id} answer 404,
	// like backends that never implemented it.
	DisableDraftDelete bool
}

// Server holds the in-memory backend state
type Server struct {
	mu      sync.RWMutex
	emails  []models.Email
	prompts []models.Prompt
	drafts  []models.Draft

	opts   Options
	logger *zap.Logger
	engine *gin.Engine
}

// New creates a server with empty collections
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Snapshot == nil {
		opts.Snapshot = api.BundledSnapshot()
	}
	if opts.Responder == nil {
		opts.Responder = EchoResponder
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{opts: opts, logger: opts.Logger}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the backend routes
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	emails := r.Group("/api/emails")
	emails.POST("/ingest", s.ingestEmails)
	emails.GET("/", s.listEmails)
	emails.GET("/:id", s.getEmail)

	prompts := r.Group("/api/prompts")
	prompts.GET("/", s.listPrompts)
	prompts.POST("/", s.createPrompt)
	prompts.POST("/seed", s.seedPrompts)
	prompts.PUT("/:id", s.updatePrompt)
	prompts.DELETE("/:id", s.deletePrompt)

	agent := r.Group("/api/agent")
	agent.POST("/chat", s.chat)
	agent.POST("/draft", s.generateDraft)
	agent.GET("/drafts", s.listDrafts)
	agent.DELETE("/drafts/:id", s.deleteDraft)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) timestamp() string {
	return s.opts.Now().UTC().Format(time.RFC3339Nano)
}

// Emails

func (s *Server) ingestEmails(c *gin.Context) {
	incoming, err := s.opts.Snapshot.Emails()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	added := 0
	for _, e := range incoming {
		if s.hasEmailLocked(e.Subject, e.Timestamp) {
			continue
		}
		e.ID = uuid.NewString()
		s.emails = append(s.emails, e)
		added++
	}
	processed := 0
	for i := range s.emails {
		if s.emails[i].Processed {
			continue
		}
		s.emails[i].Metadata = Analyze(s.emails[i])
		s.emails[i].Processed = true
		processed++
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": ingestMessage(added, processed)})
}

func (s *Server) hasEmailLocked(subject, ts string) bool {
	for _, e := range s.emails {
		if e.Subject == subject && e.Timestamp == ts {
			return true
		}
	}
	return false
}

func (s *Server) listEmails(c *gin.Context) {
	s.mu.RLock()
	out := make([]models.Email, len(s.emails))
	copy(out, s.emails)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].Time()
		tj, _ := out[j].Time()
		return ti.After(tj)
	})
	if len(out) > listLimit {
		out = out[:listLimit]
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getEmail(c *gin.Context) {
	id := c.Param("id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.emails {
		if e.ID == id {
			c.JSON(http.StatusOK, e)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Email not found"})
}

// Prompts

func (s *Server) listPrompts(c *gin.Context) {
	s.mu.RLock()
	out := make([]models.Prompt, len(s.prompts))
	copy(out, s.prompts)
	s.mu.RUnlock()
	if len(out) > listLimit {
		out = out[:listLimit]
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createPrompt(c *gin.Context) {
	var p models.Prompt
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if p.Name == "" || p.Template == "" || !p.Type.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "name, type and template are required"})
		return
	}
	p.ID = uuid.NewString()
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()
	c.JSON(http.StatusOK, p)
}

func (s *Server) updatePrompt(c *gin.Context) {
	var upd models.PromptUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if upd.Type != nil && !upd.Type.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "unknown prompt type"})
		return
	}

	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.prompts {
		if s.prompts[i].ID != id {
			continue
		}
		p := &s.prompts[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Type != nil {
			p.Type = *upd.Type
		}
		if upd.Template != nil {
			p.Template = *upd.Template
		}
		if upd.IsActive != nil {
			p.IsActive = *upd.IsActive
		}
		c.JSON(http.StatusOK, *p)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Prompt not found"})
}

func (s *Server) deletePrompt(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.prompts {
		if s.prompts[i].ID == id {
			s.prompts = append(s.prompts[:i], s.prompts[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Prompt deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Prompt not found"})
}

func (s *Server) seedPrompts(c *gin.Context) {
	s.mu.Lock()
	seeded := 0
	for _, def := range DefaultPrompts() {
		exists := false
		for _, p := range s.prompts {
			if p.Type == def.Type {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		def.ID = uuid.NewString()
		s.prompts = append(s.prompts, def)
		seeded++
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Seeded prompts", "seeded": seeded})
}

// Agent

func (s *Server) chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Message is required"})
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Response: s.opts.Responder(chatPrompt(req))})
}

func (s *Server) generateDraft(c *gin.Context) {
	var req models.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.Email == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email object is required"})
		return
	}

	s.mu.Lock()
	replyTemplate := "Draft a polite reply to this email."
	for _, p := range s.prompts {
		if p.Type == models.PromptReply && p.IsActive {
			replyTemplate = p.Template
			break
		}
	}
	content := s.opts.Responder(draftPrompt(req, replyTemplate))

	emailID := req.Email.ID
	if emailID == "" {
		emailID = uuid.NewString()
	}
	subject := req.Email.Subject
	if subject == "" {
		subject = "No Subject"
	}
	draft := models.Draft{
		ID:        uuid.NewString(),
		EmailID:   emailID,
		Subject:   "Re: " + subject,
		Body:      content,
		Status:    models.DraftGenerated,
		CreatedAt: s.timestamp(),
	}
	s.drafts = append(s.drafts, draft)
	s.mu.Unlock()

	c.JSON(http.StatusOK, models.GeneratedDraft{DraftID: draft.ID, Content: content})
}

func (s *Server) listDrafts(c *gin.Context) {
	s.mu.RLock()
	out := make([]models.Draft, len(s.drafts))
	copy(out, s.drafts)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := models.ParseTimestamp(out[i].CreatedAt)
		tj, _ := models.ParseTimestamp(out[j].CreatedAt)
		return ti.After(tj)
	})
	if len(out) > listLimit {
		out = out[:listLimit]
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteDraft(c *gin.Context) {
	if s.opts.DisableDraftDelete {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
		return
	}
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drafts {
		if s.drafts[i].ID == id {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			c.JSON(http.StatusOK, models.DeleteResult{Message: "Draft deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Draft not found"})
}
