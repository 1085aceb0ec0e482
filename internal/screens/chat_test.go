package screens

import (
	"context"
	"errors"
	"testing"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func chatEmail() *models.Email {
	return &models.Email{ID: "e1", Sender: "sarah@acme-corp.com", Subject: "Roadmap review", Body: "Can we move it?"}
}

func TestChat_SendAppendsUserThenAgent(t *testing.T) {
	backend := &MockBackend{}
	backend.On("Chat", mock.Anything, models.ChatRequest{Message: "  Summarize ", Email: chatEmail()}).
		Return("It asks to move the meeting.", nil).Once()

	chat := NewChat(backend, nil, chatEmail())
	require.True(t, chat.Send(context.Background(), "  Summarize "))

	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "  Summarize "},
		{Role: models.RoleAgent, Content: "It asks to move the meeting."},
	}, chat.Messages())
	assert.False(t, chat.Busy())
	backend.AssertExpectations(t)
}

func TestChat_SendFailureLogsApology(t *testing.T) {
	backend := &MockBackend{}
	backend.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()

	chat := NewChat(backend, nil, nil)
	require.True(t, chat.Send(context.Background(), "hello"))

	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleAgent, msgs[1].Role)
	assert.Equal(t, ChatApology, msgs[1].Content)
}

func TestChat_SendForwardsContext(t *testing.T) {
	backend := &MockBackend{}
	backend.On("Chat", mock.Anything, models.ChatRequest{Message: "hi", Context: "inbox view"}).
		Return("hello", nil).Once()

	chat := NewChat(backend, nil, nil)
	chat.SetContext("inbox view")
	require.True(t, chat.Send(context.Background(), "hi"))
	backend.AssertExpectations(t)
}

func TestChat_BlankInputIgnored(t *testing.T) {
	backend := &MockBackend{}
	chat := NewChat(backend, nil, chatEmail())

	for _, in := range []string{"", "   ", "\n\t"} {
		assert.False(t, chat.Send(context.Background(), in))
	}
	assert.Empty(t, chat.Messages())
	backend.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestChat_InputWhileBusyIgnored(t *testing.T) {
	backend := &MockBackend{}
	started := make(chan struct{})
	release := make(chan struct{})
	backend.On("Chat", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("first answer", nil).Once()

	chat := NewChat(backend, nil, nil)
	done := make(chan bool, 1)
	go func() { done <- chat.Send(context.Background(), "first") }()
	<-started

	assert.True(t, chat.Busy())
	assert.False(t, chat.Send(context.Background(), "second"))
	assert.False(t, chat.DraftReply(context.Background(), ""))

	close(release)
	assert.True(t, <-done)
	assert.Len(t, chat.Messages(), 2)
}

func TestChat_DraftReplyConfirmation(t *testing.T) {
	backend := &MockBackend{}
	backend.On("GenerateDraft", mock.Anything, models.DraftRequest{Email: chatEmail(), Instructions: DefaultDraftInstructions}).
		Return(&models.GeneratedDraft{DraftID: "d9", Content: "Thursday works for me."}, nil).Once()

	chat := NewChat(backend, nil, chatEmail())
	require.True(t, chat.DraftReply(context.Background(), "  "))

	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Content: DraftUtterance}, msgs[0])
	assert.Equal(t, models.RoleAgent, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Thursday works for me.")
	assert.Contains(t, msgs[1].Content, "(Saved to Drafts)")
	backend.AssertExpectations(t)
}

func TestChat_DraftReplyCustomInstructions(t *testing.T) {
	backend := &MockBackend{}
	backend.On("GenerateDraft", mock.Anything, models.DraftRequest{Email: chatEmail(), Instructions: "Decline politely"}).
		Return(&models.GeneratedDraft{DraftID: "d1", Content: "No thanks."}, nil).Once()

	chat := NewChat(backend, nil, chatEmail())
	require.True(t, chat.DraftReply(context.Background(), "Decline politely"))
	backend.AssertExpectations(t)
}

func TestChat_DraftReplyFailure(t *testing.T) {
	tests := []struct {
		name  string
		email *models.Email
		err   error
	}{
		{name: "backend error", email: chatEmail(), err: errors.New("llm unavailable")},
		{name: "no email", email: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockBackend{}
			if tt.email != nil {
				backend.On("GenerateDraft", mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			}

			chat := NewChat(backend, nil, tt.email)
			require.True(t, chat.DraftReply(context.Background(), ""))

			msgs := chat.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, DraftUtterance, msgs[0].Content)
			assert.Equal(t, DraftApology, msgs[1].Content)
			backend.AssertExpectations(t)
		})
	}
}

func TestDraftConfirmation(t *testing.T) {
	assert.Equal(t, "I've drafted a reply for you:\n\nHi\n\n**(Saved to Drafts)**", DraftConfirmation("Hi"))
}
