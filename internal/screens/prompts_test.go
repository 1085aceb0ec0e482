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

func samplePrompts() []models.Prompt {
	return []models.Prompt{
		{ID: "p1", Name: "Categorization", Type: models.PromptCategorization, Template: "old", IsActive: true},
		{ID: "p2", Name: "Auto-reply", Type: models.PromptReply, Template: "reply", IsActive: true},
	}
}

func templateUpdate(s string) models.PromptUpdate {
	return models.PromptUpdate{Template: &s}
}

func TestPrompts_SaveSendsExactlyOneTemplateUpdate(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()

	started := make(chan struct{})
	release := make(chan struct{})
	updated := samplePrompts()[0]
	updated.Template = "new"
	backend.On("UpdatePrompt", mock.Anything, "p1", templateUpdate("new")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&updated, nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))

	done := make(chan error, 1)
	go func() { done <- prompts.Save(context.Background(), "p1", "new") }()
	<-started

	assert.True(t, prompts.Saving("p1"))
	assert.False(t, prompts.Saving("p2"))
	assert.ErrorIs(t, prompts.Save(context.Background(), "p1", "newer"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, prompts.Saving("p1"))

	p, ok := prompts.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "new", p.Template)
	backend.AssertNumberOfCalls(t, "UpdatePrompt", 1)
	backend.AssertExpectations(t)
}

func TestPrompts_SaveFailureKeepsTemplate(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()
	backend.On("UpdatePrompt", mock.Anything, "p1", templateUpdate("new")).
		Return(nil, errors.New("500 internal error")).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))

	require.Error(t, prompts.Save(context.Background(), "p1", "new"))
	p, _ := prompts.Get("p1")
	assert.Equal(t, "old", p.Template)
	assert.False(t, prompts.Saving("p1"))
}

func TestPrompts_SaveUnknownID(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))
	assert.ErrorIs(t, prompts.Save(context.Background(), "zzz", "t"), ErrUnknownID)
	backend.AssertNotCalled(t, "UpdatePrompt", mock.Anything, mock.Anything, mock.Anything)
}

func TestPrompts_InitializeSeedsEmptyListThenRefetches(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return([]models.Prompt{}, nil).Once()
	backend.On("SeedPrompts", mock.Anything).Return(nil).Once()
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))
	assert.Empty(t, prompts.Prompts())

	require.NoError(t, prompts.Initialize(context.Background()))
	assert.Len(t, prompts.Prompts(), 2)
	assert.Equal(t, PhaseReady, prompts.Phase())
	assert.False(t, prompts.Seeding())
	backend.AssertExpectations(t)
}

func TestPrompts_InitializeRefusedWhenNotEmpty(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))

	assert.ErrorIs(t, prompts.Initialize(context.Background()), ErrNotEmpty)
	backend.AssertNotCalled(t, "SeedPrompts", mock.Anything)
}

func TestPrompts_InitializeRefusedBeforeLoad(t *testing.T) {
	prompts := NewPrompts(&MockBackend{}, nil)
	assert.ErrorIs(t, prompts.Initialize(context.Background()), ErrNotReady)
}

func TestPrompts_InitializeSeedFailureReturnsToEmptyList(t *testing.T) {
	backend := &MockBackend{}
	boom := errors.New("seed failed")
	backend.On("ListPrompts", mock.Anything).Return([]models.Prompt{}, nil).Once()
	backend.On("SeedPrompts", mock.Anything).Return(boom).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))

	assert.ErrorIs(t, prompts.Initialize(context.Background()), boom)
	assert.Equal(t, PhaseReady, prompts.Phase())
	assert.Empty(t, prompts.Prompts())
	backend.AssertNumberOfCalls(t, "ListPrompts", 1)
}

func TestPrompts_Reload(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts()[:1], nil).Once()
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))
	require.NoError(t, prompts.Reload(context.Background()))
	assert.Len(t, prompts.Prompts(), 2)
}

func TestPrompts_SaveAcceptedWithoutPromptKeepsTypedTemplate(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Once()
	backend.On("UpdatePrompt", mock.Anything, "p1", templateUpdate("new")).
		Return(&models.Prompt{}, nil).Once()

	prompts := NewPrompts(backend, nil)
	require.NoError(t, prompts.Activate(context.Background()))

	require.NoError(t, prompts.Save(context.Background(), "p1", "new"))
	p, ok := prompts.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "new", p.Template)
	assert.Equal(t, "Categorization", p.Name)
}

func TestPrompts_EarlierSaveDoesNotClearNewerSavingFlag(t *testing.T) {
	backend := &MockBackend{}
	backend.On("ListPrompts", mock.Anything).Return(samplePrompts(), nil).Twice()

	firstStarted, firstRelease := make(chan struct{}), make(chan struct{})
	backend.On("UpdatePrompt", mock.Anything, "p1", templateUpdate("first")).
		Run(func(mock.Arguments) {
			close(firstStarted)
			<-firstRelease
		}).
		Return(nil, errors.New("timeout")).Once()

	secondStarted, secondRelease := make(chan struct{}), make(chan struct{})
	backend.On("UpdatePrompt", mock.Anything, "p1", templateUpdate("second")).
		Run(func(mock.Arguments) {
			close(secondStarted)
			<-secondRelease
		}).
		Return(nil, errors.New("timeout")).Once()

	prompts := NewPrompts(backend, nil)
	ctx := context.Background()
	require.NoError(t, prompts.Activate(ctx))

	first := make(chan error, 1)
	go func() { first <- prompts.Save(ctx, "p1", "first") }()
	<-firstStarted

	prompts.Deactivate()
	require.NoError(t, prompts.Activate(ctx))

	second := make(chan error, 1)
	go func() { second <- prompts.Save(ctx, "p1", "second") }()
	<-secondStarted

	close(firstRelease)
	require.Error(t, <-first)
	assert.True(t, prompts.Saving("p1"))
	assert.ErrorIs(t, prompts.Save(ctx, "p1", "third"), ErrBusy)

	close(secondRelease)
	require.Error(t, <-second)
	assert.False(t, prompts.Saving("p1"))
	backend.AssertExpectations(t)
}
