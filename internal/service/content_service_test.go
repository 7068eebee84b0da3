package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentFixture(user *models.User, contents ...*models.GeneratedContent) (ContentService, *fakeContentRepo, *fakeGenerator, *fakePublisher) {
	cr := newFakeContentRepo(contents...)
	gen := &fakeGenerator{text: "Neuer Beitrag"}
	pub := &fakePublisher{}
	svc := NewContentService(testConfig(), newFakeUserRepo(user), cr, gen, registryWith(pub), nil)
	return svc, cr, gen, pub
}

func TestGenerateWithoutPublishing(t *testing.T) {
	svc, cr, _, pub := newContentFixture(telegramUser(1))

	c, err := svc.Generate(context.Background(), 1, &transfer.GenerateContent{Topic: "Kaffee", Channel: "Telegram"})
	require.NoError(t, err)
	assert.Equal(t, "Neuer Beitrag", c.TextContent)
	assert.Equal(t, "telegram", c.Channel)
	assert.Equal(t, "post", c.ContentType)
	assert.Nil(t, c.ScheduleID)
	assert.False(t, c.Published)
	assert.Empty(t, pub.texts)
	assert.Len(t, cr.all(), 1)
}

func TestGenerateAutoPublish(t *testing.T) {
	svc, cr, _, pub := newContentFixture(telegramUser(1))

	c, err := svc.Generate(context.Background(), 1, &transfer.GenerateContent{Topic: "Kaffee", Channel: "telegram", AutoPublish: true})
	require.NoError(t, err)
	assert.True(t, c.Published)
	assert.Len(t, pub.texts, 1)
	assert.True(t, cr.all()[0].Published)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	svc, _, gen, _ := newContentFixture(telegramUser(1))

	_, err := svc.Generate(context.Background(), 1, &transfer.GenerateContent{Topic: " ", Channel: "telegram"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Generate(context.Background(), 1, &transfer.GenerateContent{Topic: "x", Channel: "myspace"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Generate(context.Background(), 1, &transfer.GenerateContent{Topic: "x", Channel: "telegram", ContentType: "carousel"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, gen.textCalls)
}

func TestGenerateUnknownUser(t *testing.T) {
	svc, _, _, _ := newContentFixture(telegramUser(1))

	_, err := svc.Generate(context.Background(), 2, &transfer.GenerateContent{Topic: "x", Channel: "telegram"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishExisting(t *testing.T) {
	stored := &models.GeneratedContent{ID: 5, UserID: 1, TextContent: "Gespeichert", Channel: "telegram", ContentType: "post"}
	svc, cr, _, pub := newContentFixture(telegramUser(1), stored)

	c, err := svc.PublishExisting(context.Background(), 1, 5, "")
	require.NoError(t, err)
	assert.True(t, c.Published)
	assert.Equal(t, []string{"Gespeichert"}, pub.texts)

	saved, _ := cr.GetByID(context.Background(), 5)
	assert.True(t, saved.Published)
	assert.NotNil(t, saved.PublishedAt)
}

func TestPublishExistingForeignContent(t *testing.T) {
	stored := &models.GeneratedContent{ID: 5, UserID: 2, TextContent: "Fremd", Channel: "telegram"}
	svc, _, _, pub := newContentFixture(telegramUser(1), stored)

	_, err := svc.PublishExisting(context.Background(), 1, 5, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, pub.texts)
}

func TestPublishExistingNotConfigured(t *testing.T) {
	stored := &models.GeneratedContent{ID: 5, UserID: 1, TextContent: "Gespeichert", Channel: "telegram"}
	svc, _, _, _ := newContentFixture(telegramUser(1), stored)

	_, err := svc.PublishExisting(context.Background(), 1, 5, "facebook")
	assert.ErrorIs(t, err, publisher.ErrNotConfigured)
}

func TestPublishExistingFailureKeepsFlag(t *testing.T) {
	stored := &models.GeneratedContent{ID: 5, UserID: 1, TextContent: "Gespeichert", Channel: "telegram", Published: true}
	svc, cr, _, pub := newContentFixture(telegramUser(1), stored)
	pub.err = &publisher.Error{Kind: publisher.KindAuth, Platform: "Telegram", Message: "Unauthorized", Status: 401}

	_, err := svc.PublishExisting(context.Background(), 1, 5, "")
	require.Error(t, err)
	assert.Equal(t, publisher.KindAuth, publisher.KindOf(err))

	saved, _ := cr.GetByID(context.Background(), 5)
	assert.True(t, saved.Published)
	assert.Contains(t, saved.PublicationResponse, "Error: Telegram: Unauthorized")
}

func TestHistoryPaginates(t *testing.T) {
	var contents []*models.GeneratedContent
	for i := int64(1); i <= 25; i++ {
		contents = append(contents, &models.GeneratedContent{ID: i, UserID: 1})
	}
	contents = append(contents, &models.GeneratedContent{ID: 99, UserID: 2})
	svc, _, _, _ := newContentFixture(telegramUser(1), contents...)

	page, err := svc.History(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, HistoryPageSize, page.PerPage)
	assert.Equal(t, int64(25), page.Total)
	assert.Len(t, page.Items, 5)

	page, err = svc.History(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, HistoryPageSize)

	page, err = svc.History(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestConnectionStatus(t *testing.T) {
	svc, _, _, pub := newContentFixture(telegramUser(1))

	status, err := svc.TestConnection(context.Background(), 1, "telegram")
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, "Verbindung erfolgreich! Bot: @demo_bot", status.Message)

	status, err = svc.TestConnection(context.Background(), 1, "linkedin")
	require.NoError(t, err)
	assert.False(t, status.Success)
	assert.Equal(t, "LinkedIn ist nicht konfiguriert.", status.Message)

	pub.testErr = &publisher.Error{Kind: publisher.KindAuth, Platform: "Telegram", Message: "Unauthorized", Status: 401}
	status, err = svc.TestConnection(context.Background(), 1, "telegram")
	require.NoError(t, err)
	assert.False(t, status.Success)
	assert.Contains(t, status.Message, "Verbindung fehlgeschlagen")

	_, err = svc.TestConnection(context.Background(), 1, "fax")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
