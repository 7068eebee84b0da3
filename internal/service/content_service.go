package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/generator"
	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
)

const HistoryPageSize = 20

type ContentService interface {
	Generate(ctx context.Context, userID int64, req *transfer.GenerateContent) (*models.GeneratedContent, error)
	PublishExisting(ctx context.Context, userID, contentID int64, channel string) (*models.GeneratedContent, error)
	History(ctx context.Context, userID int64, page int) (*transfer.ContentPage, error)
	TestConnection(ctx context.Context, userID int64, channel string) (*transfer.ConnectionStatus, error)
}

type contentService struct {
	ur repository.UserRepository
	cr repository.ContentRepository
	p  *pipeline
}

func NewContentService(
	cfg config.Config,
	ur repository.UserRepository,
	cr repository.ContentRepository,
	gen generator.Generator,
	pubs PublisherResolver,
	media MediaStore) ContentService {
	return &contentService{
		ur: ur,
		cr: cr,
		p:  newPipeline(cfg, cr, gen, pubs, media),
	}
}

func (s *contentService) user(ctx context.Context, userID int64) (*models.User, error) {
	user, exists, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return user, nil
}

// Generate creates content on demand and publishes it when requested.
func (s *contentService) Generate(ctx context.Context, userID int64, req *transfer.GenerateContent) (*models.GeneratedContent, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	channel, err := publisher.ParseChannel(req.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	contentType, err := publisher.ParseContentType(req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	apiKey, err := s.p.apiKey(user)
	if err != nil {
		return nil, err
	}

	content, media, err := s.p.generate(ctx, user, apiKey, generation{
		topic:       topic,
		channel:     channel,
		contentType: contentType,
		withImage:   req.GenerateImage,
		withVoice:   req.GenerateVoice,
	})
	if err != nil {
		return nil, err
	}

	if req.AutoPublish {
		if err := s.p.publish(ctx, user, content, contentType, media); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// PublishExisting sends stored content to channel, or to its own channel
// when channel is empty.
func (s *contentService) PublishExisting(ctx context.Context, userID, contentID int64, channel string) (*models.GeneratedContent, error) {
	owned, err := s.cr.CheckByUserID(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("content %d: %w", contentID, ErrNotFound)
	}
	content, err := s.cr.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("content %d: %w", contentID, ErrNotFound)
	}

	if channel == "" {
		channel = content.Channel
	}
	ch, err := publisher.ParseChannel(channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	contentType, err := publisher.ParseContentType(content.ContentType)
	if err != nil {
		contentType = publisher.Post
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub, err := s.p.pubs.Resolve(ch, channelCredentials(user, s.p.secretKey))
	if err != nil {
		return nil, err
	}

	var image *publisher.Image
	if content.ImageURL != "" {
		image = &publisher.Image{URL: content.ImageURL}
	}

	res, err := publisher.Publish(ctx, pub, contentType, publisher.NewRequest(content.TextContent, image, ""))
	if err != nil {
		slog.Error("publishing stored content failed", "content_id", contentID, "channel", ch, "error", err)
		content.PublicationResponse = "Error: " + err.Error()
		if saveErr := s.p.save(ctx, content); saveErr != nil {
			return nil, saveErr
		}
		return content, err
	}

	now := s.p.now()
	content.Channel = string(ch)
	content.Published = true
	content.PublishedAt = &now
	content.PublicationResponse = res.String()
	if err := s.p.save(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *contentService) History(ctx context.Context, userID int64, page int) (*transfer.ContentPage, error) {
	if page < 1 {
		page = 1
	}
	items, err := s.cr.ListByUserID(ctx, userID, HistoryPageSize, (page-1)*HistoryPageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.cr.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.GeneratedContent{}
	}
	return &transfer.ContentPage{Items: items, Page: page, PerPage: HistoryPageSize, Total: total}, nil
}

// TestConnection verifies a channel's credentials without posting.
func (s *contentService) TestConnection(ctx context.Context, userID int64, channel string) (*transfer.ConnectionStatus, error) {
	ch, err := publisher.ParseChannel(channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &transfer.ConnectionStatus{Channel: string(ch)}

	pub, err := s.p.pubs.Resolve(ch, channelCredentials(user, s.p.secretKey))
	if err != nil {
		if !errors.Is(err, publisher.ErrNotConfigured) {
			return nil, err
		}
		status.Message = fmt.Sprintf("%s ist nicht konfiguriert.", ch.Title())
		return status, nil
	}

	tester, ok := pub.(publisher.ConnectionTester)
	if !ok {
		status.Message = "Test für diesen Kanal noch nicht implementiert."
		return status, nil
	}

	res, err := tester.TestConnection(ctx)
	if err != nil {
		status.Message = "Verbindung fehlgeschlagen: " + err.Error()
		return status, nil
	}

	status.Success = true
	status.Message = "Verbindung erfolgreich!"
	if username := publisher.BotUsername(res); username != "" {
		status.Message += " Bot: @" + username
	}
	return status, nil
}
