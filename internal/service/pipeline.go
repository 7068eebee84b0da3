package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/generator"
	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/repository"
)

// PublisherResolver is satisfied by *publisher.Registry.
type PublisherResolver interface {
	Resolve(ch publisher.Channel, creds publisher.Credentials) (publisher.Publisher, error)
}

// MediaStore hosts generated media at a public URL.
type MediaStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// pipeline generates content, records it and hands it to a publisher. It
// is shared by scheduled executions and manual requests.
type pipeline struct {
	secretKey    string
	systemAPIKey string
	cr           repository.ContentRepository
	gen          generator.Generator
	pubs         PublisherResolver
	media        MediaStore
	now          func() time.Time
}

func newPipeline(cfg config.Config, cr repository.ContentRepository, gen generator.Generator, pubs PublisherResolver, media MediaStore) *pipeline {
	return &pipeline{
		secretKey:    cfg.SecretKey,
		systemAPIKey: cfg.OpenAI.APIKey,
		cr:           cr,
		gen:          gen,
		pubs:         pubs,
		media:        media,
		now:          time.Now,
	}
}

type generation struct {
	scheduleID  *int64
	topic       string
	channel     publisher.Channel
	contentType publisher.ContentType
	withImage   bool
	withVoice   bool
}

type generatedMedia struct {
	image    []byte
	imageURL string
	voice    []byte
	voiceURL string
}

func (p *pipeline) apiKey(u *models.User) (string, error) {
	return resolveAPIKey(u, p.secretKey, p.systemAPIKey)
}

// generate creates the text and optional media and stores an unpublished
// record. Only a text failure is fatal.
func (p *pipeline) generate(ctx context.Context, u *models.User, apiKey string, g generation) (*models.GeneratedContent, *generatedMedia, error) {
	channel := string(g.channel)
	systemPrompt := generator.BuildSystemPrompt(u.OpenAISystemPrompt, channel)

	text, err := p.gen.GenerateText(ctx, g.topic, channel, systemPrompt, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("generating text: %w", err)
	}

	m := &generatedMedia{}
	if g.withImage {
		image, err := p.gen.GenerateImage(ctx, g.topic, channel, apiKey)
		if err != nil {
			slog.Warn("image generation failed, continuing without image", "user_id", u.ID, "channel", channel, "error", err)
		} else {
			m.image = image
			m.imageURL = p.store(ctx, image, "image")
		}
	}
	if g.withVoice {
		voice, err := p.gen.GenerateSpeech(ctx, text, apiKey)
		if err != nil {
			slog.Warn("speech generation failed, continuing without voice", "user_id", u.ID, "channel", channel, "error", err)
		} else {
			m.voice = voice
			m.voiceURL = p.store(ctx, voice, "voice")
		}
	}

	content := &models.GeneratedContent{
		UserID:      u.ID,
		ScheduleID:  g.scheduleID,
		TextContent: text,
		ImageURL:    m.imageURL,
		VoiceURL:    m.voiceURL,
		Channel:     channel,
		ContentType: string(g.contentType),
	}
	if _, err := p.cr.Create(ctx, content); err != nil {
		return nil, nil, fmt.Errorf("saving generated content: %w", err)
	}
	return content, m, nil
}

func (p *pipeline) store(ctx context.Context, data []byte, kind string) string {
	if p.media == nil {
		return ""
	}
	url, err := p.media.Upload(ctx, data)
	if err != nil {
		slog.Warn("unable to host generated media", "kind", kind, "error", err)
		return ""
	}
	return url
}

// publish delivers content and records the outcome on its row. Delivery
// failures are recorded, not returned; the error is for persistence only.
func (p *pipeline) publish(ctx context.Context, u *models.User, content *models.GeneratedContent, contentType publisher.ContentType, m *generatedMedia) error {
	ch := publisher.Channel(content.Channel)

	pub, err := p.pubs.Resolve(ch, channelCredentials(u, p.secretKey))
	if err != nil {
		if !errors.Is(err, publisher.ErrNotConfigured) {
			slog.Warn("unable to build publisher", "user_id", u.ID, "channel", ch, "error", err)
		}
		content.Published = false
		content.PublicationResponse = notConfiguredNote(ch)
		return p.save(ctx, content)
	}

	var image *publisher.Image
	if m != nil && (len(m.image) > 0 || m.imageURL != "") {
		image = &publisher.Image{Data: m.image, URL: m.imageURL}
	}

	res, err := publisher.Publish(ctx, pub, contentType, publisher.NewRequest(content.TextContent, image, ""))
	if err != nil {
		slog.Error("publishing failed", "content_id", content.ID, "channel", ch, "kind", publisher.KindOf(err).String(), "error", err)
		content.Published = false
		content.PublishedAt = nil
		content.PublicationResponse = "Error: " + err.Error()
		return p.save(ctx, content)
	}

	now := p.now()
	content.Published = true
	content.PublishedAt = &now
	content.PublicationResponse = res.String()

	if m != nil && len(m.voice) > 0 {
		if vp, ok := pub.(publisher.VoicePublisher); ok {
			if _, err := vp.PublishVoice(ctx, "", m.voice); err != nil {
				slog.Warn("voice message failed", "content_id", content.ID, "channel", ch, "error", err)
			}
		}
	}

	slog.Info("content published", "content_id", content.ID, "channel", ch)
	return p.save(ctx, content)
}

func (p *pipeline) save(ctx context.Context, content *models.GeneratedContent) error {
	if err := p.cr.UpdatePublication(ctx, content); err != nil {
		return fmt.Errorf("saving publication result: %w", err)
	}
	return nil
}
