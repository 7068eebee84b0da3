package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const instagramCaptionLimit = 2200

type InstagramConfig struct {
	AccessToken string
	BusinessID  string
	BaseURL     string
	Timeout     time.Duration
}

// InstagramPublisher publishes through the Graph API content publishing
// flow: create a media container from a public URL, then publish it.
type InstagramPublisher struct {
	token      string
	businessID string
	baseURL    string
	t          transport
}

var _ Publisher = (*InstagramPublisher)(nil)

func NewInstagramPublisher(cfg InstagramConfig, client *http.Client) (*InstagramPublisher, error) {
	if cfg.AccessToken == "" || cfg.BusinessID == "" {
		return nil, fmt.Errorf("%w: instagram needs an access token and a business account id", ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GraphAPIURL
	}
	return &InstagramPublisher{
		token:      cfg.AccessToken,
		businessID: cfg.BusinessID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		t:          newTransport(Instagram.Title(), client, cfg.Timeout),
	}, nil
}

func (p *InstagramPublisher) Channel() Channel {
	return Instagram
}

func (p *InstagramPublisher) PublishText(ctx context.Context, contentType ContentType, text string) (*Result, error) {
	return nil, unsupported(p.t.platform, "Instagram requires an image or video, text-only posts are not supported")
}

func (p *InstagramPublisher) PublishImage(ctx context.Context, contentType ContentType, image Image) (*Result, error) {
	if image.URL == "" {
		return nil, unsupported(p.t.platform, "Instagram requires a publicly reachable image URL")
	}

	form := url.Values{}
	form.Set("image_url", image.URL)
	form.Set("access_token", p.token)
	if contentType == Story {
		form.Set("media_type", "STORIES")
	} else {
		form.Set("caption", truncate(image.Caption, instagramCaptionLimit))
	}

	status, body, err := p.t.postForm(ctx, fmt.Sprintf("%s/%s/media", p.baseURL, p.businessID), form)
	if err != nil {
		return nil, err
	}
	if _, err := p.t.result(status, body); err != nil {
		return nil, err
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &container); err != nil || container.ID == "" {
		return nil, &Error{
			Kind:     KindUnknown,
			Platform: p.t.platform,
			Status:   status,
			Message:  "media container id missing from response",
			Response: rawBody(body),
		}
	}

	form = url.Values{}
	form.Set("creation_id", container.ID)
	form.Set("access_token", p.token)

	status, body, err = p.t.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.businessID), form)
	if err != nil {
		return nil, err
	}
	return p.t.result(status, body)
}

func (p *InstagramPublisher) PublishVideo(ctx context.Context, contentType ContentType, video Video) (*Result, error) {
	return nil, unsupported(p.t.platform, "video publishing is not supported for Instagram")
}
