package publisher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

const GraphAPIURL = "https://graph.facebook.com/v20.0"

type FacebookConfig struct {
	AccessToken string
	PageID      string
	BaseURL     string
	Timeout     time.Duration
}

type FacebookPublisher struct {
	token   string
	pageID  string
	baseURL string
	t       transport
}

var _ Publisher = (*FacebookPublisher)(nil)

func NewFacebookPublisher(cfg FacebookConfig, client *http.Client) (*FacebookPublisher, error) {
	if cfg.AccessToken == "" || cfg.PageID == "" {
		return nil, fmt.Errorf("%w: facebook needs a page access token and a page id", ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GraphAPIURL
	}
	return &FacebookPublisher{
		token:   cfg.AccessToken,
		pageID:  cfg.PageID,
		baseURL: strings.TrimRight(baseURL, "/"),
		t:       newTransport(Facebook.Title(), client, cfg.Timeout),
	}, nil
}

func (p *FacebookPublisher) Channel() Channel {
	return Facebook
}

func (p *FacebookPublisher) PublishText(ctx context.Context, contentType ContentType, text string) (*Result, error) {
	form := url.Values{}
	form.Set("message", text)
	form.Set("access_token", p.token)

	status, body, err := p.t.postForm(ctx, fmt.Sprintf("%s/%s/feed", p.baseURL, p.pageID), form)
	if err != nil {
		return nil, err
	}
	return p.t.result(status, body)
}

func (p *FacebookPublisher) PublishImage(ctx context.Context, contentType ContentType, image Image) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%s/photos", p.baseURL, p.pageID)

	if len(image.Data) == 0 {
		if image.URL == "" {
			return nil, unsupported(p.t.platform, "image data or URL required")
		}
		form := url.Values{}
		form.Set("url", image.URL)
		form.Set("caption", image.Caption)
		form.Set("access_token", p.token)
		status, body, err := p.t.postForm(ctx, endpoint, form)
		if err != nil {
			return nil, err
		}
		return p.t.result(status, body)
	}

	name, mimeType := "image.png", "image/png"
	if kind, err := filetype.Image(image.Data); err == nil && kind != filetype.Unknown {
		name, mimeType = "image."+kind.Extension, kind.MIME.Value
	}
	fields := map[string]string{"caption": image.Caption, "access_token": p.token}
	file := filePart{field: "source", name: name, mimeType: mimeType, data: bytes.NewReader(image.Data)}

	status, body, err := p.t.postMultipart(ctx, endpoint, fields, file)
	if err != nil {
		return nil, err
	}
	return p.t.result(status, body)
}

func (p *FacebookPublisher) PublishVideo(ctx context.Context, contentType ContentType, video Video) (*Result, error) {
	return nil, unsupported(p.t.platform, "video publishing is not supported for Facebook")
}
