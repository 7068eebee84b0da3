package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	LinkedInAPIURL = "https://api.linkedin.com/v2"

	linkedInCommentaryLimit = 3000
)

type LinkedInConfig struct {
	AccessToken string
	AuthorURN   string
	BaseURL     string
	Timeout     time.Duration
}

type LinkedInPublisher struct {
	authorURN string
	baseURL   string
	t         transport
}

var _ Publisher = (*LinkedInPublisher)(nil)

// NewLinkedInPublisher authenticates requests with the member's bearer
// token through an oauth2 transport layered on client.
func NewLinkedInPublisher(cfg LinkedInConfig, client *http.Client) (*LinkedInPublisher, error) {
	if cfg.AccessToken == "" || cfg.AuthorURN == "" {
		return nil, fmt.Errorf("%w: linkedin needs an access token and an author urn", ErrNotConfigured)
	}
	if client == nil {
		client = &http.Client{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = LinkedInAPIURL
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.AccessToken,
		TokenType:   "Bearer",
	}))
	authed.Timeout = client.Timeout

	return &LinkedInPublisher{
		authorURN: cfg.AuthorURN,
		baseURL:   strings.TrimRight(baseURL, "/"),
		t:         newTransport(LinkedIn.Title(), authed, cfg.Timeout),
	}, nil
}

func (p *LinkedInPublisher) Channel() Channel {
	return LinkedIn
}

type ugcPost struct {
	Author          string             `json:"author"`
	LifecycleState  string             `json:"lifecycleState"`
	SpecificContent ugcSpecificContent `json:"specificContent"`
	Visibility      map[string]string  `json:"visibility"`
}

type ugcSpecificContent struct {
	ShareContent ugcShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText `json:"shareCommentary"`
	ShareMediaCategory string  `json:"shareMediaCategory"`
}

type ugcText struct {
	Text string `json:"text"`
}

func (p *LinkedInPublisher) PublishText(ctx context.Context, contentType ContentType, text string) (*Result, error) {
	payload := ugcPost{
		Author:         p.authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: ugcSpecificContent{
			ShareContent: ugcShareContent{
				ShareCommentary:    ugcText{Text: truncate(text, linkedInCommentaryLimit)},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	header := http.Header{}
	header.Set("X-Restli-Protocol-Version", "2.0.0")

	status, body, err := p.t.postJSON(ctx, p.baseURL+"/ugcPosts", payload, header)
	if err != nil {
		return nil, err
	}
	return p.t.result(status, body)
}

// PublishImage posts the caption only. Image shares need LinkedIn's asset
// registration flow.
func (p *LinkedInPublisher) PublishImage(ctx context.Context, contentType ContentType, image Image) (*Result, error) {
	slog.Warn("linkedin image upload is not supported, publishing caption only")
	return p.PublishText(ctx, contentType, image.Caption)
}

func (p *LinkedInPublisher) PublishVideo(ctx context.Context, contentType ContentType, video Video) (*Result, error) {
	return nil, unsupported(p.t.platform, "video publishing is not supported for LinkedIn")
}
