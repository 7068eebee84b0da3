// Package publisher delivers generated content to social channels.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Channel string

const (
	Telegram  Channel = "telegram"
	LinkedIn  Channel = "linkedin"
	Facebook  Channel = "facebook"
	Instagram Channel = "instagram"
)

var channelTitles = map[Channel]string{
	Telegram:  "Telegram",
	LinkedIn:  "LinkedIn",
	Facebook:  "Facebook",
	Instagram: "Instagram",
}

// Channels lists every supported channel in display order.
func Channels() []Channel {
	return []Channel{Telegram, LinkedIn, Facebook, Instagram}
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := channelTitles[c]; !ok {
		return "", fmt.Errorf("unknown channel %q", s)
	}
	return c, nil
}

func (c Channel) Title() string {
	if title, ok := channelTitles[c]; ok {
		return title
	}
	return string(c)
}

type ContentType string

const (
	Post  ContentType = "post"
	Story ContentType = "story"
	Reel  ContentType = "reel"
)

// ParseContentType defaults to Post for an empty value.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Post:
		return Post, nil
	case Story:
		return Story, nil
	case Reel:
		return Reel, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// Request is one of Text, Image or Video.
type Request interface {
	isRequest()
}

type Text struct {
	Body string
}

// Image carries raw bytes, a publicly reachable URL, or both.
type Image struct {
	Caption string
	Data    []byte
	URL     string
}

type Video struct {
	Caption string
	Path    string
}

func (Text) isRequest()  {}
func (Image) isRequest() {}
func (Video) isRequest() {}

// NewRequest picks the request kind for a piece of content: an image wins
// over a video, which wins over plain text.
func NewRequest(text string, image *Image, videoPath string) Request {
	if image != nil && (len(image.Data) > 0 || image.URL != "") {
		img := *image
		img.Caption = text
		return img
	}
	if videoPath != "" {
		return Video{Caption: text, Path: videoPath}
	}
	return Text{Body: text}
}

// Result is a successful delivery. Response holds the platform's payload.
type Result struct {
	Platform string          `json:"platform"`
	Status   int             `json:"status,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

func (r *Result) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.Platform
	}
	return string(b)
}

type Publisher interface {
	Channel() Channel
	PublishText(ctx context.Context, contentType ContentType, text string) (*Result, error)
	PublishImage(ctx context.Context, contentType ContentType, image Image) (*Result, error)
	PublishVideo(ctx context.Context, contentType ContentType, video Video) (*Result, error)
}

// VoicePublisher is implemented by channels that accept audio messages.
type VoicePublisher interface {
	PublishVoice(ctx context.Context, caption string, audio []byte) (*Result, error)
}

// ConnectionTester is implemented by channels that can verify credentials
// without posting.
type ConnectionTester interface {
	TestConnection(ctx context.Context) (*Result, error)
}

// Publish dispatches req to the matching method of p. Panics inside p are
// reported as errors.
func Publish(ctx context.Context, p Publisher, contentType ContentType, req Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &Error{Kind: KindUnknown, Platform: p.Channel().Title(), Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	switch r := req.(type) {
	case Image:
		return p.PublishImage(ctx, contentType, r)
	case Video:
		return p.PublishVideo(ctx, contentType, r)
	case Text:
		return p.PublishText(ctx, contentType, r.Body)
	default:
		return nil, &Error{Kind: KindUnknown, Platform: p.Channel().Title(), Message: fmt.Sprintf("unsupported request %T", req)}
	}
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
