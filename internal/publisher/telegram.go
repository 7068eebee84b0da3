package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

const (
	TelegramAPIURL = "https://api.telegram.org"

	telegramMessageLimit = 4096
	telegramCaptionLimit = 1024
)

type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Timeout  time.Duration
}

type TelegramPublisher struct {
	token   string
	chatID  string
	baseURL string
	t       transport
}

var (
	_ Publisher        = (*TelegramPublisher)(nil)
	_ VoicePublisher   = (*TelegramPublisher)(nil)
	_ ConnectionTester = (*TelegramPublisher)(nil)
)

func NewTelegramPublisher(cfg TelegramConfig, client *http.Client) (*TelegramPublisher, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("%w: telegram needs a bot token and a chat id", ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TelegramAPIURL
	}
	return &TelegramPublisher{
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: strings.TrimRight(baseURL, "/"),
		t:       newTransport(Telegram.Title(), client, cfg.Timeout),
	}, nil
}

func (p *TelegramPublisher) Channel() Channel {
	return Telegram
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (p *TelegramPublisher) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", p.baseURL, p.token, method)
}

// check interprets a Bot API reply, which reports failures in the body.
func (p *TelegramPublisher) check(status int, body []byte, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}

	var tr telegramResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &Error{
			Kind:     KindUnknown,
			Platform: p.t.platform,
			Status:   status,
			Message:  fmt.Sprintf("malformed response: %v", err),
			Response: rawBody(body),
		}
	}
	if !tr.OK {
		code := tr.ErrorCode
		if code == 0 {
			code = status
		}
		message := tr.Description
		if message == "" {
			message = fmt.Sprintf("unexpected status code %d", status)
		}
		return nil, &Error{
			Kind:     kindForStatus(code),
			Platform: p.t.platform,
			Status:   status,
			Message:  message,
			Response: rawBody(body),
		}
	}
	return &Result{Platform: p.t.platform, Status: status, Response: rawBody(body)}, nil
}

func (p *TelegramPublisher) PublishText(ctx context.Context, contentType ContentType, text string) (*Result, error) {
	payload := map[string]any{
		"chat_id":                  p.chatID,
		"text":                     truncate(text, telegramMessageLimit),
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}
	return p.check(p.t.postJSON(ctx, p.endpoint("sendMessage"), payload, nil))
}

func (p *TelegramPublisher) PublishImage(ctx context.Context, contentType ContentType, image Image) (*Result, error) {
	caption := truncate(image.Caption, telegramCaptionLimit)

	if len(image.Data) == 0 {
		if image.URL == "" {
			return nil, unsupported(p.t.platform, "image data or URL required")
		}
		payload := map[string]any{
			"chat_id":    p.chatID,
			"photo":      image.URL,
			"caption":    caption,
			"parse_mode": "HTML",
		}
		return p.check(p.t.postJSON(ctx, p.endpoint("sendPhoto"), payload, nil))
	}

	name, mimeType := "image.png", "image/png"
	if kind, err := filetype.Image(image.Data); err == nil && kind != filetype.Unknown {
		name, mimeType = "image."+kind.Extension, kind.MIME.Value
	}

	fields := map[string]string{"chat_id": p.chatID, "caption": caption, "parse_mode": "HTML"}
	file := filePart{field: "photo", name: name, mimeType: mimeType, data: bytes.NewReader(image.Data)}
	return p.check(p.t.postMultipart(ctx, p.endpoint("sendPhoto"), fields, file))
}

func (p *TelegramPublisher) PublishVideo(ctx context.Context, contentType ContentType, video Video) (*Result, error) {
	f, err := os.Open(video.Path)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Platform: p.t.platform, Message: fmt.Sprintf("cannot open video: %v", err), Err: err}
	}
	defer f.Close()

	fields := map[string]string{
		"chat_id":    p.chatID,
		"caption":    truncate(video.Caption, telegramCaptionLimit),
		"parse_mode": "HTML",
	}
	file := filePart{field: "video", name: filepath.Base(video.Path), mimeType: "video/mp4", data: f}
	return p.check(p.t.postMultipart(ctx, p.endpoint("sendVideo"), fields, file))
}

func (p *TelegramPublisher) PublishVoice(ctx context.Context, caption string, audio []byte) (*Result, error) {
	fields := map[string]string{"chat_id": p.chatID}
	if caption != "" {
		fields["caption"] = truncate(caption, telegramCaptionLimit)
	}
	file := filePart{field: "voice", name: "voice.mp3", mimeType: "audio/mpeg", data: bytes.NewReader(audio)}
	return p.check(p.t.postMultipart(ctx, p.endpoint("sendVoice"), fields, file))
}

// TestConnection calls getMe to verify the bot token.
func (p *TelegramPublisher) TestConnection(ctx context.Context) (*Result, error) {
	return p.check(p.t.postJSON(ctx, p.endpoint("getMe"), map[string]any{}, nil))
}

// BotUsername extracts the username from a getMe result.
func BotUsername(res *Result) string {
	var body struct {
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
	}
	if res == nil || json.Unmarshal(res.Response, &body) != nil {
		return ""
	}
	return body.Result.Username
}
