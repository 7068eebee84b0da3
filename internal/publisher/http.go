package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

type transport struct {
	platform string
	client   *http.Client
	timeout  time.Duration
}

func newTransport(platform string, client *http.Client, timeout time.Duration) transport {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return transport{platform: platform, client: client, timeout: timeout}
}

// do sends req and returns the status and body. Media uploads get twice
// the regular timeout.
func (t transport) do(ctx context.Context, req *http.Request, media bool) (int, []byte, error) {
	timeout := t.timeout
	if media {
		timeout *= 2
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, networkError(t.platform, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, networkError(t.platform, err)
	}
	return resp.StatusCode, body, nil
}

func (t transport) postJSON(ctx context.Context, endpoint string, payload any, header http.Header) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Platform: t.platform, Message: err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Platform: t.platform, Message: err.Error(), Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(ctx, req, false)
}

func (t transport) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Platform: t.platform, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.do(ctx, req, false)
}

type filePart struct {
	field    string
	name     string
	mimeType string
	data     io.Reader
}

func (t transport) postMultipart(ctx context.Context, endpoint string, fields map[string]string, file filePart) (int, []byte, error) {
	body, contentType, err := multipartBody(fields, file)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Platform: t.platform, Message: err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnknown, Platform: t.platform, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	return t.do(ctx, req, true)
}

func multipartBody(fields map[string]string, file filePart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
	h.Set("Content-Type", file.mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file.data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// result turns a 200 or 201 response into a Result and anything else into
// an *Error.
func (t transport) result(status int, body []byte) (*Result, error) {
	raw := rawBody(body)
	if status == http.StatusOK || status == http.StatusCreated {
		return &Result{Platform: t.platform, Status: status, Response: raw}, nil
	}
	kind, message := describeFailure(status, body)
	return nil, &Error{Kind: kind, Platform: t.platform, Status: status, Message: message, Response: raw}
}

type graphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
	Message string `json:"message"`
}

// Graph API error codes that signal throttling or an invalid token.
var (
	graphRateLimitCodes = map[int]bool{4: true, 17: true, 32: true, 613: true}
	graphAuthCodes      = map[int]bool{102: true, 190: true}
)

func describeFailure(status int, body []byte) (ErrorKind, string) {
	kind := kindForStatus(status)
	message := fmt.Sprintf("unexpected status code %d", status)

	var ge graphErrorResponse
	if err := json.Unmarshal(body, &ge); err == nil {
		switch {
		case ge.Error.Message != "":
			message = ge.Error.Message
		case ge.Message != "":
			message = ge.Message
		}
		switch {
		case graphRateLimitCodes[ge.Error.Code]:
			kind = KindRateLimited
		case graphAuthCodes[ge.Error.Code]:
			kind = KindAuth
		}
	}
	return kind, message
}

// rawBody keeps JSON bodies verbatim and quotes anything else.
func rawBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}
