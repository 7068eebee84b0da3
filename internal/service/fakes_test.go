package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() config.Config {
	return config.Config{
		SecretKey: testSecret,
		Scheduler: config.Scheduler{Timezone: "Europe/Berlin"},
	}
}

func mustEncrypt(s string) string {
	enc, err := utils.EncryptSecret(s, testSecret)
	if err != nil {
		panic(err)
	}
	return enc
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]*models.User{}, nextID: 100}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	copied := *u
	return &copied, true, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *user
	copied.ID = r.nextID
	r.users[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeUserRepo) UpdateChannelCredentials(ctx context.Context, user *models.User) error {
	return r.put(user)
}

func (r *fakeUserRepo) UpdateAISettings(ctx context.Context, user *models.User) error {
	return r.put(user)
}

func (r *fakeUserRepo) put(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[int64]*models.Schedule
	lastRuns  map[int64]time.Time
	nextID    int64
}

func newFakeScheduleRepo(schedules ...*models.Schedule) *fakeScheduleRepo {
	r := &fakeScheduleRepo{schedules: map[int64]*models.Schedule{}, lastRuns: map[int64]time.Time{}, nextID: 10}
	for _, s := range schedules {
		r.schedules[s.ID] = s
	}
	return r
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScheduleRepo) ListActive(ctx context.Context) ([]*models.Schedule, error) {
	return r.filter(func(s *models.Schedule) bool { return s.Active }), nil
}

func (r *fakeScheduleRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	return r.filter(func(s *models.Schedule) bool { return s.UserID == userID }), nil
}

func (r *fakeScheduleRepo) filter(keep func(*models.Schedule) bool) []*models.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Schedule
	for _, s := range r.schedules {
		if keep(s) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *models.Schedule) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *s
	copied.ID = r.nextID
	r.schedules[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, s *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.schedules[s.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schedules[id]; ok {
		s.Active = active
	}
	return nil
}

func (r *fakeScheduleRepo) UpdateNextRun(ctx context.Context, id int64, nextRun time.Time) error {
	return nil
}

func (r *fakeScheduleRepo) UpdateLastRun(ctx context.Context, id int64, lastRun time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRuns[id] = lastRun
	return nil
}

func (r *fakeScheduleRepo) CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleID]
	return ok && s.UserID == userID, nil
}

func (r *fakeScheduleRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, id)
	return nil
}

type fakeContentRepo struct {
	mu       sync.Mutex
	contents map[int64]*models.GeneratedContent
	nextID   int64
}

func newFakeContentRepo(contents ...*models.GeneratedContent) *fakeContentRepo {
	r := &fakeContentRepo{contents: map[int64]*models.GeneratedContent{}, nextID: 1000}
	for _, c := range contents {
		r.contents[c.ID] = c
	}
	return r
}

func (r *fakeContentRepo) all() []*models.GeneratedContent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GeneratedContent
	for _, c := range r.contents {
		copied := *c
		out = append(out, &copied)
	}
	return out
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeContentRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.GeneratedContent, error) {
	var out []*models.GeneratedContent
	for _, c := range r.all() {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeContentRepo) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for _, c := range r.all() {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeContentRepo) Create(ctx context.Context, c *models.GeneratedContent) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	copied := *c
	r.contents[c.ID] = &copied
	return c.ID, nil
}

func (r *fakeContentRepo) UpdatePublication(ctx context.Context, c *models.GeneratedContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contents[c.ID]
	if !ok {
		return errors.New("no such content")
	}
	stored.Channel = c.Channel
	stored.Published = c.Published
	stored.PublishedAt = c.PublishedAt
	stored.PublicationResponse = c.PublicationResponse
	return nil
}

func (r *fakeContentRepo) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[contentID]
	return ok && c.UserID == userID, nil
}

type fakeGenerator struct {
	text      string
	textErr   error
	image     []byte
	imageErr  error
	voice     []byte
	voiceErr  error
	apiKeys   []string
	prompts   []string
	textCalls int
}

func (g *fakeGenerator) GenerateText(ctx context.Context, topic, channel, systemPrompt, apiKey string) (string, error) {
	g.textCalls++
	g.apiKeys = append(g.apiKeys, apiKey)
	g.prompts = append(g.prompts, systemPrompt)
	if g.textErr != nil {
		return "", g.textErr
	}
	return g.text, nil
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, topic, channel, apiKey string) ([]byte, error) {
	return g.image, g.imageErr
}

func (g *fakeGenerator) GenerateSpeech(ctx context.Context, text, apiKey string) ([]byte, error) {
	return g.voice, g.voiceErr
}

type fakePublisher struct {
	channel publisher.Channel
	err     error
	texts   []string
	images  []publisher.Image
	voices  int
	testErr error
}

func (p *fakePublisher) Channel() publisher.Channel { return p.channel }

func (p *fakePublisher) PublishText(ctx context.Context, contentType publisher.ContentType, text string) (*publisher.Result, error) {
	p.texts = append(p.texts, text)
	return p.result()
}

func (p *fakePublisher) PublishImage(ctx context.Context, contentType publisher.ContentType, image publisher.Image) (*publisher.Result, error) {
	p.images = append(p.images, image)
	return p.result()
}

func (p *fakePublisher) PublishVideo(ctx context.Context, contentType publisher.ContentType, video publisher.Video) (*publisher.Result, error) {
	return p.result()
}

func (p *fakePublisher) PublishVoice(ctx context.Context, caption string, audio []byte) (*publisher.Result, error) {
	p.voices++
	return p.result()
}

func (p *fakePublisher) TestConnection(ctx context.Context) (*publisher.Result, error) {
	if p.testErr != nil {
		return nil, p.testErr
	}
	return &publisher.Result{Platform: "Telegram", Status: 200, Response: json.RawMessage(`{"ok":true,"result":{"username":"demo_bot"}}`)}, nil
}

func (p *fakePublisher) result() (*publisher.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &publisher.Result{Platform: p.channel.Title(), Status: 200, Response: json.RawMessage(`{"ok":true}`)}, nil
}

// registryWith returns a real registry whose factories hand out pub.
func registryWith(pub *fakePublisher) *publisher.Registry {
	reg := publisher.NewRegistry()
	for _, ch := range publisher.Channels() {
		reg.Register(ch, func(creds publisher.Credentials) (publisher.Publisher, error) {
			pub.channel = ch
			return pub, nil
		})
	}
	return reg
}

type fakeMediaStore struct {
	uploads int
	err     error
}

func (m *fakeMediaStore) Upload(ctx context.Context, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads++
	return "https://media.example.com/object.png", nil
}

type fakeRunner struct {
	ran []string
	err error
}

func (r *fakeRunner) RunNow(id string) error {
	if r.err != nil {
		return r.err
	}
	r.ran = append(r.ran, id)
	return nil
}

type fakeKeyRepo struct {
	keys   map[int64]*models.ApiKey
	nextID int64
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: map[int64]*models.ApiKey{}}
}

func (r *fakeKeyRepo) GetByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	for _, k := range r.keys {
		if k.ApiKey == key {
			return k, nil
		}
	}
	return nil, nil
}

func (r *fakeKeyRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	out := []*models.ApiKey{}
	for id := int64(1); id <= r.nextID; id++ {
		if k, ok := r.keys[id]; ok && k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeyRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	keys, _ := r.ListByUserID(ctx, userID)
	return len(keys), nil
}

func (r *fakeKeyRepo) Create(ctx context.Context, apiKey *models.ApiKey) error {
	r.nextID++
	apiKey.ID = r.nextID
	apiKey.CreatedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	copied := *apiKey
	r.keys[copied.ID] = &copied
	return nil
}

func (r *fakeKeyRepo) RemoveOwned(ctx context.Context, keyID, userID int64) (bool, error) {
	k, ok := r.keys[keyID]
	if !ok || k.UserID != userID {
		return false, nil
	}
	delete(r.keys, keyID)
	return true, nil
}
