package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/scheduler"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleFixture(schedules ...*models.Schedule) (*scheduleService, *fakeScheduleRepo, *fakeRunner) {
	sr := newFakeScheduleRepo(schedules...)
	runner := &fakeRunner{}
	svc := NewScheduleService(testConfig(), sr, newFakeUserRepo(telegramUser(1)), runner).(*scheduleService)
	return svc, sr, runner
}

func boolPtr(b bool) *bool { return &b }

func TestCreateSchedule(t *testing.T) {
	svc, sr, _ := newScheduleFixture()

	s, warning, err := svc.Create(context.Background(), 1, &transfer.ScheduleInput{
		CronExpression:  "0  9 * * 1-5",
		Channel:         "Telegram",
		ContentTemplate: " Morgenimpuls ",
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, "0 9 * * 1-5", s.CronExpression)
	assert.Equal(t, "Europe/Berlin", s.Timezone)
	assert.Equal(t, "telegram", s.Channel)
	assert.Equal(t, "post", s.ContentType)
	assert.Equal(t, "Morgenimpuls", s.ContentTemplate)
	assert.True(t, s.Active)

	stored, _ := sr.GetByID(context.Background(), s.ID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.UserID)
}

func TestCreateScheduleWarnsForUnconfiguredChannel(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	_, warning, err := svc.Create(context.Background(), 1, &transfer.ScheduleInput{
		CronExpression:  "0 9 * * *",
		Channel:         "instagram",
		ContentTemplate: "Produktfoto",
	})
	require.NoError(t, err)
	assert.Equal(t, "Warnung: Instagram ist nicht konfiguriert. Content wird generiert, aber nicht automatisch veröffentlicht.", warning)
}

func TestCreateScheduleValidation(t *testing.T) {
	svc, sr, _ := newScheduleFixture()

	cases := []transfer.ScheduleInput{
		{CronExpression: "0 9 * *", Channel: "telegram", ContentTemplate: "x"},
		{CronExpression: "61 9 * * *", Channel: "telegram", ContentTemplate: "x"},
		{CronExpression: "0 9 * * *", Channel: "telegram", ContentTemplate: ""},
		{CronExpression: "0 9 * * *", Channel: "xing", ContentTemplate: "x"},
		{CronExpression: "0 9 * * *", Channel: "telegram", ContentTemplate: "x", Timezone: "Mars/Olympus"},
		{CronExpression: "0 9 * * *", Channel: "telegram", ContentTemplate: "x", ContentType: "carousel"},
	}
	for i, in := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), 1, &in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, sr.schedules)
}

func TestUpdateScheduleKeepsActiveWhenOmitted(t *testing.T) {
	existing := dailySchedule(7, 1, "telegram")
	existing.Active = false
	svc, sr, _ := newScheduleFixture(existing)

	s, err := svc.Update(context.Background(), 1, 7, &transfer.ScheduleInput{
		CronExpression:  "*/30 * * * *",
		Timezone:        "UTC",
		Channel:         "facebook",
		ContentTemplate: "Neu",
	})
	require.NoError(t, err)
	assert.False(t, s.Active)

	stored, _ := sr.GetByID(context.Background(), 7)
	assert.Equal(t, "*/30 * * * *", stored.CronExpression)
	assert.Equal(t, "UTC", stored.Timezone)
	assert.Equal(t, "facebook", stored.Channel)

	s, err = svc.Update(context.Background(), 1, 7, &transfer.ScheduleInput{
		CronExpression:  "0 9 * * *",
		Channel:         "telegram",
		ContentTemplate: "Neu",
		Active:          boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, s.Active)
}

func TestScheduleOwnership(t *testing.T) {
	svc, _, _ := newScheduleFixture(dailySchedule(7, 2, "telegram"))

	_, err := svc.Toggle(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Remove(context.Background(), 1, 7), ErrNotFound)
	assert.ErrorIs(t, svc.RunNow(context.Background(), 1, 7), ErrNotFound)
	_, err = svc.Update(context.Background(), 1, 7, &transfer.ScheduleInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleAndRemove(t *testing.T) {
	svc, sr, _ := newScheduleFixture(dailySchedule(7, 1, "telegram"))

	s, err := svc.Toggle(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, s.Active)
	stored, _ := sr.GetByID(context.Background(), 7)
	assert.False(t, stored.Active)

	require.NoError(t, svc.Remove(context.Background(), 1, 7))
	stored, _ = sr.GetByID(context.Background(), 7)
	assert.Nil(t, stored)
}

func TestListSchedulesNeverNil(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	list, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRunNow(t *testing.T) {
	svc, _, runner := newScheduleFixture(dailySchedule(7, 1, "telegram"))

	require.NoError(t, svc.RunNow(context.Background(), 1, 7))
	assert.Equal(t, []string{"schedule_7"}, runner.ran)
}

func TestRunNowRefusals(t *testing.T) {
	inactive := dailySchedule(8, 1, "telegram")
	inactive.Active = false
	svc, _, runner := newScheduleFixture(dailySchedule(7, 1, "linkedin"), inactive, dailySchedule(9, 1, "telegram"))

	assert.ErrorIs(t, svc.RunNow(context.Background(), 1, 7), publisher.ErrNotConfigured)
	assert.ErrorIs(t, svc.RunNow(context.Background(), 1, 8), ErrInvalidInput)

	runner.err = fmt.Errorf("%w: schedule_9", scheduler.ErrJobNotFound)
	assert.ErrorIs(t, svc.RunNow(context.Background(), 1, 9), ErrNotScheduled)
	assert.Empty(t, runner.ran)
}

func TestValidateCron(t *testing.T) {
	svc, _, _ := newScheduleFixture()
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	v := svc.ValidateCron("0 9 * * *", "")
	require.True(t, v.Valid)
	assert.Equal(t, []string{"16.03.2024 09:00", "17.03.2024 09:00", "18.03.2024 09:00"}, v.NextRuns)

	v = svc.ValidateCron("0 9 * * 1-5", "UTC")
	require.True(t, v.Valid)
	assert.Equal(t, []string{"18.03.2024 09:00", "19.03.2024 09:00", "20.03.2024 09:00"}, v.NextRuns)

	v = svc.ValidateCron("0 25 * * *", "")
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Error)

	v = svc.ValidateCron("0 9 * * *", "Nowhere/City")
	assert.False(t, v.Valid)
	assert.Contains(t, v.Error, "unknown timezone")
}

func TestCronExamplesAreValid(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	examples := svc.CronExamples()
	require.Len(t, examples, 6)
	for _, ex := range examples {
		assert.True(t, svc.ValidateCron(ex.Expression, "").Valid, ex.Expression)
		assert.NotEmpty(t, ex.Description)
	}
}
