package model

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_BuildPayload(t *testing.T) {
	task := &Task{
		ID:      7,
		Title:   "Fresh digest",
		Message: "Three new articles",
	}

	p := task.BuildPayload("/static/push/img/icon.png")

	assert.Equal(t, "Fresh digest", p.Title)
	assert.Equal(t, "Three new articles", p.Message)
	assert.Equal(t, "/static/push/img/icon.png", p.Icon)
	assert.Equal(t, NotificationTag, p.Tag)
	assert.Equal(t, "/push/show_notification/7/", p.URL)
	assert.Equal(t, "/push/notification_plus_one/views/7/", p.ViewsStatURL)
	assert.Equal(t, "/push/notification_plus_one/closings/7/", p.ClosingsStatURL)
	assert.Empty(t, p.Image)

	task.ImageURL = "https://cdn.example.com/big.png"
	assert.Equal(t, "https://cdn.example.com/big.png", task.BuildPayload("icon").Image)
}

func TestTask_RelativeURL(t *testing.T) {
	task := &Task{URL: "https://example.com/news/42?utm_source=push"}

	t.Run("strips scheme and host", func(t *testing.T) {
		got, err := task.RelativeURL(nil)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "/news/42"), got)
		assert.NotContains(t, got, "example.com")
	})

	t.Run("merges extra params, existing win", func(t *testing.T) {
		got, err := task.RelativeURL(url.Values{
			"utm_source": {"override"},
			"utm_medium": {"webpush"},
		})
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "push", q.Get("utm_source"), "existing param must survive")
		assert.Equal(t, "webpush", q.Get("utm_medium"))
	})
}

func TestParseTaskCounter(t *testing.T) {
	for _, name := range []string{"views", "clicks", "closings", " Views "} {
		c, ok := ParseTaskCounter(name)
		assert.True(t, ok, name)
		assert.True(t, c.Valid())
	}

	for _, name := range []string{"", "likes", "views; DROP TABLE tasks"} {
		_, ok := ParseTaskCounter(name)
		assert.False(t, ok, name)
	}
}

func TestTask_Validate(t *testing.T) {
	valid := &Task{
		Title:   "Title",
		Message: "Message",
		URL:     "https://example.com/x",
		RunAt:   time.Now(),
	}
	assert.NoError(t, valid.Validate())

	tooLong := *valid
	tooLong.Title = strings.Repeat("x", maxTaskTitleLen+1)
	assert.Error(t, tooLong.Validate())

	relative := *valid
	relative.URL = "/news/1"
	assert.Error(t, relative.Validate(), "url must be absolute")
}

func TestTask_Lifecycle(t *testing.T) {
	task := &Task{}
	assert.False(t, task.IsStarted())
	assert.False(t, task.IsDone())

	now := time.Now()
	task.StartedAt = &now
	assert.True(t, task.IsStarted())

	task.DoneAt = &now
	assert.True(t, task.IsDone())
}
