package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slackServer(t *testing.T, ok bool) (*httptest.Server, *url.Values) {
	t.Helper()

	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		if ok {
			w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1725400000.000100"}`))
		} else {
			w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, &form
}

func TestNotify(t *testing.T) {
	srv, form := slackServer(t, true)

	api := slack.New("xoxb-test", slack.OptionAPIURL(srv.URL+"/"))
	n := newNotifier(api, "C123")

	require.NoError(t, n.Notify(context.Background(), "village: 1 dish"))
	assert.Equal(t, "C123", form.Get("channel"))
	assert.Equal(t, "village: 1 dish", form.Get("text"))
}

func TestNotifyError(t *testing.T) {
	srv, _ := slackServer(t, false)

	api := slack.New("xoxb-test", slack.OptionAPIURL(srv.URL+"/"))
	n := newNotifier(api, "C404")

	err := n.Notify(context.Background(), "village: 1 dish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
