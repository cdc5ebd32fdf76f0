package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/content-relay/internal/relay"
)

func samplePayload() relay.NotificationPayload {
	return relay.NotificationPayload{
		SourceURL: "https://news.example/post",
		Title:     "Hi",
		Content:   "Hello World",
		Timestamp: "2025-05-06T10:30:00.000Z",
	}
}

func TestNotifier_NotifyPostsJSON(t *testing.T) {
	t.Parallel()

	type captured struct {
		method      string
		contentType string
		body        []byte
	}
	got := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- captured{method: r.Method, contentType: r.Header.Get("Content-Type"), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, WithTimeout(time.Second))
	require.Equal(t, srv.URL, n.Destination())
	require.NoError(t, n.Notify(context.Background(), samplePayload()))

	req := <-got
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "application/json", req.contentType)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(req.body, &decoded))
	require.Equal(t, map[string]string{
		"sourceUrl": "https://news.example/post",
		"title":     "Hi",
		"content":   "Hello World",
		"timestamp": "2025-05-06T10:30:00.000Z",
	}, decoded)
}

func TestNotifier_NotifyRejectedCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("scenario disabled"))
	}))
	defer srv.Close()

	err := New(srv.URL).Notify(context.Background(), samplePayload())

	var notifyErr *relay.NotificationError
	require.ErrorAs(t, err, &notifyErr)
	require.Equal(t, relay.NotificationStatus, notifyErr.Kind)
	require.False(t, notifyErr.Network())
	require.Equal(t, http.StatusInternalServerError, notifyErr.StatusCode)
	require.Equal(t, "scenario disabled", notifyErr.Body)
}

func TestNotifier_NotifyUnreadableBodyKeepsStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("hijacking not supported")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Error(err)
			return
		}
		_, _ = buf.WriteString("HTTP/1.1 502 Bad Gateway\r\nContent-Length: 100\r\n\r\npartial")
		_ = buf.Flush()
		_ = conn.Close()
	}))
	defer srv.Close()

	err := New(srv.URL).Notify(context.Background(), samplePayload())

	var notifyErr *relay.NotificationError
	require.ErrorAs(t, err, &notifyErr)
	require.Equal(t, relay.NotificationStatus, notifyErr.Kind)
	require.Equal(t, http.StatusBadGateway, notifyErr.StatusCode)
	require.Equal(t, UnreadableBody, notifyErr.Body)
}

func TestNotifier_NotifyUnreachableIsNetwork(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := New(addr, WithTimeout(time.Second)).Notify(context.Background(), samplePayload())

	var notifyErr *relay.NotificationError
	require.ErrorAs(t, err, &notifyErr)
	require.True(t, notifyErr.Network())
	require.Zero(t, notifyErr.StatusCode)
}

func TestNotifier_NotifyInvalidDestination(t *testing.T) {
	t.Parallel()

	err := New("://nowhere").Notify(context.Background(), samplePayload())

	var notifyErr *relay.NotificationError
	require.ErrorAs(t, err, &notifyErr)
	require.True(t, notifyErr.Network())
}

func TestNotifier_WithHTTPClient(t *testing.T) {
	t.Parallel()

	client := &http.Client{Timeout: 3 * time.Second}
	n := New("http://example.invalid", WithHTTPClient(client))
	require.Same(t, client, n.client)
}
