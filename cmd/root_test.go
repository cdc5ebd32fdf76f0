package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/content-relay/internal/api"
	"github.com/JakeFAU/content-relay/internal/config"
	"github.com/JakeFAU/content-relay/internal/relay"
)

type fakeExtractor struct {
	content relay.ExtractedContent
	err     error
}

func (f fakeExtractor) Extract(context.Context, string) (relay.ExtractedContent, error) {
	return f.content, f.err
}

type fakeProcessor struct {
	result relay.Result
	err    error
}

func (f fakeProcessor) Process(context.Context, string) (relay.Result, error) {
	return f.result, f.err
}

type fakeApp struct {
	extractor fakeExtractor
	processor fakeProcessor
	runErr    error
	ran       bool
	closed    bool
}

func (a *fakeApp) Close() { a.closed = true }

func (a *fakeApp) Logger() *zap.Logger { return zap.NewNop() }

func (a *fakeApp) Extractor() relay.Extractor { return a.extractor }

func (a *fakeApp) Service() api.Processor { return a.processor }

func (a *fakeApp) Run(context.Context) error {
	a.ran = true
	return a.runErr
}

// withFakeApp swaps the factories for the duration of the test. Tests using it
// cannot run in parallel.
func withFakeApp(t *testing.T, app *fakeApp) {
	t.Helper()
	origApp, origLoad := newApp, loadConfig
	newApp = func(context.Context, config.Config) (App, error) { return app, nil }
	loadConfig = func(string) (config.Config, error) { return config.Config{}, nil }
	t.Cleanup(func() {
		newApp, loadConfig = origApp, origLoad
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtractCommand_PrintsContent(t *testing.T) {
	app := &fakeApp{extractor: fakeExtractor{content: relay.ExtractedContent{Title: "Hi", Content: "Hello World"}}}
	withFakeApp(t, app)

	out, err := execute(t, "extract", "https://news.example/a")
	require.NoError(t, err)

	var got relay.ExtractedContent
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, relay.ExtractedContent{Title: "Hi", Content: "Hello World"}, got)
	require.True(t, app.closed)
}

func TestExtractCommand_NotifyPrintsResult(t *testing.T) {
	app := &fakeApp{processor: fakeProcessor{result: relay.Result{
		ExtractedContent: relay.ExtractedContent{Title: "Hi", Content: "Hello World"},
		WebhookStatus:    relay.WebhookFailed,
		WebhookError:     "Webhook notification failed: down",
	}}}
	withFakeApp(t, app)

	out, err := execute(t, "extract", "--notify", "https://news.example/a")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "failed", got["webhook_status"])
	require.Equal(t, "Webhook notification failed: down", got["webhook_error"])
}

func TestExtractCommand_ExtractionFailure(t *testing.T) {
	fetchErr := &relay.FetchError{URL: "https://news.example/a", StatusCode: 404}
	withFakeApp(t, &fakeApp{extractor: fakeExtractor{err: fetchErr}})

	_, err := execute(t, "extract", "https://news.example/a")
	require.ErrorIs(t, err, fetchErr)
}

func TestExtractCommand_RequiresURL(t *testing.T) {
	withFakeApp(t, &fakeApp{})

	_, err := execute(t, "extract")
	require.Error(t, err)
}

func TestServeCommand_RunsApp(t *testing.T) {
	app := &fakeApp{}
	withFakeApp(t, app)

	_, err := execute(t, "serve")
	require.NoError(t, err)
	require.True(t, app.ran)
	require.True(t, app.closed)
}

func TestServeCommand_PropagatesRunError(t *testing.T) {
	withFakeApp(t, &fakeApp{runErr: errors.New("bind: address in use")})

	_, err := execute(t, "serve")
	require.ErrorContains(t, err, "address in use")
}

func TestRootCommand_ConfigErrorStopsBeforeBuild(t *testing.T) {
	origApp, origLoad := newApp, loadConfig
	t.Cleanup(func() { newApp, loadConfig = origApp, origLoad })
	built := false
	newApp = func(context.Context, config.Config) (App, error) {
		built = true
		return &fakeApp{}, nil
	}
	loadConfig = func(string) (config.Config, error) { return config.Config{}, errors.New("bad config") }

	_, err := execute(t, "serve")
	require.ErrorContains(t, err, "bad config")
	require.False(t, built)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RELAY_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("RELAY_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RELAY_TEST_DOTENV"))

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "loaded", os.Getenv("RELAY_TEST_DOTENV"))
}
