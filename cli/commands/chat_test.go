package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/petal-labs/mistral"
	"github.com/petal-labs/mistral/cli/config"
	"github.com/petal-labs/mistral/cli/keystore"
)

// memKeystore is an in-memory Keystore for tests.
type memKeystore struct {
	data map[string]string
}

func (m *memKeystore) Set(name, value string) error {
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[name] = value
	return nil
}

func (m *memKeystore) Get(name string) (string, error) {
	v, ok := m.data[name]
	if !ok {
		return "", &keystore.ErrKeyNotFound{Name: name}
	}
	return v, nil
}

func (m *memKeystore) Delete(name string) error {
	if _, ok := m.data[name]; !ok {
		return &keystore.ErrKeyNotFound{Name: name}
	}
	delete(m.data, name)
	return nil
}

func (m *memKeystore) List() ([]string, error) {
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	return names, nil
}

// newTestApp wires an App against a fake API server with captured output.
func newTestApp(t *testing.T, handler http.HandlerFunc) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	// Force the keystore path so a developer's real key never leaks in.
	t.Setenv(mistral.DefaultAPIKeyEnvVar, "")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(string) (*config.Config, error) {
			return &config.Config{DefaultModel: "mistral-small-latest"}, nil
		}),
		WithClientFactory(func(apiKey string, cfg *config.Config) *mistral.Client {
			return mistral.New(apiKey, mistral.WithBaseURL(server.URL))
		}),
		WithKeystoreFactory(func() (keystore.Keystore, error) {
			return &memKeystore{data: map[string]string{"default": "test-key"}}, nil
		}),
	)
	return app, &stdout, &stderr
}

func runApp(t *testing.T, app *App, args ...string) error {
	t.Helper()
	app.root.SetArgs(args)
	return app.Execute()
}

func TestChatCommand(t *testing.T) {
	app, stdout, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mistral.ChatResponse{
			Choices: []mistral.ChatChoice{
				{Message: mistral.Message{Role: mistral.RoleAssistant, Content: mistral.TextContent("Hello!")}},
			},
		})
	})

	if err := runApp(t, app, "chat", "--prompt", "Hi"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "Hello!") {
		t.Errorf("stdout = %q, want it to contain Hello!", stdout.String())
	}
}

func TestChatCommandJSON(t *testing.T) {
	app, stdout, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mistral.ChatResponse{
			ID: "cmp-1",
			Choices: []mistral.ChatChoice{
				{Message: mistral.Message{Role: mistral.RoleAssistant, Content: mistral.TextContent("Hi")}},
			},
			Usage: mistral.Usage{TotalTokens: 3},
		})
	})

	if err := runApp(t, app, "chat", "--prompt", "Hi", "--json"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var out struct {
		SessionID string `json:"session_id"`
		Output    string `json:"output"`
		Usage     struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if out.Output != "Hi" {
		t.Errorf("output = %q", out.Output)
	}
	if out.SessionID == "" {
		t.Error("session_id missing")
	}
	if out.Usage.TotalTokens != 3 {
		t.Errorf("total_tokens = %d", out.Usage.TotalTokens)
	}
}

func TestChatCommandStreaming(t *testing.T) {
	app, stdout, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"str\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"eam\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	if err := runApp(t, app, "chat", "--prompt", "Hi", "--stream"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "stream") {
		t.Errorf("stdout = %q, want streamed text", stdout.String())
	}
}

func TestChatCommandAPIError(t *testing.T) {
	app, _, stderr := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"object":"error","message":"invalid api key","type":"unauthorized"}`))
	})

	err := runApp(t, app, "chat", "--prompt", "Hi")
	if err == nil {
		t.Fatal("Execute() = nil error")
	}

	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatalf("error is %T, want *exitError", err)
	}
	if exitErr.ExitCode() != ExitAPI {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitAPI)
	}
	if !strings.Contains(stderr.String(), "invalid api key") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestChatCommandMissingKey(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(string) (*config.Config, error) {
			return &config.Config{DefaultModel: "mistral-small-latest"}, nil
		}),
		WithKeystoreFactory(func() (keystore.Keystore, error) {
			return &memKeystore{}, nil
		}),
	)
	t.Setenv(mistral.DefaultAPIKeyEnvVar, "")

	err := runApp(t, app, "chat", "--prompt", "Hi")
	if err == nil {
		t.Fatal("Execute() = nil error")
	}
	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatalf("error is %T, want *exitError", err)
	}
	if exitErr.ExitCode() != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitValidation)
	}
}

func TestExitError(t *testing.T) {
	err := exitWithCode(ExitValidation, errors.New("test error"))

	if err.Error() != "test error" {
		t.Errorf("Error() = %q, want 'test error'", err.Error())
	}

	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatal("expected *exitError type")
	}

	if exitErr.ExitCode() != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitValidation)
	}
}

func TestHandleAPIErrorClassification(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := NewApp(WithIO(strings.NewReader(""), &stdout, &stderr))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation error",
			err:  mistral.ErrModelRequired,
			want: ExitValidation,
		},
		{
			name: "api error",
			err:  &mistral.APIError{Status: 429, Message: "slow down", Err: mistral.ErrRateLimited},
			want: ExitAPI,
		},
		{
			name: "network error",
			err:  &mistral.APIError{Message: "connection refused", Err: mistral.ErrNetwork},
			want: ExitNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.handleAPIError(tt.err)

			exitErr, ok := err.(*exitError)
			if !ok {
				t.Fatalf("error is %T, want *exitError", err)
			}
			if exitErr.ExitCode() != tt.want {
				t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), tt.want)
			}
		})
	}
}
