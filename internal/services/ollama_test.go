package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewOllamaService_Defaults(t *testing.T) {
	s := NewOllamaService("", "", 0)

	if s.Endpoint() != DefaultOllamaURL {
		t.Errorf("endpoint = %q, want %q", s.Endpoint(), DefaultOllamaURL)
	}
	if s.Model() != DefaultOllamaModel {
		t.Errorf("model = %q, want %q", s.Model(), DefaultOllamaModel)
	}
	if s.httpClient.Timeout != DefaultOllamaTimeout {
		t.Errorf("timeout = %v, want %v", s.httpClient.Timeout, DefaultOllamaTimeout)
	}
}

func TestOllamaGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body["model"] != "phi3:mini" {
			t.Errorf("model = %v, want phi3:mini", body["model"])
		}
		if body["prompt"] != "System: hi\nUser: hello\nAI:" {
			t.Errorf("unexpected prompt: %v", body["prompt"])
		}
		if stream, ok := body["stream"].(bool); !ok || stream {
			t.Errorf("stream = %v, want false", body["stream"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"phi3:mini","response":"Take a deep breath.","done":true}`))
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "phi3:mini", 5*time.Second)

	got, err := s.Generate(context.Background(), "System: hi\nUser: hello\nAI:")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Take a deep breath." {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestOllamaGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"missing response field", http.StatusOK, `{"model":"phi3:mini","done":true}`, ErrOllamaNoResponse},
		{"server error", http.StatusInternalServerError, `{"error":"model crashed"}`, ErrOllamaStatus},
		{"model not found", http.StatusNotFound, `{"error":"model 'phi3:mini' not found"}`, ErrOllamaStatus},
		{"malformed body", http.StatusOK, `not json`, ErrOllamaUnreachable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			s := NewOllamaService(server.URL, "phi3:mini", 5*time.Second)

			_, err := s.Generate(context.Background(), "prompt")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Generate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestOllamaGenerate_EmptyResponseIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":""}`))
	}))
	defer server.Close()

	got, err := NewOllamaService(server.URL, "", time.Second).Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "" {
		t.Fatalf("Generate() = %q, want empty", got)
	}
}

func TestOllamaGenerate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewOllamaService(url, "", time.Second).Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrOllamaUnreachable) {
		t.Fatalf("Generate() error = %v, want ErrOllamaUnreachable", err)
	}
}

func TestOllamaGenerate_Timeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(done)

	_, err := NewOllamaService(server.URL, "", 50*time.Millisecond).Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrOllamaUnreachable) {
		t.Fatalf("Generate() error = %v, want ErrOllamaUnreachable", err)
	}
}

func TestOllamaPing(t *testing.T) {
	tests := []struct {
		name    string
		models  []string
		wantErr error
	}{
		{"model pulled", []string{"llama3:8b", "phi3:mini"}, nil},
		{"model missing", []string{"llama3:8b"}, ErrOllamaModelMissing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				resp := ollamaTagsResponse{}
				for _, name := range tc.models {
					resp.Models = append(resp.Models, ollamaModelInfo{Name: name})
				}
				json.NewEncoder(w).Encode(resp)
			}))
			defer server.Close()

			err := NewOllamaService(server.URL, "phi3:mini", time.Second).Ping(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Ping() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
