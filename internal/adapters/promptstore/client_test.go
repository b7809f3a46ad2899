package promptstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmoreno/gymstats-agent/internal/adapters/promptstore"
)

func TestRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/v2/prompts/agent-gym" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "pk" || pass != "sk" {
			t.Errorf("unexpected auth: %q %q", user, pass)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"agent-gym","type":"text","prompt":"Hola {{nombre}}, analiza el periodo."}`))
	}))
	defer srv.Close()

	client := promptstore.NewClient(srv.URL, "pk", "sk")
	prompt, ok := client.Retrieve(context.Background(), "agent-gym", map[string]string{"nombre": "Ana"})
	if !ok {
		t.Fatal("expected prompt retrieval to succeed")
	}
	if prompt != "Hola Ana, analiza el periodo." {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

func TestRetrieveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := promptstore.NewClient(srv.URL, "pk", "sk")
	if _, ok := client.Retrieve(context.Background(), "agent-gym", nil); ok {
		t.Fatal("expected retrieval to report absence on server error")
	}
}

func TestRetrieveChatPromptIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chat prompts carry a message list, not a plain string.
		_, _ = w.Write([]byte(`{"name":"agent-gym","type":"chat","prompt":[{"role":"system","content":"x"}]}`))
	}))
	defer srv.Close()

	client := promptstore.NewClient(srv.URL, "pk", "sk")
	if _, ok := client.Retrieve(context.Background(), "agent-gym", nil); ok {
		t.Fatal("expected chat prompts to be rejected")
	}
}

func TestRetrieveDisabledWithoutCredentials(t *testing.T) {
	client := promptstore.NewClient("", "", "")
	if _, ok := client.Retrieve(context.Background(), "agent-gym", nil); ok {
		t.Fatal("expected disabled client to report absence")
	}
}
