package postal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws/01310100/json/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
		case "/ws/99999999/json/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"erro": true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	// Punctuation in the input must not matter.
	addr, err := client.Lookup(context.Background(), "01310-100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if addr.Street != "Avenida Paulista" || addr.City != "São Paulo" || addr.State != "SP" {
		t.Fatalf("unexpected address: %+v", addr)
	}

	if _, err := client.Lookup(context.Background(), "99999-999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := client.Lookup(context.Background(), "1234"); !errors.Is(err, ErrInvalidCep) {
		t.Fatalf("expected ErrInvalidCep for short input, got %v", err)
	}
}
