package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound means the CEP is well formed but unknown to ViaCEP.
var ErrNotFound = errors.New("postal: cep not found")

// ErrInvalidCep means the input is not an eight digit Brazilian postal code.
var ErrInvalidCep = errors.New("postal: invalid cep")

// Address is the subset of the ViaCEP response the profile form needs.
type Address struct {
	Cep          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

const DefaultBaseURL = "https://viacep.com.br"

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup resolves a CEP to a street address. Formatting characters in the
// input are ignored, so "01310-100" and "01310100" are the same code.
func (c *Client) Lookup(ctx context.Context, cep string) (Address, error) {
	digits := normalizeCep(cep)
	if len(digits) != 8 {
		return Address{}, ErrInvalidCep
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+digits+"/json/", nil)
	if err != nil {
		return Address{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("postal: viacep request failed: %w", err)
	}
	defer resp.Body.Close()

	// ViaCEP answers 400 for malformed codes and 200 with {"erro": true}
	// for unknown ones.
	if resp.StatusCode == http.StatusBadRequest {
		return Address{}, ErrInvalidCep
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("postal: viacep status %d", resp.StatusCode)
	}

	var body struct {
		Cep        string `json:"cep"`
		Logradouro string `json:"logradouro"`
		Bairro     string `json:"bairro"`
		Localidade string `json:"localidade"`
		Uf         string `json:"uf"`
		Erro       bool   `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("postal: decode viacep response: %w", err)
	}
	if body.Erro {
		return Address{}, ErrNotFound
	}

	return Address{
		Cep:          body.Cep,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.Uf,
	}, nil
}

func normalizeCep(cep string) string {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
