package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Model describes one model offered by a provider.
type Model struct {
	ID   string
	Name string
}

// ListModels queries the provider's model listing endpoint and returns the
// available models sorted by ID.
func (p Provider) ListModels(ctx context.Context) ([]Model, error) {
	endpoint, headers := p.modelsRequest()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := makeHTTPClient(p.Proxy, p.effectiveTimeout())
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}

	models, err := parseModelList(body)
	if err != nil {
		return nil, err
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// modelsRequest returns the endpoint and headers for the model listing call
// in the provider's wire format.
func (p Provider) modelsRequest() (string, map[string]string) {
	headers := make(map[string]string)
	base := strings.TrimRight(p.BaseURL, "/")

	switch p.format() {
	case formatGeminiNative:
		// GET /v1beta/models
		if p.APIKey != "" {
			headers["x-goog-api-key"] = p.APIKey
		}
		return base + "/v1beta/models", headers

	case formatAnthropic:
		if p.APIKey != "" {
			headers["x-api-key"] = p.APIKey
		}
		headers["anthropic-version"] = "2023-06-01"
		return base + "/models", headers

	default:
		if p.APIKey != "" {
			headers["Authorization"] = "Bearer " + p.APIKey
		}
		return base + "/models", headers
	}
}

// parseModelList handles both the OpenAI/Anthropic "data" array and the
// Gemini "models" array.
func parseModelList(body []byte) ([]Model, error) {
	var raw struct {
		// OpenAI-compatible and Anthropic.
		Data []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"data"`
		// Gemini.
		Models []struct {
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}

	var models []Model
	for _, m := range raw.Data {
		name := m.DisplayName
		if name == "" {
			name = m.ID
		}
		models = append(models, Model{ID: m.ID, Name: name})
	}
	for _, m := range raw.Models {
		// Gemini returns "models/gemini-2.0-flash"; strip the prefix.
		id := strings.TrimPrefix(m.Name, "models/")
		name := m.DisplayName
		if name == "" {
			name = id
		}
		models = append(models, Model{ID: id, Name: name})
	}

	if models == nil {
		return nil, fmt.Errorf("no models in response: %s", truncate(string(body), 300))
	}
	return models, nil
}
