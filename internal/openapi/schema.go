package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultNamespace is used when no namespace is given
const DefaultNamespace = "OPENAPI"

var operationMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {},
	"options": {}, "head": {}, "patch": {}, "trace": {},
}

// Schema is a decoded OpenAPI document
type Schema map[string]any

// Controller groups the operations that end up in one generated client file
type Controller struct {
	Name       string
	Operations []string
}

// Loader fetches and prepares OpenAPI schemas
type Loader struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLoader creates a new schema loader
func NewLoader(httpClient *http.Client, logger *zap.Logger) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Fetch downloads the schema at rawURL
func (l *Loader) Fetch(ctx context.Context, rawURL string) (Schema, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid schema url %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch schema: unexpected status %s", resp.Status)
	}

	// Numbers stay json.Number so integer bounds survive Write unchanged.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var schema Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	l.logger.Debug("fetched schema",
		zap.String("url", rawURL),
		zap.Int("paths", len(paths(schema))),
	)

	return schema, nil
}

// Prepare URL-decodes the JSON 200 response $ref of every operation and drops
// cookie parameters. The schema is modified in place.
func (l *Loader) Prepare(schema Schema) Schema {
	for path, item := range paths(schema) {
		for method, op := range operations(item) {
			if err := decodeResponseRef(op); err != nil {
				l.logger.Warn("failed to decode response ref",
					zap.String("path", path),
					zap.String("method", method),
					zap.Error(err),
				)
			}
			dropCookieParameters(op)
		}
	}
	return schema
}

// Controllers groups operations by the prefix of their operationId. An
// operation without one is grouped under its path.
func (l *Loader) Controllers(schema Schema) []Controller {
	byName := map[string][]string{}
	for path, item := range paths(schema) {
		for method, op := range operations(item) {
			opID, _ := op["operationId"].(string)
			name := path
			if opID == "" {
				l.logger.Warn("operation has no operationId",
					zap.String("path", path),
					zap.String("method", method),
				)
			} else {
				prefix, _, _ := strings.Cut(opID, "_")
				name = prefix + "Api"
			}
			byName[name] = append(byName[name], strings.ToUpper(method)+" "+path)
		}
	}

	controllers := make([]Controller, 0, len(byName))
	for name, ops := range byName {
		sort.Strings(ops)
		controllers = append(controllers, Controller{Name: name, Operations: ops})
	}
	sort.Slice(controllers, func(i, j int) bool {
		return controllers[i].Name < controllers[j].Name
	})
	return controllers
}

// Write stores the schema as indented JSON
func Write(path string, schema Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

func paths(schema Schema) map[string]map[string]any {
	raw, _ := schema["paths"].(map[string]any)
	out := make(map[string]map[string]any, len(raw))
	for path, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out[path] = m
		}
	}
	return out
}

func operations(item map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{}
	for method, op := range item {
		if _, ok := operationMethods[strings.ToLower(method)]; !ok {
			continue
		}
		if m, ok := op.(map[string]any); ok {
			out[method] = m
		}
	}
	return out
}

func decodeResponseRef(op map[string]any) error {
	schema := dig(op, "responses", "200", "content", "application/json", "schema")
	if schema == nil {
		return nil
	}
	ref, ok := schema["$ref"].(string)
	if !ok {
		return nil
	}

	decoded, err := url.PathUnescape(ref)
	if err != nil {
		return err
	}
	schema["$ref"] = decoded
	return nil
}

func dropCookieParameters(op map[string]any) {
	params, ok := op["parameters"].([]any)
	if !ok {
		return
	}

	kept := make([]any, 0, len(params))
	for _, p := range params {
		if m, ok := p.(map[string]any); ok && m["in"] == "cookie" {
			continue
		}
		kept = append(kept, p)
	}
	op["parameters"] = kept
}

func dig(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, key := range keys {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
