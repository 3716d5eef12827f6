package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/config"
	"github.com/adrior11/check24-best-combination-submission/internal/gql"
	"github.com/adrior11/check24-best-combination-submission/internal/remote"
	"github.com/adrior11/check24-best-combination-submission/internal/store"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagURL != "" {
		cfg.API.URL = flagURL
	}
	if flagLimit != 0 {
		cfg.Fetch.DefaultLimit = flagLimit
	}
	if flagNoHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAPI builds the typed API over a paced GraphQL client.
func newAPI(cfg *config.Config) *remote.API {
	client := gql.NewClient(cfg.API.URL,
		gql.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		gql.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
	)
	return remote.New(client)
}

// fetchOptions returns the request options from cfg.
func fetchOptions(cfg *config.Config) combo.FetchOptions {
	return combo.FetchOptions{Limit: cfg.Fetch.DefaultLimit}
}

// openHistory opens the result history, or returns nil when disabled.
func openHistory(cfg *config.Config) (*store.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path := cfg.HistoryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return store.Open(path)
}

// eventLogPath returns the path to events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "events.jsonl")
}

// parseItems trims args and drops blanks and duplicates, keeping order.
func parseItems(args []string) []string {
	var items []string
	seen := make(map[string]bool)
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		items = append(items, a)
	}
	return items
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
