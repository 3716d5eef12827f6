// Package remote exposes the best-combination service operations on top of
// a gql.Transport. Every transport failure is classified as
// combo.KindTransport.
package remote

import (
	"context"
	"encoding/json"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/gql"
)

// API is the typed client.
type API struct {
	t gql.Transport
}

// New wraps a transport.
func New(t gql.Transport) *API {
	return &API{t: t}
}

// GetSuggestion returns the completion for input, or "" when the server
// has none.
func (a *API) GetSuggestion(ctx context.Context, input string) (string, error) {
	var out struct {
		GetSuggestion *string `json:"getSuggestion"`
	}
	if err := a.t.Do(ctx, getSuggestionQuery, map[string]any{"input": input}, &out); err != nil {
		return "", combo.E(combo.KindTransport, "getSuggestion", err)
	}
	if out.GetSuggestion == nil {
		return "", nil
	}
	return *out.GetSuggestion, nil
}

// EnqueueBestCombination warms the server with the current selection and
// returns the status it reports.
func (a *API) EnqueueBestCombination(ctx context.Context, items []string, opts combo.FetchOptions) (combo.Status, error) {
	var out struct {
		EnqueueBestCombination combo.Status `json:"enqueueBestCombination"`
	}
	if err := a.t.Do(ctx, enqueueBestCombinationMutation, selectionVars(items, opts), &out); err != nil {
		return "", combo.E(combo.KindTransport, "enqueueBestCombination", err)
	}
	return out.EnqueueBestCombination, nil
}

// GetBestCombination asks for the combinations covering items.
func (a *API) GetBestCombination(ctx context.Context, items []string, opts combo.FetchOptions) (combo.Result, error) {
	var out struct {
		GetBestCombination json.RawMessage `json:"getBestCombination"`
	}
	if err := a.t.Do(ctx, getBestCombinationQuery, selectionVars(items, opts), &out); err != nil {
		return nil, combo.E(combo.KindTransport, "getBestCombination", err)
	}
	// The server answered, but with a payload we cannot interpret.
	res, err := combo.DecodeResult(out.GetBestCombination)
	if err != nil {
		return nil, combo.E(combo.KindServer, "getBestCombination", err)
	}
	return res, nil
}

// GetTeams lists the team names known to the server.
func (a *API) GetTeams(ctx context.Context) ([]string, error) {
	var out struct {
		GetTeams []string `json:"getTeams"`
	}
	if err := a.t.Do(ctx, getTeamsQuery, nil, &out); err != nil {
		return nil, combo.E(combo.KindTransport, "getTeams", err)
	}
	return out.GetTeams, nil
}

// GetTournaments lists the tournament names known to the server.
func (a *API) GetTournaments(ctx context.Context) ([]string, error) {
	var out struct {
		GetTournaments []string `json:"getTournaments"`
	}
	if err := a.t.Do(ctx, getTournamentsQuery, nil, &out); err != nil {
		return nil, combo.E(combo.KindTransport, "getTournaments", err)
	}
	return out.GetTournaments, nil
}

func selectionVars(items []string, opts combo.FetchOptions) map[string]any {
	input := make([]string, len(items))
	copy(input, items)
	return map[string]any{
		"input": input,
		"opts":  map[string]any{"limit": opts.Limit},
	}
}
