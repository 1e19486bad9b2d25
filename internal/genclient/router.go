// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/docforge/pkg/types"
)

// Router dispatches requests to a client by provider name so one section can
// mix variants from several backends.
type Router struct {
	def     types.Provider
	clients map[types.Provider]Client
}

// NewRouter returns an empty router whose default provider is def.
func NewRouter(def types.Provider) *Router {
	return &Router{def: normalizeProvider(def), clients: make(map[types.Provider]Client)}
}

// Register adds or replaces the client for p.
func (r *Router) Register(p types.Provider, c Client) {
	r.clients[normalizeProvider(p)] = c
}

// Has reports whether a client is registered for p.
func (r *Router) Has(p types.Provider) bool {
	_, ok := r.clients[normalizeProvider(p)]
	return ok
}

// Providers lists the registered provider names in sorted order.
func (r *Router) Providers() []types.Provider {
	names := make([]types.Provider, 0, len(r.clients))
	for p := range r.clients {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Invoke routes req to its provider, or to the default when none is named.
func (r *Router) Invoke(ctx context.Context, req Request) (string, error) {
	p := normalizeProvider(req.Provider)
	if p == "" {
		p = r.def
	}
	c, ok := r.clients[p]
	if !ok {
		return "", &GenerationError{Kind: KindUnexpected, Detail: fmt.Sprintf("no client registered for provider %q", p)}
	}
	return c.Invoke(ctx, req)
}
