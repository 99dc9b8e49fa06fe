package main

import (
	"github.com/evently-app/evently/internal/config"
	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// userAgent identifies this binary to the analytics API.
const userAgent = "evently-cli/1.0"

// newClient builds the analytics client from configuration.
func newClient(c *config.Config) analytics.Client {
	return analytics.NewClient(c.APIBaseURL(),
		analytics.WithTimeout(c.API.Timeout()),
		analytics.WithRateLimit(c.API.RateLimitRPS),
		analytics.WithUserAgent(userAgent),
	)
}

// newQueries wraps a client with a fresh query cache.
func newQueries(c *config.Config, client analytics.Client) *query.Queries {
	return query.NewQueries(client, query.New(query.WithStaleAfter(c.Cache.StaleAfter())))
}
