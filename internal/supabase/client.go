// Package supabase holds the optional Supabase integration: exported
// archives land in Storage and generation lifecycle events go out over
// Realtime channels. The rest of the service works without it.
package supabase

import (
	"github.com/supabase-community/supabase-go"

	"system-builder-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}
