package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardforge/internal/server"
	"github.com/matzehuels/cardforge/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redisURL string // optional Redis URL for the sheet cache
	noCache  bool   // disable the sheet cache
}

// serveCommand creates the serve command for running the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP card generation server",
		Long: `Serve runs an HTTP server exposing the batch pipeline. POST a template
image and rows (CSV upload or sheet URL) to /generate and receive a zip of
rendered cards.

The sheet cache defaults to the local file cache; pass --redis to share a
cache between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the sheet cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the sheet download cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	store, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	printInfo("Starting server")
	printLink("address", opts.addr)

	srv := server.New(server.Config{
		Addr:   opts.addr,
		Cache:  store,
		Logger: c.Logger,
	})
	return srv.ListenAndServe(ctx)
}

// serveCache picks the cache backend for the server. Redis wins over the
// file cache when configured.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		store, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using redis cache")
		return store, nil
	}
	return newCache(false), nil
}
