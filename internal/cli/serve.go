package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kineograph/kineograph/internal/server"
	"github.com/kineograph/kineograph/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		mongoDB  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Serve starts an HTTP server exposing the layout pipeline. Completed runs
are persisted in MongoDB when --mongo-uri is set, otherwise in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, mongoURI, mongoDB, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", c.Config.Server.MongoURI, "MongoDB connection URI (empty for in-memory store)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", c.Config.Server.MongoDB, "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, mongoURI, mongoDB string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var st store.Store = store.NewMemoryStore()
	if mongoURI != "" {
		mongoStore, err := store.NewMongoStore(ctx, mongoURI, mongoDB)
		if err != nil {
			return err
		}
		st = mongoStore
		c.Logger.Info("connected to mongodb", "db", mongoDB)
	}
	defer func() {
		_ = st.Close(context.Background())
	}()

	srv := server.New(addr, runner, st, c.Logger)
	return srv.ListenAndServe(ctx)
}
