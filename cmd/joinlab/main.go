// ABOUTME: Entry point for the JoinLab admin UI.
// ABOUTME: Wires config, call log store, backend client, and web handlers behind cobra commands.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/2389/joinlab/internal/admin"
	"github.com/2389/joinlab/internal/client"
	"github.com/2389/joinlab/internal/config"
	apierrors "github.com/2389/joinlab/internal/errors"
	"github.com/2389/joinlab/internal/logging"
	"github.com/2389/joinlab/internal/notify"
	"github.com/2389/joinlab/internal/panel"
	"github.com/2389/joinlab/internal/resource"
	"github.com/2389/joinlab/internal/seed"
	"github.com/2389/joinlab/internal/shell"
	"github.com/2389/joinlab/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "joinlab",
		Short: "JoinLab - admin UI for a university REST backend",
		Long: `JoinLab is a browser admin for the tables of a small university database
served over REST: departments, students, teachers, courses, teaching,
enrollments, rooms, schedule, and employees.

Every table gets the same list view with search and pagination, and
create/edit/delete through a modal form. Calls made to the backend are
recorded locally in SQLite and shown at /logs.

Quick Start:
  joinlab seed                               # Fill the backend with sample rows
  joinlab serve --backend http://api:8000    # Start UI on port 9100
  joinlab logs --failed                      # Show failed backend calls`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			return config.BindFlags(v, cmd.Flags())
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before the environment")
	pf.String("backend", "http://localhost:8080", "Backend origin")
	pf.String("api-base", "/api", "API base path, or an absolute URL")
	pf.StringP("db", "d", "", "Call log database path (default: XDG data dir)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin UI",
		Long: `Start the JoinLab HTTP server.

The server provides:
  • Admin UI at http://localhost:PORT/
  • Backend call log at http://localhost:PORT/logs
  • Resource schemas at http://localhost:PORT/schema
  • Health check at http://localhost:PORT/healthz

Environment Variables:
  JOINLAB_PORT              Server port (default: 9100)
  JOINLAB_BACKEND           Backend origin
  JOINLAB_API_BASE          API base path
  JOINLAB_NOTIFY_DURATION   How long notifications stay up (default: 3s)
  JOINLAB_SESSION_TTL       Idle time before a browser session is dropped`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	sf := serveCmd.Flags()
	sf.IntP("port", "p", 9100, "Port to listen on")
	sf.Duration("notify-duration", notify.DefaultDuration, "Notification display time")
	sf.Duration("session-ttl", 12*time.Hour, "Idle browser session lifetime")
	sf.Int("page-size", panel.DefaultPageSize, "Initial rows per page")

	var count int
	seedCmd := &cobra.Command{
		Use:   "seed [resource...]",
		Short: "Fill the backend with sample records",
		Long: `Create sample records in the backend for every resource or the ones named.

AI-Powered Generation:
  Set OPENAI_API_KEY (or JOINLAB_OPENAI_API_KEY) to have OpenAI write the rows.
  Falls back to static sample data if no API key is provided.

Resources are created in tab order so departments exist before the
students and teachers that reference them.

Note: Seed is not idempotent. Running it twice creates twice the rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), v, args, count)
		},
	}
	seedCmd.Flags().IntVarP(&count, "count", "n", 10, "Records per resource")
	seedCmd.Flags().String("openai-model", seed.DefaultModel, "OpenAI model for generated rows")

	var asJSON bool
	resourcesCmd := &cobra.Command{
		Use:   "resources",
		Short: "List the resources the admin manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResources(cmd, asJSON)
		},
	}
	resourcesCmd.Flags().BoolVar(&asJSON, "json", false, "Print schemas as JSON")

	var lf logsFlags
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show or prune the backend call log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, v, lf)
		},
	}
	logsCmd.Flags().IntVar(&lf.limit, "limit", 20, "Number of calls to show")
	logsCmd.Flags().StringVar(&lf.resource, "resource", "", "Only calls for this resource")
	logsCmd.Flags().BoolVar(&lf.failed, "failed", false, "Only failed calls")
	logsCmd.Flags().DurationVar(&lf.prune, "prune", 0, "Delete calls older than this instead of listing")

	rootCmd.AddCommand(serveCmd, seedCmd, resourcesCmd, logsCmd)
	return rootCmd
}

func loadConfig(v *viper.Viper) (*config.Config, string, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, "", err
	}
	apiURL, err := cfg.APIURL()
	if err != nil {
		return nil, "", err
	}
	return cfg, apiURL, nil
}

// newBackendClient returns a client whose calls are recorded in s. Wait on
// the transport before closing s.
func newBackendClient(apiURL string, s *store.Store) (*client.Client, *logging.Transport, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, nil, err
	}
	t := logging.NewTransport(nil, s, u.Path)
	c, err := client.New(apiURL, client.WithTransport(t))
	if err != nil {
		return nil, nil, err
	}
	return c, t, nil
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, apiURL, err := loadConfig(v)
	if err != nil {
		return err
	}

	srv, closeStore, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("JoinLab admin listening on %s", httpSrv.Addr)
	log.Printf("Backend: %s", apiURL)
	log.Printf("Database: %s", cfg.DB)
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServer builds the HTTP handler and returns a func that closes the
// call log store.
func newServer(cfg *config.Config) (http.Handler, func(), error) {
	apiURL, err := cfg.APIURL()
	if err != nil {
		return nil, nil, err
	}

	s, err := store.New(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	c, calls, err := newBackendClient(apiURL, s)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	reg := resource.Builtin()
	sessions := admin.NewSessions(cfg.SessionTTL, func() *shell.Shell {
		return shell.New(reg, c, notify.New(cfg.NotifyDuration), panel.WithPageSize(cfg.PageSize))
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	// Backend reachability, probed with a one-row list of the default tab
	r.Get("/healthz/backend", func(w http.ResponseWriter, r *http.Request) {
		def, _ := reg.Get(reg.Default())
		if _, err := c.List(r.Context(), def.Path, client.ListParams{Page: 1, PageSize: 1}); err != nil {
			apierrors.WriteBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "backend": apiURL})
	})

	// Favicon
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	admin.NewHandlers(reg, sessions, s, apiURL).RegisterRoutes(r)

	return r, func() {
		calls.Wait()
		s.Close()
	}, nil
}

func runSeed(ctx context.Context, v *viper.Viper, names []string, count int) error {
	cfg, apiURL, err := loadConfig(v)
	if err != nil {
		return err
	}

	reg := resource.Builtin()
	schemas, err := selectSchemas(reg, names)
	if err != nil {
		return err
	}

	s, err := store.New(cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	c, calls, err := newBackendClient(apiURL, s)
	if err != nil {
		return err
	}
	defer calls.Wait()

	log.Printf("Seeding %s", apiURL)
	g := seed.NewGenerator(cfg.OpenAIKey, cfg.OpenAIModel)
	reports, err := g.Seed(ctx, c, schemas, count)
	if err != nil {
		return err
	}

	created, failed := 0, 0
	for _, rep := range reports {
		created += rep.Created
		failed += rep.Failed
	}
	log.Printf("\nCreated %d records across %d resources", created, len(reports))
	if failed > 0 {
		return fmt.Errorf("%d records failed, see 'joinlab logs --failed'", failed)
	}
	return nil
}

// selectSchemas returns the named schemas in tab order, or all of them
// when names is empty.
func selectSchemas(reg *resource.Registry, names []string) ([]resource.Schema, error) {
	for _, name := range names {
		if _, ok := reg.Get(name); !ok {
			return nil, fmt.Errorf("unknown resource %q (available: %v)", name, reg.Names())
		}
	}
	var out []resource.Schema
	for _, s := range reg.All() {
		if len(names) == 0 || slices.Contains(names, s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

func runResources(cmd *cobra.Command, asJSON bool) error {
	reg := resource.Builtin()
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.All())
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tPATH\tID\tFIELDS")
	for _, s := range reg.All() {
		name := s.Name
		if name == reg.Default() {
			name += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", name, s.Label, s.Path, s.ID, len(s.Fields))
	}
	return tw.Flush()
}

type logsFlags struct {
	limit    int
	resource string
	failed   bool
	prune    time.Duration
}

func runLogs(cmd *cobra.Command, v *viper.Viper, f logsFlags) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	s, err := store.New(cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if f.prune > 0 {
		n, err := s.PruneCalls(time.Now().Add(-f.prune))
		if err != nil {
			return fmt.Errorf("prune calls: %w", err)
		}
		fmt.Fprintf(out, "Deleted %d calls older than %s\n", n, f.prune)
		return nil
	}

	calls, err := s.GetCalls(&store.CallQuery{Limit: f.limit, Resource: f.resource, FailedOnly: f.failed})
	if err != nil {
		return fmt.Errorf("get calls: %w", err)
	}
	if len(calls) == 0 {
		fmt.Fprintln(out, "No backend calls recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMETHOD\tSTATUS\tMS\tPATH\tERROR")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			c.Timestamp.Local().Format("2006-01-02 15:04:05"), c.Method, c.StatusCode, c.DurationMs, c.Path, c.Error)
	}
	return tw.Flush()
}
