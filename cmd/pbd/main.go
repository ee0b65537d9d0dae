package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pulseboard/internal/aggregate"
	"pulseboard/internal/app"
	"pulseboard/internal/cache"
	"pulseboard/internal/config"
	"pulseboard/internal/db"
	"pulseboard/internal/events"
	"pulseboard/internal/jira"
	"pulseboard/internal/log"
	"pulseboard/internal/migrate"
	"pulseboard/internal/provider"
	"pulseboard/internal/repo"
	"pulseboard/internal/server"
	"pulseboard/internal/widget"
)

var rootCmd = &cobra.Command{
	Use:   "pbd",
	Short: "Pulseboard CLI",
	Long: `Pulseboard aggregates SaaS service data into dashboard widgets.
- Workspace: the .pulseboard directory holding the SQLite store.
- Widgets: typed tiles (issue summaries, analytics, uptime, RACI matrices)
  placed on dashboards and refreshed on their own schedule.
- Integrations: stored credentials for external services; only the Jira
  integration is live, the rest serve representative data.
- Cache: widget payloads are cached server-side and revalidated in the
  background once they go stale.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		cfg, err := config.LoadOptional(workspace)
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: cfg.Log.Level, JSONOutput: cfg.Log.JSON})
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PULSEBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(jiraCmd())
	rootCmd.AddCommand(widgetCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

// loadConfig reads the workspace config and overlays credential env
// vars (PULSEBOARD_JIRA_DOMAIN, PULSEBOARD_JIRA_EMAIL,
// PULSEBOARD_JIRA_API_TOKEN).
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("jira-domain"); v != "" {
		cfg.Jira.Domain = v
	}
	if v := viper.GetString("jira-email"); v != "" {
		cfg.Jira.Email = v
	}
	if v := viper.GetString("jira-api-token"); v != "" {
		cfg.Jira.APIToken = v
	}
	return cfg, nil
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(workspace)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}

			workspace := viper.GetString("workspace")
			conn, err := db.Open(workspace)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			r := repo.Repo{DB: conn}
			if _, err := app.EnsureDemoUser(cmd.Context(), r); err != nil {
				return err
			}

			client := jira.NewClient(cfg.Jira)
			registry := provider.DefaultRegistry(client, rand.New(rand.NewSource(time.Now().UnixNano())))
			svc := aggregate.NewService(registry)
			dataCache := cache.New(svc, cfg.StaleWindow())
			refresher := cache.NewRefresher(dataCache)
			defer refresher.Stop()
			if err := app.TrackStoredWidgets(cmd.Context(), r, refresher, cfg.Refresh.PerWidget); err != nil {
				return err
			}

			handler, err := server.New(server.Config{
				Repo:             r,
				Cache:            dataCache,
				Refresher:        refresher,
				Jira:             client,
				Events:           events.Writer{DB: conn},
				BasePath:         basePath,
				RefreshOverrides: cfg.Refresh.PerWidget,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Pulseboard API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from config)")
	return cmd
}

func jiraCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "jira", Short: "Issue-tracker integration"}
	cmd.AddCommand(jiraTestCmd())
	return cmd
}

func jiraTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the Jira connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			presence := cfg.Jira.Presence()
			fmt.Printf("credentials: domain=%t email=%t api_token=%t\n",
				presence["domain"], presence["email"], presence["api_token"])

			client := jira.NewClient(cfg.Jira)
			profile, err := client.TestConnection(cmd.Context())
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			if viper.GetBool("json") {
				return printJSON(profile)
			}
			fmt.Printf("connected as %s (%s)\n", profile.DisplayName, profile.EmailAddress)
			return nil
		},
	}
}

func widgetCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "widget", Short: "Widget data operations"}
	cmd.AddCommand(widgetTypesCmd())
	cmd.AddCommand(widgetFetchCmd())
	return cmd
}

func widgetTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List known widget types",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := widget.Keys()
			if viper.GetBool("json") {
				names := make([]string, len(keys))
				for i, k := range keys {
					names[i] = k.String()
				}
				return printJSON(names)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Type", "Kind", "Service"})
			for _, k := range keys {
				tw.AppendRow(table.Row{k.String(), k.Kind, k.Service})
			}
			tw.Render()
			return nil
		},
	}
}

func widgetFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <type>",
		Short: "Fetch one widget's data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := widget.ParseKey(args[0])
			if !ok {
				return fmt.Errorf("invalid widget type %q; see pbd widget types", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := jira.NewClient(cfg.Jira)
			registry := provider.DefaultRegistry(client, rand.New(rand.NewSource(time.Now().UnixNano())))
			env := aggregate.NewService(registry).Fetch(cmd.Context(), key)
			if !env.OK() {
				return fmt.Errorf("fetch failed: %s", env.Err)
			}
			if env.Degraded {
				fmt.Fprintln(os.Stderr, "warning: degraded payload")
			}
			return printJSON(env.Payload)
		},
	}
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dashboard", Short: "Manage dashboards"}
	cmd.AddCommand(dashboardListCmd())
	cmd.AddCommand(dashboardCreateCmd())
	return cmd
}

func dashboardListCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				u, err := r.GetUserByUsername(ctx, username)
				if err != nil {
					return err
				}
				items, err := r.ListDashboards(ctx, u.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Default", "Created"})
				for _, d := range items {
					tw.AppendRow(table.Row{d.ID, d.Name, d.IsDefault, d.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "user", "demo", "dashboard owner username")
	return cmd
}

func dashboardCreateCmd() *cobra.Command {
	var username, name string
	var isDefault bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				u, err := r.GetUserByUsername(ctx, username)
				if err != nil {
					return err
				}
				d, err := r.CreateDashboard(ctx, repo.NewDashboard{
					UserID:    u.ID,
					Name:      name,
					IsDefault: isDefault,
				})
				if err != nil {
					return err
				}
				return printJSON(d)
			})
		},
	}
	cmd.Flags().StringVar(&username, "user", "demo", "dashboard owner username")
	cmd.Flags().StringVar(&name, "name", "", "dashboard name")
	cmd.Flags().BoolVar(&isDefault, "default", false, "mark as the default dashboard")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage workspace config"}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	return cmd
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "log", Short: "Change event log"}
	cmd.AddCommand(logTailCmd())
	return cmd
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent change events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListEvents(ctx, n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Entity", "ID"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.TS, e.Type, e.EntityKind, e.EntityID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of events")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
