package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petasbytes/sqlagent/internal/agent"
	"github.com/petasbytes/sqlagent/internal/config"
	"github.com/petasbytes/sqlagent/internal/logging"
	"github.com/petasbytes/sqlagent/internal/provider"
	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/memory"
)

// app carries flag values and the loaded configuration across commands.
type app struct {
	configPath    string
	dbPath        string
	model         string
	maxIterations int
	outputDir     string
	verbose       bool

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sqlagent [question]",
		Short: "Ask questions about a SQLite database in natural language.",
		Long: "sqlagent answers questions about a SQLite database by letting a model inspect the schema,\n" +
			"run SQL and export results to CSV. With no question it reads one from a pipe, or starts an\n" +
			"interactive session when stdin is a terminal.",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: a.runAsk,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database file (overrides database.path)")
	pf.StringVar(&a.model, "model", "", "model name (overrides llm.model)")
	pf.IntVar(&a.maxIterations, "max-iterations", 0, "tool rounds per question (overrides agent.max_iterations)")
	pf.StringVar(&a.outputDir, "output-dir", "", "CSV export directory (overrides agent.output_dir)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "set debug logging level")

	root.AddCommand(
		a.schemaCmd(),
		a.execCmd(),
		a.historyCmd(),
		a.filesCmd(),
	)
	return root
}

// load reads configuration, applies explicitly set flags and installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if changed("db") {
		cfg.Database.Path = a.dbPath
	}
	if changed("model") {
		cfg.LLM.Model = a.model
	}
	if changed("max-iterations") {
		cfg.Agent.MaxIterations = a.maxIterations
	}
	if changed("output-dir") {
		cfg.Agent.OutputDir = a.outputDir
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)
	slog.SetDefault(a.log)
	return nil
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	if a.cfg.Database.Path == "" {
		return nil, errors.New("no database: pass --db or set database.path / SQLAGENT_DB")
	}
	return sqlite.Open(ctx, a.cfg.Database.Path)
}

func (a *app) runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if a.cfg.LLM.APIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is not set")
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	agentCfg := a.cfg.AgentConfig()
	agentCfg.Logger = a.log
	client := provider.NewAnthropicClient(a.cfg.LLM.APIKey)
	ag, err := agent.New(agentCfg, client, db, sqlite.NewHistory())
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return a.ask(ctx, cmd.OutOrStdout(), ag, db, strings.Join(args, " "))
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return a.repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), ag, db)
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading question from stdin: %w", err)
	}
	question := strings.TrimSpace(string(b))
	if question == "" {
		return cmd.Help()
	}
	return a.ask(ctx, cmd.OutOrStdout(), ag, db, question)
}

// ask answers one question against a fresh schema snapshot and records it.
func (a *app) ask(ctx context.Context, out io.Writer, ag *agent.Agent, db sqlite.Conn, question string) error {
	schema, err := agent.InitialSchema(ctx, db)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	ans, err := ag.Ask(ctx, question, schema)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ans.Text)
	if ans.State == agent.StateIterationLimitReached {
		color.New(color.FgYellow).Fprintf(out, "(stopped after %d tool rounds)\n", ans.Iterations)
	}

	if path := a.cfg.Agent.TranscriptPath; path != "" {
		entry := memory.Entry{
			Question: question,
			Answer:   ans.Text,
			State:    ans.State.String(),
			Queries:  ans.Queries,
		}
		if err := memory.AppendTranscript(path, entry); err != nil {
			a.log.Warn("failed to save transcript", "path", path, "error", err)
		}
	}
	return nil
}
