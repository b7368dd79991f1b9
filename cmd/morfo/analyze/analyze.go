// Package analyzecmder provides the analyze command: it streams a model's
// morphological breakdown of a Turkish word or phrase to the terminal.
package analyzecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/morfolab/morfo/pkg/cliui"
	"github.com/morfolab/morfo/pkg/config"
	"github.com/morfolab/morfo/pkg/credentials"
	"github.com/morfolab/morfo/pkg/history"
	"github.com/morfolab/morfo/pkg/logger"
	"github.com/morfolab/morfo/pkg/morph"
	"github.com/morfolab/morfo/pkg/stream"
	"github.com/morfolab/morfo/pkg/utils"
)

// analysisPrompt is the instruction contract with the model: one JSON
// object per analyzed form, streamed as plain output text, terminated by a
// done object.
const analysisPrompt = `You are a Turkish morphology tutor. For each word in the
user's query, emit exactly one JSON object on its own with the shape
{"type":"entry","surface":...,"morphemes":[{"text":...,"category":...,"gloss":...}],"translation":...,"note":...}.
Categories: root, plural, possessive, case, tense, person, negation,
question, derivation, voice, copula. After the last entry emit {"type":"done"}.
Emit no prose outside the JSON objects.`

const analyzeLongDesc string = `Analyze the morphology of a Turkish word or phrase.

The query is sent to the configured streaming endpoint and each analyzed
form is rendered the moment the model finishes it: the surface form, its
morpheme segmentation color-coded by category, per-morpheme glosses, and
a translation.

Press Ctrl+C to stop a long analysis; entries already shown stay valid.

Completed analyses are recorded in the history database and can be
reviewed with "morfo history".

Examples:
  morfo analyze evlerimizden
  morfo analyze "köpekler bahçede koşuyordu"
  morfo analyze gelemeyeceklermiş --model gpt-4o`

const analyzeShortDesc string = "Analyze the morphology of a Turkish word or phrase"

type analyzeCommander struct {
	endpoint      string
	model         string
	bufferLimit   uint
	idleTimeout   string
	ratePerMinute uint
	sqlitePath    string
	logFile       string
	debug         bool
	configDir     string

	cfg    *config.Config
	logger *slog.Logger
}

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagEndpoint,
				config.FlagModel,
				config.FlagBufferLimit,
				config.FlagIdleTimeout,
				config.FlagRatePerMinute,
				config.FlagSQLite,
			})

			cmder.cfg = config.ConfigFromViper(v)
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.Flags, config.FlagBufferLimit, &cmder.bufferLimit)
	config.AddStringFlag(cmd, config.Flags, config.FlagIdleTimeout, &cmder.idleTimeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagRatePerMinute, &cmder.ratePerMinute)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *analyzeCommander) run(query string) error {
	if err := c.setupLogger(); err != nil {
		return err
	}

	key, err := c.credential()
	if err != nil {
		return err
	}

	// Ctrl+C cancels the stream; entries already rendered stay on screen.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := stream.NewClient(c.cfg.API.Endpoint, c.cfg.API.Model,
		stream.WithLogger(c.logger),
		stream.WithPrompt(analysisPrompt),
		stream.WithBufferLimit(int(c.cfg.Stream.BufferLimit)),
		stream.WithIdleTimeout(c.cfg.Stream.ParsedIdleTimeout()),
		stream.WithRateLimit(int(c.cfg.Stream.RatePerMinute)),
	)

	fmt.Printf("\n  %s %s %s\n\n",
		cliui.KeyStyle.Render("Analyzing"),
		cliui.NameStyle.Render(query),
		cliui.DimStyle.Render("("+c.cfg.API.Model+")"),
	)

	start := time.Now()
	sess, err := client.Start(ctx, query, key)
	if err != nil {
		return err
	}

	entries := 0
	for obj := range sess.Objects() {
		entry, err := morph.DecodeEntry(obj)
		if err != nil {
			c.logger.Debug("skipping non-entry object", "type", obj.Type, "error", err)
			continue
		}

		entries++
		fmt.Println(cliui.RenderEntry(entry))

		if entry.Note != "" {
			if rendered, err := cliui.RenderMarkdown(entry.Note); err == nil {
				fmt.Print(rendered)
			}
		}
	}
	<-sess.Done()

	elapsed := time.Since(start)

	switch sess.State() {
	case stream.StateErrored:
		return fmt.Errorf("analysis failed: %w", sess.Err())

	case stream.StateCancelled:
		fmt.Printf("  %s Cancelled after %s %s\n\n",
			cliui.WarnStyle.Render("!"),
			cliui.FormatDuration(elapsed),
			cliui.DimStyle.Render(fmt.Sprintf("(%d entries shown)", entries)),
		)
		return nil
	}

	fmt.Printf("  %s %d %s %s\n\n",
		cliui.SuccessMark,
		entries,
		pluralize("entry", "entries", entries),
		cliui.DimStyle.Render("in "+cliui.FormatDuration(elapsed)),
	)

	c.record(query, entries, elapsed)

	return nil
}

// setupLogger builds the command logger: pretty output to stderr, plus a
// JSON log file when --log-file is set.
func (c *analyzeCommander) setupLogger() error {
	pretty := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile == "" {
		c.logger = pretty
		return nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(pretty, logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return nil
}

// credential resolves the API key: stored credentials first, environment
// variables second.
func (c *analyzeCommander) credential() (string, error) {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}

	key, err := mgr.GetKey()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("no API key found\n\nStore one with 'morfo auth' or set %s",
			strings.Join(credentials.EnvVars(), " or "))
	}

	return key, nil
}

// record appends the completed analysis to the history database. History
// is best-effort: a failure is logged, never fatal.
func (c *analyzeCommander) record(query string, entries int, elapsed time.Duration) {
	path := c.cfg.History.SQLitePath
	if path == "" {
		var err error
		path, err = history.DefaultPath(c.configDir)
		if err != nil {
			c.logger.Warn("resolving history path", "error", err)
			return
		}
	}

	store, err := history.Open(path)
	if err != nil {
		c.logger.Warn("opening history database", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(context.Background(), utils.Truncate(query, 200), entries, elapsed); err != nil {
		c.logger.Warn("recording analysis", "error", err)
	}
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}
