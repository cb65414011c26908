// Package main provides the CLI entrypoint for life-progress.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/life-progress/internal/config"
	"github.com/verte-zerg/life-progress/internal/fuzzy"
	"github.com/verte-zerg/life-progress/internal/lifespan"
	"github.com/verte-zerg/life-progress/internal/logging"
	"github.com/verte-zerg/life-progress/internal/model"
	"github.com/verte-zerg/life-progress/internal/picker"
	"github.com/verte-zerg/life-progress/internal/progress"
	"github.com/verte-zerg/life-progress/internal/render"
	"github.com/verte-zerg/life-progress/internal/store"
)

// errNothingFound signals an empty search or lookup; the banner is already printed.
var errNothingFound = errors.New("nothing found")

var (
	rootBirthday string
	rootGender   string
	rootNation   string
	rootConfig   string
	rootData     string
	rootFormat   string
	rootVerbose  bool

	searchRank  bool
	searchLimit int

	importReset bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNothingFound) {
			logErrf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "life-progress",
		Short:         "Show how much of your expected lifespan has passed",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runProgressCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&rootBirthday, "birthday", "b", "", "birthday (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVarP(&rootGender, "gender", "g", "", "gender: male|female (1|0)")
	rootCmd.Flags().StringVarP(&rootNation, "nation", "n", "", "country name or fuzzy query (default: world average)")
	rootCmd.PersistentFlags().StringVarP(&rootConfig, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/life-progress/config.toml)")
	rootCmd.PersistentFlags().StringVar(&rootData, "data", "", "statistics file (.csv, .json, .yaml) to use instead of stored data")
	rootCmd.PersistentFlags().StringVar(&rootFormat, "format", string(render.FormatText), "output format: text|json|yaml")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "log diagnostics to stderr")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newPickCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// session bundles what every command needs after flags and config are merged.
type session struct {
	logger  *slog.Logger
	engine  *progress.Engine
	printer *render.Printer
	profile profileInput
}

// profileInput holds unparsed profile values so commands that do not need
// them never fail on a bad birthday.
type profileInput struct {
	birthday string
	gender   string
	nation   string
}

func (p profileInput) parse() (model.Profile, error) {
	birthday, err := progress.ParseBirthday(p.birthday)
	if err != nil {
		return model.Profile{}, err
	}
	gender, err := progress.ParseGender(p.gender)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{Birthday: birthday, Gender: gender, Nation: p.nation}, nil
}

func newSession(cmd *cobra.Command) (*session, error) {
	logger := logging.New(os.Stderr, rootVerbose)

	configPath := config.DefaultConfigPath()
	if rootConfig != "" {
		abs, err := config.AbsolutePath(rootConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		configPath = abs
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("config loaded", "path", configPath)

	root := cmd.Root()
	applyStringConfig(root, "birthday", &rootBirthday, fileCfg.Profile.Birthday)
	applyStringConfig(root, "gender", &rootGender, fileCfg.Profile.Gender)
	applyStringConfig(root, "nation", &rootNation, fileCfg.Profile.Nation)
	applyStringConfig(root, "data", &rootData, fileCfg.Data.Source)

	format, err := render.ParseFormat(rootFormat)
	if err != nil {
		return nil, err
	}

	table, err := loadTable(cmd.Context(), logger, rootData)
	if err != nil {
		return nil, err
	}
	return &session{
		logger:  logger,
		engine:  progress.NewEngine(table, progress.WithLogger(logger)),
		printer: render.NewPrinter(cmd.OutOrStdout(), format),
		profile: profileInput{birthday: rootBirthday, gender: rootGender, nation: rootNation},
	}, nil
}

// loadTable picks the statistics source: an explicit file, then data
// imported into the store, then the bundled dataset.
func loadTable(ctx context.Context, logger *slog.Logger, source string) (*lifespan.Table, error) {
	if source != "" {
		rows, err := lifespan.LoadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to load statistics from %s: %w", source, err)
		}
		logger.Debug("using statistics file", "path", source, "rows", len(rows))
		return lifespan.NewTable(rows)
	}

	dbPath := config.DefaultDBPath()
	if _, err := os.Stat(dbPath); err == nil {
		rows, imported, err := storedRows(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			logger.Debug("using imported statistics", "path", dbPath, "rows", len(rows),
				"source", imported.Source, "imported_at", imported.ImportedAt.Format(time.RFC3339))
			return lifespan.NewTable(rows)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat db: %w", err)
	}

	logger.Debug("using bundled statistics")
	return lifespan.Bundled()
}

// storedRows reads the imported table and the import it came from.
func storedRows(ctx context.Context, dbPath string) ([]lifespan.Row, store.ImportInfo, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, store.ImportInfo{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	rows, err := st.Countries(ctx)
	if err != nil {
		return nil, store.ImportInfo{}, fmt.Errorf("failed to read stored statistics: %w", err)
	}
	imported, _, err := st.LastImport(ctx)
	if err != nil {
		return nil, store.ImportInfo{}, fmt.Errorf("failed to read import history: %w", err)
	}
	return rows, imported, nil
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.profile.birthday == "" {
		return cmd.Help()
	}
	profile, err := s.profile.parse()
	if err != nil {
		return err
	}
	info, err := s.engine.Compute(profile.Birthday, profile.Gender, profile.Nation)
	if err != nil {
		return err
	}
	s.logger.Debug("progress computed", "country", info.Country, "expectancy", info.Expectancy, "total_days", info.TotalDays)
	return s.printer.Progress(info)
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search countries in the statistics table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().BoolVar(&searchRank, "rank", false, "sort results by match score")
	cmd.Flags().IntVar(&searchLimit, "limit", 0, "show at most N results (0: all)")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	if searchLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	results := s.engine.Search(query)
	s.logger.Debug("search finished", "query", query, "matches", len(results))
	if len(results) == 0 {
		if err := s.printer.NotFound(); err != nil {
			return err
		}
		return errNothingFound
	}
	if searchRank {
		results = fuzzy.Rank(results)
	}
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}
	hits := make([]render.Hit, len(results))
	for i, r := range results {
		info, _ := s.engine.Lookup(r.Name)
		hits[i] = render.Hit{Match: r, Info: info}
	}
	return s.printer.Hits(hits)
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <name>",
		Short: "Show the statistics of one country",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runViewCmd,
	}
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	name := strings.Join(args, " ")
	info, ok := s.engine.Lookup(name)
	if !ok {
		if err := s.printer.NotFound(); err != nil {
			return err
		}
		if best, ok := fuzzy.Best(s.engine.Search(name)); ok {
			logErrf("Did you mean %q?\n", best.Name)
		}
		return errNothingFound
	}
	return s.printer.Country(name, info)
}

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick [query]",
		Short: "Pick a country interactively",
		Args:  cobra.ArbitraryArgs,
		RunE:  runPickCmd,
	}
}

func runPickCmd(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("pick needs an interactive terminal; use search instead")
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	m := picker.NewModel(s.engine, strings.Join(args, " "))
	program := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run picker: %w", err)
	}
	name, ok := m.Selected()
	if !ok {
		return nil
	}
	info, _ := s.engine.Lookup(name)
	if err := s.printer.Country(name, info); err != nil {
		return err
	}
	if s.profile.birthday == "" {
		return nil
	}
	profile, err := s.profile.parse()
	if err != nil {
		return err
	}
	result, err := s.engine.Compute(profile.Birthday, profile.Gender, name)
	if err != nil {
		return err
	}
	return s.printer.Progress(result)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a statistics file (.csv, .json, .yaml) for later runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importReset, "reset", false, "drop imported statistics and use the bundled dataset")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	if importReset == (len(args) == 1) {
		return fmt.Errorf("pass either a file or --reset")
	}
	ctx := cmd.Context()
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if importReset {
		if err := st.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear statistics: %w", err)
		}
		return writeLine(cmd.OutOrStdout(), "Imported statistics removed; using bundled dataset")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	rows, err := lifespan.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	table, err := lifespan.NewTable(rows)
	if err != nil {
		return fmt.Errorf("invalid statistics in %s: %w", path, err)
	}
	if _, ok := table.Lookup(lifespan.CommonName); !ok {
		logErrf("warning: %s has no %q entry; progress without --nation will fail\n", path, lifespan.CommonName)
	}
	if err := st.ReplaceCountries(ctx, path, rows); err != nil {
		return fmt.Errorf("failed to store statistics: %w", err)
	}
	return writeLine(cmd.OutOrStdout(), fmt.Sprintf("Imported %d countries from %s", table.Len(), path))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if rootConfig != "" {
		abs, err := config.AbsolutePath(rootConfig)
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = abs
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return `# life-progress configuration
# Uncomment a value to enable it. CLI flags override config values.

[profile]
# birthday = "1990-05-17"   # YYYY-MM-DD
# gender = "female"         # male or female; unset uses the overall figure
# nation = "Japan"          # country name or fuzzy query; unset uses "Common"

[data]
# source = "/path/to/statistics.yaml"   # .csv, .json or .yaml; overrides imported data
`
}

func writeLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
