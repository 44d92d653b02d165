package main

import (
	"fmt"
	"io"
	"os"

	"github.com/haukened/etld/internal/etld/common/clock"
	"github.com/haukened/etld/internal/etld/common/log"
	"github.com/haukened/etld/internal/etld/common/utils"
	"github.com/haukened/etld/internal/etld/config"
	"github.com/haukened/etld/internal/etld/domain"
	"github.com/haukened/etld/internal/etld/parsers"
	"github.com/haukened/etld/internal/etld/repos/ruleset"
	"github.com/haukened/etld/internal/etld/repos/ruleset/bloom"
	"github.com/haukened/etld/internal/etld/repos/ruleset/bolt"
	"github.com/haukened/etld/internal/etld/repos/ruleset/lru"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "etld"
)

// Application holds the parsed rule list and, when a snapshot path is
// configured, the indexed repository built from it.
type Application struct {
	config *config.AppConfig
	clock  clock.Clock
	logger log.Logger
	out    io.Writer

	store ruleset.Store
	repo  ruleset.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.Log.Level,
		"rules_file":    cfg.Rules.File,
		"rules_db":      cfg.Rules.DB,
		"rules_reset":   cfg.Rules.Reset,
		"cache_size":    cfg.Rules.CacheSize,
		"bloom_fp_rate": cfg.Rules.BloomFPRate,
	}, "Starting "+appName)

	app, err := buildApplication(cfg, &clock.RealClock{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		os.Exit(1)
	}

	runErr := app.Run(os.Args[1:])
	if err := app.Close(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error closing rule snapshot")
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// buildApplication wires the repository layer. Without a snapshot path the
// application answers lookups from the freshly parsed list alone.
func buildApplication(cfg *config.AppConfig, clk clock.Clock, out io.Writer) (*Application, error) {
	logger := log.GetLogger()
	app := &Application{config: cfg, clock: clk, logger: logger, out: out}

	if cfg.Rules.DB == "" {
		logger.Info(nil, "Rule snapshot disabled")
		return app, nil
	}

	store, err := bolt.New(cfg.Rules.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule snapshot %s: %w", cfg.Rules.DB, err)
	}
	cache, err := lru.New(cfg.Rules.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}

	app.store = store
	app.repo = ruleset.NewRepository(store, cache, bloom.NewFactory(), cfg.Rules.BloomFPRate, logger)

	logger.Info(map[string]any{
		"path":       cfg.Rules.DB,
		"cache_size": cfg.Rules.CacheSize,
		"fp_rate":    cfg.Rules.BloomFPRate,
	}, "Rule snapshot configured")
	return app, nil
}

// ruleIndex answers lookups against one parsed rule list. ruleset.Repository
// satisfies it; memoryIndex serves when no snapshot is configured.
type ruleIndex interface {
	Lookup(text string) (domain.Rule, bool)
	Rules() ([]domain.Rule, error)
}

// Run parses the configured rule list and refreshes the snapshot if one is
// configured. With arguments it reports each as found or missing; without
// arguments it lists every distinct rule in file order.
func (app *Application) Run(args []string) error {
	result, err := parsers.ParseFile(app.config.Rules.File, app.logger)
	if err != nil {
		return fmt.Errorf("failed to parse rule list: %w", err)
	}

	wildcards, exceptions := result.RuleCounts()
	app.logger.Info(map[string]any{
		"file":       app.config.Rules.File,
		"lines":      result.Lines(),
		"rules":      len(result.Rules),
		"wildcards":  wildcards,
		"exceptions": exceptions,
		"comments":   result.CommentLines,
		"whitespace": result.WhitespaceLines,
		"invalid":    result.InvalidRules,
	}, "Rule list parsed")

	var index ruleIndex = newMemoryIndex(result)
	if app.repo != nil {
		if err := app.refreshSnapshot(result); err != nil {
			return err
		}
		index = app.repo
	}

	if len(args) == 0 {
		return app.listRules(index)
	}
	for _, arg := range args {
		rule, ok := index.Lookup(arg)
		if !ok {
			if _, err := fmt.Fprintf(app.out, "%s\tmissing\n", arg); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(app.out, "%s\tfound\t%s\t%s\n", arg, rule.String(), rule.Section); err != nil {
			return err
		}
	}
	return nil
}

// refreshSnapshot rebuilds the snapshot from result as the next version,
// after purging it when a reset is configured.
func (app *Application) refreshSnapshot(result domain.ParseResult) error {
	if app.config.Rules.Reset {
		if err := app.store.Purge(); err != nil {
			return fmt.Errorf("failed to reset rule snapshot: %w", err)
		}
		app.logger.Info(map[string]any{"path": app.config.Rules.DB}, "Rule snapshot reset")
	}

	next := app.store.Stats().Version + 1
	if err := app.repo.UpdateAll(result, next, app.clock.Now().Unix()); err != nil {
		return fmt.Errorf("failed to rebuild rule snapshot: %w", err)
	}
	stats := app.repo.Stats()
	app.logger.Info(map[string]any{
		"version":    stats.Store.Version,
		"rules":      stats.Store.Rules,
		"duplicates": stats.Store.Duplicates,
	}, "Rule snapshot rebuilt")
	return nil
}

func (app *Application) listRules(index ruleIndex) error {
	rules, err := index.Rules()
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}
	for _, rule := range rules {
		if _, err := fmt.Fprintf(app.out, "%s\t%s\n", rule.String(), rule.Section); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the snapshot, if any.
func (app *Application) Close() error {
	if app.store == nil {
		return nil
	}
	return app.store.Close()
}

// memoryIndex keys a parse result by rule key. The first occurrence of a key
// wins, matching the snapshot store.
type memoryIndex struct {
	byKey map[string]domain.Rule
	rules []domain.Rule
}

func newMemoryIndex(result domain.ParseResult) *memoryIndex {
	idx := &memoryIndex{byKey: make(map[string]domain.Rule, len(result.Rules))}
	for _, rule := range result.Rules {
		if _, seen := idx.byKey[rule.Key()]; seen {
			continue
		}
		idx.byKey[rule.Key()] = rule
		idx.rules = append(idx.rules, rule)
	}
	return idx
}

func (idx *memoryIndex) Lookup(text string) (domain.Rule, bool) {
	rule, err := domain.NewRule(utils.CanonicalDNSName(text))
	if err != nil {
		return domain.Rule{}, false
	}
	found, ok := idx.byKey[rule.Key()]
	return found, ok
}

func (idx *memoryIndex) Rules() ([]domain.Rule, error) { return idx.rules, nil }
