package commands

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
	"github.com/teranos/specgraph/spec"
	"github.com/teranos/specgraph/spec/cachestore"
	"github.com/teranos/specgraph/watch"
)

// WatchCmd reloads the repository whenever item files change
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the repository whenever item files change",
	Long: `Watch the specification roots and reload the repository after every
burst of changes. Snapshots of unchanged directories are served from
memory, so a reload only parses the directories that changed.

With --exec the given command runs after every successful reload.

Examples:
  specgraph watch
  specgraph watch --exec 'make docs'`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchExec      string
	watchPerMinute int
)

func init() {
	WatchCmd.Flags().StringVar(&watchExec, "exec", "", "Command to run after every successful reload")
	WatchCmd.Flags().IntVar(&watchPerMinute, "max-reloads", 60, "Maximum reloads per minute")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var execArgs []string
	if watchExec != "" {
		if execArgs, err = shellquote.Split(watchExec); err != nil {
			return errors.Wrapf(err, "invalid --exec command %q", watchExec)
		}
	}

	backing, err := openStore(cfg)
	if err != nil {
		return err
	}
	memory, err := cachestore.NewMemoryStore(cfg.Cache.MemoryEntries)
	if err != nil {
		backing.Close()
		return err
	}
	store := cachestore.NewTiered(memory, backing)
	defer store.Close()

	log := logger.ComponentLogger("watch")
	repoCfg := cfg.ToRepositoryConfig()
	repoLogger := spec.WithLogger(logger.ComponentLogger("spec"))

	repo, err := spec.New(repoCfg, store, repoLogger)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Loaded %d items, watching for changes\n", repo.Len())

	w, err := watch.New(repoCfg.Paths, watch.Options{
		CacheDirectory: repoCfg.CacheDirectory,
		Exclude:        repoCfg.Exclude,
		Debounce:       time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Limit(float64(max(watchPerMinute, 1))/60.0), 1)
	var mu sync.Mutex

	w.OnChange(func(changed []string) error {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()

		reloadID := uuid.NewString()
		start := time.Now()
		next, err := spec.New(repoCfg, store, repoLogger)
		if err != nil {
			pterm.Error.Printf("Reload failed: %v\n", err)
			log.Warnw("Reload failed",
				"reload_id", reloadID,
				logger.FieldCount, len(changed),
				logger.FieldError, err)
			return nil
		}
		repo = next

		pterm.Success.Printf("Reloaded %d items (%d directories changed) in %dms\n",
			repo.Len(), repo.UpdateCount(), elapsedMS(start))
		log.Infow("Reloaded repository",
			"reload_id", reloadID,
			logger.FieldItems, repo.Len(),
			logger.FieldCacheUpdates, repo.UpdateCount(),
			logger.FieldDurationMS, elapsedMS(start))

		if len(execArgs) > 0 {
			return runAfterReload(ctx, execArgs, reloadID)
		}
		return nil
	})

	return w.Run(ctx)
}

func runAfterReload(ctx context.Context, args []string, reloadID string) error {
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(), "SPECGRAPH_RELOAD_ID="+reloadID)
	if err := c.Run(); err != nil {
		return errors.Wrapf(err, "command %q failed", args[0])
	}
	return nil
}
