package commands

import (
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/errors"
)

// LoadCmd loads the repository and reports what the cache did
var LoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the repository and report cache usage",
	Long: `Load every item below the configured roots.

Directories whose cache snapshot is current are read from the cache; all
others are parsed and their snapshot is rewritten.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

var loadStatsFlag bool

func init() {
	LoadCmd.Flags().BoolVar(&loadStatsFlag, "stats", false, "Also report process memory after loading")
}

func runLoad(cmd *cobra.Command, args []string) error {
	start := time.Now()
	repo, store, err := openRepository()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := repo.Config()
	pterm.Success.Printf("Loaded %d items (%d top-level) in %dms\n",
		repo.Len(), len(repo.TopLevel()), elapsedMS(start))
	pterm.Info.Printf("Roots: %v\n", cfg.Paths)
	if repo.Updates() {
		pterm.Info.Printf("Cache: %d directories updated\n", repo.UpdateCount())
	} else {
		pterm.Info.Println("Cache: all directories current")
	}

	if loadStatsFlag {
		rss, err := residentMemory()
		if err != nil {
			return err
		}
		pterm.Info.Printf("Resident memory: %.1f MiB\n", float64(rss)/(1<<20))
	}
	return nil
}

// residentMemory returns the resident set size of this process in bytes
func residentMemory() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, errors.Wrap(err, "failed to inspect process")
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get memory stats")
	}
	return info.RSS, nil
}
