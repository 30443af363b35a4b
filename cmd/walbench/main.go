// Command walbench drives the commit log executor against a real segment file
// and compares per-operation and batch sync modes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/commitlog/commitlog"
	"github.com/utkarsh5026/commitlog/internal/segment"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

type benchConfig struct {
	appends     int
	producers   int
	payloadSize int
	window      time.Duration
	capacity    int
	rate        float64
	cpu         int
	dir         string
	progress    bool
}

// RunResult holds the outcome of one mode.
type RunResult struct {
	Mode       commitlog.SyncMode
	TotalTime  time.Duration
	AppendsPS  float64
	Syncs      int64
	Completed  int64
	LargestGrp int
	Err        error
}

func main() {
	appendsFlag := flag.Int("appends", 20_000, "Total number of log appends per mode")
	producersFlag := flag.Int("producers", 32, "Number of concurrent writers")
	payloadFlag := flag.Int("payload", 256, "Payload size in bytes")
	windowFlag := flag.Duration("window", time.Millisecond, "Batch window")
	capacityFlag := flag.Int("capacity", 0, "Queue capacity (0 = derive from mode)")
	rateFlag := flag.Float64("rate", 0, "Appends per second across all producers (0 = unlimited)")
	cpuFlag := flag.Int("cpu", -1, "Pin the worker to this CPU (-1 = unpinned)")
	modeFlag := flag.String("mode", "", "Run a single sync mode (periodic or batch). If empty, runs both")
	dirFlag := flag.String("dir", "", "Directory for segment files (default: a temp dir)")
	verboseFlag := flag.Bool("v", false, "Verbose logging")
	noProgressFlag := flag.Bool("no-progress", false, "Disable the progress bar")
	flag.Parse()

	logger := newLogger(*verboseFlag)

	modes := []commitlog.SyncMode{commitlog.SyncPerOperation, commitlog.SyncBatch}
	if *modeFlag != "" {
		mode, err := commitlog.ParseSyncMode(*modeFlag)
		if err != nil {
			_, _ = red.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		modes = []commitlog.SyncMode{mode}
	}

	dir := *dirFlag
	if dir == "" {
		tmp, err := os.MkdirTemp("", "walbench-")
		if err != nil {
			_, _ = red.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	cfg := benchConfig{
		appends:     *appendsFlag,
		producers:   max(*producersFlag, 1),
		payloadSize: *payloadFlag,
		window:      *windowFlag,
		capacity:    *capacityFlag,
		rate:        *rateFlag,
		cpu:         *cpuFlag,
		dir:         dir,
		progress:    !*noProgressFlag,
	}

	printHeader(cfg)

	results := make([]RunResult, 0, len(modes))
	for i, mode := range modes {
		results = append(results, runMode(context.Background(), cfg, mode, int64(i), logger))
	}

	printResults(results)
}

func newLogger(verbose bool) *slog.Logger {
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "walbench",
	})
	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	}
	return slog.New(handler)
}

func runMode(ctx context.Context, cfg benchConfig, mode commitlog.SyncMode, segmentID int64, logger *slog.Logger) RunResult {
	result := RunResult{Mode: mode}

	seg, err := segment.Open(filepath.Join(cfg.dir, mode.String()), segmentID)
	if err != nil {
		result.Err = err
		return result
	}
	defer seg.Close()

	var mu sync.Mutex
	opts := []commitlog.ExecutorOption{
		commitlog.WithSyncMode(mode),
		commitlog.WithBatchWindow(cfg.window),
		commitlog.WithConcurrentWriters(cfg.producers),
		commitlog.WithCPUAffinity(cfg.cpu),
		commitlog.WithLogger(logger.With("mode", mode.String())),
		commitlog.WithOnSync(func(n int, _ time.Duration) {
			mu.Lock()
			result.LargestGrp = max(result.LargestGrp, n)
			mu.Unlock()
		}),
		commitlog.WithOnFatal(func(err error) {
			logger.Error("commit log worker died, exiting", "mode", mode.String(), "err", err)
			os.Exit(1)
		}),
	}
	if cfg.capacity > 0 {
		opts = append(opts, commitlog.WithQueueCapacity(cfg.capacity))
	}

	exec, err := commitlog.NewExecutor[segment.Position](seg, opts...)
	if err != nil {
		result.Err = err
		return result
	}

	var limiter *rate.Limiter
	if cfg.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rate), cfg.producers)
	}

	var bar *progressbar.ProgressBar
	if cfg.progress {
		bar = newProgressBar(cfg.appends, mode)
	}

	payload := make([]byte, cfg.payloadSize)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for p := range cfg.producers {
		share := cfg.appends / cfg.producers
		if p < cfg.appends%cfg.producers {
			share++
		}

		g.Go(func() error {
			for range share {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}

				f, err := exec.Append(func() (segment.Position, error) { return seg.Append(payload) })
				if err != nil {
					return err
				}
				if _, _, err := f.Get(); err != nil {
					return err
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		result.Err = err
		return result
	}
	result.TotalTime = time.Since(start)

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	// Per-operation mode leaves durability to the log.
	if mode == commitlog.SyncPerOperation {
		if err := seg.Sync(); err != nil {
			result.Err = err
			return result
		}
	}

	stats := settledStats(exec, int64(cfg.appends), time.Second)
	result.Syncs = stats.SyncCount
	result.Completed = stats.CompletedTasks
	result.AppendsPS = float64(cfg.appends) / result.TotalTime.Seconds()

	logger.Debug("mode finished", "mode", mode.String(), "took", result.TotalTime, "segment_bytes", seg.Size())
	return result
}

// settledStats waits for the worker to count the last group. Handles resolve
// before the counters move, so a snapshot taken right after the final Get can
// be one group short.
func settledStats(exec *commitlog.Executor[segment.Position], want int64, timeout time.Duration) commitlog.Stats {
	deadline := time.Now().Add(timeout)
	for exec.CompletedTasks() < want && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return exec.Stats()
}

func newProgressBar(total int, mode commitlog.SyncMode) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("%-9s", mode.String())),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func printHeader(cfg benchConfig) {
	_, _ = bold.Println("Commit log executor benchmark")
	fmt.Printf("  appends:   %d\n", cfg.appends)
	fmt.Printf("  producers: %d\n", cfg.producers)
	fmt.Printf("  payload:   %d bytes\n", cfg.payloadSize)
	fmt.Printf("  window:    %v\n", cfg.window)
	if cfg.rate > 0 {
		fmt.Printf("  rate:      %.0f appends/s\n", cfg.rate)
	}
	fmt.Printf("  dir:       %s\n\n", cfg.dir)
}

func printResults(results []RunResult) {
	fmt.Println()
	_, _ = bold.Println("Results")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Mode", "Time", "Appends/sec", "Syncs", "Completed", "Avg Group", "Max Group")

	var failed []RunResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}

		avg := "-"
		if r.Syncs > 0 {
			avg = fmt.Sprintf("%.1f", float64(r.Completed)/float64(r.Syncs))
		}
		largest := "-"
		if r.LargestGrp > 0 {
			largest = fmt.Sprintf("%d", r.LargestGrp)
		}

		_ = table.Append(
			r.Mode.String(),
			r.TotalTime.Round(time.Millisecond).String(),
			fmt.Sprintf("%.0f", r.AppendsPS),
			fmt.Sprintf("%d", r.Syncs),
			fmt.Sprintf("%d", r.Completed),
			avg,
			largest,
		)
	}
	_ = table.Render()

	if len(failed) > 0 {
		fmt.Println()
		_, _ = red.Println("Failed modes:")
		for _, r := range failed {
			_, _ = red.Printf("  %s: %v\n", r.Mode, r.Err)
		}
		return
	}

	if len(results) == 2 && results[0].TotalTime > 0 && results[1].TotalTime > 0 {
		speedup := float64(results[0].TotalTime) / float64(results[1].TotalTime)
		line := green
		if speedup < 1 {
			line = yellow
		}
		_, _ = line.Printf("\nbatch vs periodic: %.2fx\n", speedup)
	}
}
