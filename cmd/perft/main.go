// Command perft counts the leaves of the legal move tree from a position,
// optionally split by root move and backed by the on-disk node-count cache.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/storage"
)

var (
	fen        = flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth      = flag.Int("depth", 0, "perft depth (required)")
	divide     = flag.Bool("divide", false, "print per-move node counts at root")
	useCache   = flag.Bool("cache", false, "use the on-disk node-count cache")
	cacheDir   = flag.String("cache-dir", "", "cache directory (defaults to the user data directory)")
	hashMB     = flag.Int("hash", 64, "size in MB of the in-memory table when -cache is off (0 disables it)")
	progress   = flag.Bool("progress", false, "show a progress bar over the root moves")
	profileOut = flag.String("profile", "", "write a cpu or mem profile to the current directory")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := &log.Logger{Handler: cli.New(os.Stderr), Level: level}

	os.Exit(run(logger))
}

func run(logger *log.Logger) int {
	if *depth <= 0 {
		logger.Error("-depth must be > 0")
		return 2
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		logger.WithError(err).Error("parse fen")
		return 2
	}

	switch *profileOut {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		logger.WithField("profile", *profileOut).Error("unknown profile mode")
		return 2
	}

	var cache *storage.PerftCache
	if *useCache {
		dir := *cacheDir
		if dir == "" {
			if dir, err = storage.GetCacheDir(); err != nil {
				logger.WithError(err).Error("cache directory")
				return 1
			}
		}
		if cache, err = storage.Open(dir, storage.WithLogger(logger)); err != nil {
			logger.WithError(err).Error("open cache")
			return 1
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.WithError(err).Warn("close cache")
			}
		}()

		if prev, err := cache.LoadRun(pos.ToFEN(), *depth); err != nil {
			logger.WithError(err).Warn("load previous run")
		} else if prev != nil {
			logger.WithFields(log.Fields{
				"nodes": prev.Nodes,
				"at":    prev.At.Format(time.RFC3339),
			}).WithDuration(prev.Duration).Info("previous run")
		}
	}

	var bar *progressbar.ProgressBar
	var visit func(board.Move, uint64)
	if *progress {
		bar = progressbar.Default(int64(len(pos.LegalMoves())), fmt.Sprint("depth ", *depth))
		visit = func(board.Move, uint64) { _ = bar.Add(1) }
	}

	// A nil *storage.PerftCache must not reach Perft as a non-nil interface.
	var pc board.PerftCache
	var table *storage.Table
	switch {
	case cache != nil:
		pc = cache
	case *hashMB > 0:
		table = storage.NewTable(*hashMB)
		pc = table
	}

	start := time.Now()
	counts := board.Divide(pos, *depth, pc, visit)
	elapsed := time.Since(start)
	if bar != nil {
		_ = bar.Finish()
	}

	moves := maps.Keys(counts)
	slices.Sort(moves)

	var nodes uint64
	for _, m := range moves {
		nodes += counts[m]
		if *divide {
			fmt.Printf("%s: %d\n", m, counts[m])
		}
	}
	if *divide {
		fmt.Println()
	}

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/secs)
	}

	if table != nil {
		logger.WithField("hit_rate", fmt.Sprintf("%.1f%%", table.HitRate())).Debug("table")
	}

	if cache != nil {
		hits, misses := cache.Stats()
		logger.WithFields(log.Fields{"hits": hits, "misses": misses}).Debug("cache")

		rec := &storage.PerftRun{FEN: pos.ToFEN(), Depth: *depth, Nodes: nodes, Duration: elapsed, At: start}
		if err := cache.SaveRun(rec); err != nil {
			logger.WithError(err).Warn("save run")
		}
	}
	return 0
}
