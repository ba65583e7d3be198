// Command chessbot speaks UCI on stdin/stdout and plays moves chosen by the
// built-in bot. Diagnostics go to stderr.
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/profile"

	"github.com/hailam/chessbot/internal/bot"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
	"github.com/hailam/chessbot/internal/uci"
)

var (
	name       = flag.String("name", "chessbot", "engine name reported to the GUI")
	author     = flag.String("author", "chessbot authors", "engine author reported to the GUI")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	seed       = flag.Int64("seed", 0, "random seed for the bot (0 uses the current time)")
	cache      = flag.Bool("cache", false, "keep perft counts in the on-disk cache")
	hashMB     = flag.Int("hash", 16, "size in MB of the in-memory perft table when -cache is off")
	profileOut = flag.String("profile", "", "write a cpu or mem profile to the current directory")
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

	opts := []uci.Option{
		uci.WithLogger(logger),
		uci.WithID(*name, *author),
	}

	if *cache {
		dir, err := storage.GetCacheDir()
		if err != nil {
			logger.WithError(err).Error("cache directory")
			return 1
		}
		pc, err := storage.Open(dir, storage.WithLogger(logger))
		if err != nil {
			logger.WithError(err).Error("open perft cache")
			return 1
		}
		defer func() {
			if err := pc.Close(); err != nil {
				logger.WithError(err).Warn("close perft cache")
			}
		}()
		opts = append(opts, uci.WithPerftCache(pc))
	} else if *hashMB > 0 {
		opts = append(opts, uci.WithPerftCache(storage.NewTable(*hashMB)))
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	eng := engine.New(os.Stdout, engine.WithLogger(logger))
	defer eng.Close()

	b := bot.New(s, bot.WithLogger(logger))
	go func() {
		if err := b.Play(eng); err != nil {
			logger.WithError(err).Error("bot stopped")
		}
	}()

	logger.WithFields(log.Fields{"name": *name, "seed": s}).Debug("ready")

	err := uci.New(eng, os.Stdin, opts...).Run()
	if err != nil && !errors.Is(err, uci.ErrQuit) {
		logger.WithError(err).Error("protocol")
		return 1
	}
	return 0
}
