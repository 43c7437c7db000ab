package main

import (
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/felixge/fgprof"
)

// startProfiling starts the profilers requested in cfg. The returned
// function stops them and closes their files.
//
//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func startProfiling(cfg config, logger *slog.Logger) (func(), error) {
	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if cfg.fgProfile != "" {
		fgFile, err := os.Create(cfg.fgProfile)
		if err != nil {
			return nil, err
		}
		stopFG := fgprof.Start(fgFile, fgprof.FormatPprof)
		stops = append(stops, func() {
			if err := stopFG(); err != nil {
				logger.Warn("fgprof stop error", slog.Any("error", err))
			}
			_ = fgFile.Close()
		})
	}

	if cfg.cpuProfile != "" {
		cpuFile, err := os.Create(cfg.cpuProfile)
		if err != nil {
			stop()
			return nil, err
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			_ = cpuFile.Close()
			stop()
			return nil, err
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		})
	}

	return stop, nil
}
