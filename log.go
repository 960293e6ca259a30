package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "dexvote").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "dexvote.log"), nil
}

func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		// log disabled
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		// log disabled
		return func() error { return nil }, nil
	}
	log.SetOutput(f)
	return f.Close, nil
}
