package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
	"github.com/jesseduffield/yaml"
	"github.com/sirupsen/logrus"

	"github.com/jesseduffield/wasmsplit/pkg/autosplit"
	"github.com/jesseduffield/wasmsplit/pkg/config"
	applog "github.com/jesseduffield/wasmsplit/pkg/log"
	"github.com/jesseduffield/wasmsplit/pkg/timer"
)

const defaultVersion = "unversioned"

var (
	commit  string
	version = defaultVersion
	date    string

	configFlag    = false
	debuggingFlag = false
	guestPath     = ""
)

func main() {
	info := fmt.Sprintf(
		"%s\nDate: %s\nCommit: %s\nOS: %s\nArch: %s",
		version, date, commit, runtime.GOOS, runtime.GOARCH,
	)

	flaggy.SetName("wasmsplit")
	flaggy.SetDescription("Sandboxed host runtime for WASM auto-splitters")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/jesseduffield/wasmsplit"

	flaggy.Bool(&configFlag, "c", "config", "Print the current default config")
	flaggy.Bool(&debuggingFlag, "d", "debug", "a boolean")
	flaggy.String(&guestPath, "g", "guest", "Path to the guest .wasm module to run")
	flaggy.SetVersion(info)

	flaggy.Parse()

	if configFlag {
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		if err := encoder.Encode(config.GetDefaultConfig()); err != nil {
			log.Fatal(err.Error())
		}
		fmt.Printf("%v\n", buf.String())
		os.Exit(0)
	}

	appConfig, err := config.NewAppConfig("wasmsplit", version, commit, date, debuggingFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	if guestPath == "" {
		guestPath = appConfig.UserConfig.GuestPath
	}
	if guestPath == "" {
		log.Fatal("no guest module given: pass --guest <path to .wasm> or set guestPath in config.yml")
	}

	logger := applog.NewLogger(appConfig)

	if err := run(appConfig, logger, guestPath); err != nil {
		newErr := errors.Wrap(err, 0)
		stackTrace := newErr.ErrorStack()
		logger.Error(stackTrace)
		log.Fatalf("wasmsplit exited with an error:\n\n%s", stackTrace)
	}
}

func run(appConfig *config.AppConfig, logger *logrus.Entry, guestPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down on signal")
		cancel()
	}()

	gameTimer := timer.NewLoggingTimer(timer.NullTimer{}, logger)

	runtime, err := autosplit.New(ctx, guestPath, gameTimer, appConfig.UserConfig.TickRate, logger)
	if err != nil {
		return err
	}
	defer runtime.Close(ctx)

	for ctx.Err() == nil {
		if err := runtime.Step(ctx); err != nil {
			logger.WithError(err).Warn("guest update failed")
		}
		runtime.Sleep()
	}

	return nil
}
