// Package replaycmder provides the replay command, which serves a recorded
// completion stream over HTTP.
package replaycmder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/textstream/pkg/config"
	"github.com/papercomputeco/textstream/pkg/logger"
	"github.com/papercomputeco/textstream/pkg/replay"
)

type replayCommander struct {
	file       string
	listen     string
	path       string
	chunkSize  uint
	delayMs    uint
	requireKey string

	debug   bool
	logFile string

	logger *slog.Logger
}

// replayFlags are the registry flags "replay" binds to viper.
var replayFlags = []string{
	config.FlagReplayListen,
	config.FlagPath,
	config.FlagChunkSize,
	config.FlagDelay,
}

const replayLongDesc string = `Serve a recorded completion stream over HTTP.

Every POST to the completion path answers with the recording as a
text/event-stream, written in --chunk-size byte chunks with --delay
milliseconds between them. Point "textstream complete" at the server to
exercise decoding without a live LLM endpoint.

Examples:
  textstream replay --file story.sse
  textstream replay --file story.sse --chunk-size 5 --delay 50
  textstream complete --host http://localhost:8089 "Once upon a time"`

const replayShortDesc string = "Serve a recorded completion stream"

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, replayFlags)

			cmder.listen = v.GetString("replay.listen")
			cmder.path = v.GetString("client.path")
			cmder.chunkSize = v.GetUint("replay.chunk_size")
			cmder.delayMs = v.GetUint("replay.delay_ms")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFile, _ = cmd.Flags().GetString("log-file")
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "Recorded stream to serve (from \"textstream complete --record\")")
	cmd.Flags().StringVar(&cmder.requireKey, "require-key", "", "Reject requests without this bearer token")
	_ = cmd.MarkFlagRequired("file")

	config.AddStringFlag(cmd, config.Flags, config.FlagReplayListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagPath, &cmder.path)
	config.AddUintFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagDelay, &cmder.delayMs)

	return cmd
}

func (c *replayCommander) run() error {
	var closeLog func() error
	var err error
	c.logger, closeLog, err = logger.CLI(c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	stream, err := c.loadRecording()
	if err != nil {
		return err
	}

	server := replay.NewServer(replay.Config{
		ListenAddr: c.listen,
		Path:       c.path,
		ChunkSize:  int(c.chunkSize),
		Delay:      time.Duration(c.delayMs) * time.Millisecond,
		APIKey:     c.requireKey,
	}, stream, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("replay server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *replayCommander) loadRecording() ([]byte, error) {
	stream, err := os.ReadFile(c.file)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	if len(stream) == 0 {
		return nil, errors.New("recording is empty")
	}
	return stream, nil
}
