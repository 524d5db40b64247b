// Package completecmder provides the complete command, which streams a
// completion from an LLM endpoint and prints the text as it arrives.
package completecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/textstream/pkg/cliui"
	"github.com/papercomputeco/textstream/pkg/completion"
	"github.com/papercomputeco/textstream/pkg/config"
	"github.com/papercomputeco/textstream/pkg/decoder"
	"github.com/papercomputeco/textstream/pkg/dotdir"
	"github.com/papercomputeco/textstream/pkg/eventstream"
	"github.com/papercomputeco/textstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/textstream/pkg/eventstream/nop"
	"github.com/papercomputeco/textstream/pkg/logger"
)

type completeCommander struct {
	host          string
	path          string
	model         string
	apiKey        string
	maxTokens     uint
	temperature   float64
	throttleMs    uint
	readSize      uint
	maxCarryBytes uint
	brokers       []string
	topic         string

	continueLast bool
	record       string
	markdown     bool

	debug     bool
	configDir string
	logFile   string

	logger *slog.Logger
}

// completeFlags are the registry flags "complete" binds to viper.
var completeFlags = []string{
	config.FlagHost,
	config.FlagPath,
	config.FlagModel,
	config.FlagAPIKey,
	config.FlagMaxTokens,
	config.FlagThrottle,
	config.FlagReadSize,
	config.FlagMaxCarryBytes,
	config.FlagBrokers,
	config.FlagTopic,
}

const completeLongDesc string = `Stream a completion and print the text as it arrives.

The prompt is taken from the arguments or, when none are given, from stdin.
The request is sent to <host><path> with "stream": true and the response is
decoded incrementally: each update prints only the newly generated text.

With --continue the prompt is appended to the previous prompt and its
completion, so a story can be extended one call at a time.

When Kafka brokers are configured, a completion event is published after
each successful stream.

Examples:
  textstream complete "Once upon a time"
  textstream complete --throttle 100 --record story.sse "Once upon a time"
  textstream complete --continue " And then"
  echo "Write a haiku about rivers" | textstream complete --markdown`

const completeShortDesc string = "Stream a completion to stdout"

func NewCompleteCmd() *cobra.Command {
	cmder := &completeCommander{}

	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: completeShortDesc,
		Long:  completeLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, completeFlags)

			cmder.host = v.GetString("client.host")
			cmder.path = v.GetString("client.path")
			cmder.model = v.GetString("client.model")
			cmder.apiKey = v.GetString("client.api_key")
			cmder.maxTokens = v.GetUint("client.max_tokens")
			cmder.throttleMs = v.GetUint("stream.throttle_ms")
			cmder.readSize = v.GetUint("stream.read_size")
			cmder.maxCarryBytes = v.GetUint("stream.max_carry_bytes")
			cmder.brokers = config.SplitList(strings.Join(v.GetStringSlice("eventstream.brokers"), ","))
			cmder.topic = v.GetString("eventstream.topic")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFile, _ = cmd.Flags().GetString("log-file")

			prompt, err := cmder.readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), prompt)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagHost, &cmder.host)
	config.AddStringFlag(cmd, config.Flags, config.FlagPath, &cmder.path)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddUintFlag(cmd, config.Flags, config.FlagThrottle, &cmder.throttleMs)
	config.AddUintFlag(cmd, config.Flags, config.FlagReadSize, &cmder.readSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxCarryBytes, &cmder.maxCarryBytes)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagTopic, &cmder.topic)

	cmd.Flags().Float64Var(&cmder.temperature, "temperature", 0.7, "Sampling temperature")
	cmd.Flags().BoolVarP(&cmder.continueLast, "continue", "c", false, "Continue from the previous prompt and completion")
	cmd.Flags().StringVar(&cmder.record, "record", "", "Write the raw response stream to this file")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the final text as markdown instead of streaming it")

	return cmd
}

// readPrompt joins the arguments or, without any, reads stdin unless it is
// a terminal.
func (c *completeCommander) readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}

	return strings.TrimSuffix(string(data), "\n"), nil
}

func (c *completeCommander) run(ctx context.Context, out, errOut io.Writer, prompt string) error {
	var closeLog func() error
	var err error
	c.logger, closeLog, err = logger.CLI(c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ddm := dotdir.NewManager()

	if c.continueLast {
		last, err := ddm.LoadLast(c.configDir)
		if err != nil {
			return err
		}

		if last == nil {
			c.logger.Warn("no previous completion to continue, starting fresh")
		} else {
			prompt = last.Continuation(prompt)
		}
	}

	if prompt == "" {
		return errors.New("a prompt is required: pass it as arguments or on stdin")
	}

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			c.logger.Warn("closing event publisher", "error", err)
		}
	}()

	opts := []completion.Option{
		completion.WithLogger(c.logger),
		completion.WithPublisher(publisher),
		completion.WithDecoderOptions(
			decoder.WithReadSize(int(c.readSize)),
			decoder.WithMaxCarryBytes(int(c.maxCarryBytes)),
		),
	}

	if c.record != "" {
		f, err := os.Create(c.record)
		if err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}
		defer f.Close()

		opts = append(opts, completion.WithRecorder(f))
	}

	client := completion.NewClient(opts...)
	req := completion.Request{
		APIKey: c.apiKey,
		Host:   c.host,
		Path:   c.path,
		Args: map[string]any{
			"model":       c.model,
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
		},
		Throttle: time.Duration(c.throttleMs) * time.Millisecond,
	}

	c.logger.Debug("streaming completion",
		"host", c.host,
		"path", c.path,
		"model", c.model,
		"throttle_ms", c.throttleMs,
	)

	var text string
	if c.markdown {
		err = cliui.Step(errOut, "Streaming completion", func() error {
			var streamErr error
			text, streamErr = client.Stream(ctx, req, nil)
			return streamErr
		})
		if err != nil {
			return err
		}

		rendered, err := cliui.RenderMarkdown(text)
		if err != nil {
			c.logger.Warn("rendering markdown", "error", err)
		}
		fmt.Fprint(out, rendered)
	} else {
		printer := cliui.NewTextPrinter(out)
		text, err = client.Stream(ctx, req, printer.Print)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	last := &dotdir.LastCompletion{
		Prompt:      prompt,
		Text:        text,
		Model:       c.model,
		CompletedAt: time.Now().UTC(),
	}
	if err := ddm.SaveLast(last, c.configDir); err != nil {
		c.logger.Warn("saving last completion", "error", err)
	}

	return nil
}

func (c *completeCommander) newPublisher() (eventstream.Publisher, error) {
	if len(c.brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.brokers,
		Topic:   c.topic,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing completion events",
		"brokers", strings.Join(c.brokers, ","),
		"topic", c.topic,
	)
	return publisher, nil
}
