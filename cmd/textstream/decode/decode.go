// Package decodecmder provides the decode command, which decodes a recorded
// completion stream offline.
package decodecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/textstream/pkg/cliui"
	"github.com/papercomputeco/textstream/pkg/config"
	"github.com/papercomputeco/textstream/pkg/decoder"
	"github.com/papercomputeco/textstream/pkg/logger"
)

type decodeCommander struct {
	chunkSize     uint
	throttleMs    uint
	maxCarryBytes uint
	markdown      bool
	stats         bool

	debug   bool
	logFile string

	logger *slog.Logger
}

// decodeFlags are the registry flags "decode" binds to viper.
var decodeFlags = []string{
	config.FlagChunkSize,
	config.FlagThrottle,
	config.FlagMaxCarryBytes,
}

const decodeLongDesc string = `Decode a recorded completion stream.

Reads an event stream captured with "textstream complete --record" (or any
data:/delta: stream) from a file, or from stdin when the file is "-" or
omitted, and prints the completion text as it is decoded.

--chunk-size sets how many bytes each read takes from the recording, so
lines and multi-byte characters can be split the way a slow network would
split them.

Examples:
  textstream decode story.sse
  textstream decode --chunk-size 7 --throttle 50 story.sse
  cat story.sse | textstream decode --stats`

const decodeShortDesc string = "Decode a recorded completion stream"

func NewDecodeCmd() *cobra.Command {
	cmder := &decodeCommander{}

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, decodeFlags)

			cmder.chunkSize = v.GetUint("replay.chunk_size")
			cmder.throttleMs = v.GetUint("stream.throttle_ms")
			cmder.maxCarryBytes = v.GetUint("stream.max_carry_bytes")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFile, _ = cmd.Flags().GetString("log-file")

			source := "-"
			if len(args) == 1 {
				source = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), source)
		},
	}

	config.AddUintFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagThrottle, &cmder.throttleMs)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxCarryBytes, &cmder.maxCarryBytes)
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the final text as markdown instead of streaming it")
	cmd.Flags().BoolVar(&cmder.stats, "stats", false, "Print decode statistics to stderr")

	return cmd
}

func (c *decodeCommander) run(ctx context.Context, in io.Reader, out, errOut io.Writer, source string) error {
	var closeLog func() error
	var err error
	c.logger, closeLog, err = logger.CLI(c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	r := in
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("opening recording: %w", err)
		}
		defer f.Close()
		r = f
	}

	var onText decoder.TextFunc
	if !c.markdown {
		onText = cliui.NewTextPrinter(out).Print
	}

	d := decoder.New(r, onText,
		decoder.WithLogger(c.logger),
		decoder.WithReadSize(int(c.chunkSize)),
		decoder.WithMaxCarryBytes(int(c.maxCarryBytes)),
		decoder.WithThrottle(time.Duration(c.throttleMs)*time.Millisecond),
	)

	start := time.Now()
	text, err := d.Decode(ctx)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", source, err)
	}

	if c.markdown {
		rendered, err := cliui.RenderMarkdown(text)
		if err != nil {
			c.logger.Warn("rendering markdown", "error", err)
		}
		fmt.Fprint(out, rendered)
	} else {
		fmt.Fprintln(out)
	}

	if c.stats {
		printStats(errOut, d.Stats(), time.Since(start))
	}

	return nil
}

func printStats(w io.Writer, s decoder.Stats, elapsed time.Duration) {
	rows := []struct {
		key   string
		value string
	}{
		{"chunks", fmt.Sprint(s.Chunks)},
		{"frames", fmt.Sprint(s.Frames)},
		{"callbacks", fmt.Sprint(s.Callbacks)},
		{"warnings", fmt.Sprint(s.Warnings)},
		{"elapsed", cliui.FormatDuration(elapsed)},
	}

	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("%-10s", row.key)),
			cliui.ValueStyle.Render(row.value),
		)
	}
}
