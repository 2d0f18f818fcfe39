// SPDX-License-Identifier: EPL-2.0

// Command nbswave renders a Note Block Studio song into an audio file.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nbstools/nbswave"
)

var opts nbswave.RenderOptions
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "nbswave <song.nbs> <output.wav>",
	Short: "Render a Note Block Studio song to audio",
	Long: `Renders a .nbs score into a single audio file: notes are
pitch-shifted, panned and mixed according to their layers and
instruments, including hidden tempo changers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger(verbose)
		cmd.SilenceUsage = true
		return nbswave.RenderAudio(args[0], args[1], opts)
	},
}

// initLogger installs a text handler on stderr; -v enables debug lines
// (mixer buffer growth, per-group scheduling).
func initLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.DefaultSoundPath, "sounds", "sounds", "directory with the built-in instrument samples")
	flags.StringVar(&opts.CustomSoundPath, "custom-sounds", "", "directory or .zip with custom instrument samples (defaults to --sounds)")
	flags.IntVar(&opts.SampleRate, "sample-rate", 44100, "output sample rate in Hz")
	flags.IntVar(&opts.Channels, "channels", 2, "output channel count")
	flags.IntVar(&opts.BitDepth, "bit-depth", 16, "output bit depth (16, 24 or 32)")
	flags.IntVar(&opts.TargetBitrate, "bitrate", 320, "target bitrate in kbps (compressed formats)")
	flags.IntVar(&opts.TargetSize, "target-size", 0, "target output size in kB (caps the bitrate)")
	flags.BoolVar(&opts.IgnoreMissingInstruments, "ignore-missing", false, "skip notes whose instrument sample is missing")
	flags.BoolVar(&opts.ExcludeLockedLayers, "exclude-locked", false, "leave out notes on locked layers")
	flags.IntVar(&opts.Concurrency, "workers", 8, "resampling worker pool size")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
