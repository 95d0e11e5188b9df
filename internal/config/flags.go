package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into grouping, background music, encoding, display, and utility.
// Negated flags (e.g. --no-hw) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config, version string) error {
	action, err := ParseArgs(cfg, os.Args[1:])
	if err != nil {
		return err
	}
	switch action {
	case ActionHelp:
		printUsage(version)
		os.Exit(0)
	case ActionVersion:
		fmt.Fprintln(os.Stdout, "shortmix v"+version)
		os.Exit(0)
	}
	return nil
}

// Action is what the caller should do after a successful parse.
type Action int

const (
	ActionRun     Action = iota // Proceed with the run (or --check).
	ActionHelp                  // Print usage and exit.
	ActionVersion               // Print version and exit.
)

// ParseArgs parses args (without the program name) into cfg.
func ParseArgs(cfg *Config, args []string) (Action, error) {
	fs := flag.NewFlagSet("shortmix", flag.ContinueOnError)
	fs.Usage = func() {}

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults hold unless the user passes the flag.
	var negated negatedFlags

	defineGroupingFlags(fs, cfg)
	defineBGMFlags(fs, cfg)
	defineEncodingFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		return ActionRun, err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		return ActionHelp, nil
	}
	if negated.showVersion {
		return ActionVersion, nil
	}

	return ActionRun, parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noHW -> UseHardware=false) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noHW        bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
	configPath  string
}

// defineGroupingFlags registers -g/--group-size, -n/--limit, --journal, --work-dir.
func defineGroupingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.GroupSize, "group-size", cfg.GroupSize, "Clips per output video")
	fs.IntVar(&cfg.GroupSize, "g", cfg.GroupSize, "Same as --group-size")
	fs.IntVar(&cfg.MaxGroups, "limit", cfg.MaxGroups, "Maximum groups to process this run (0 = all)")
	fs.IntVar(&cfg.MaxGroups, "n", cfg.MaxGroups, "Same as --limit")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "Journal file (JSON lines)")
	fs.StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "Directory for temporary files")
}

// defineBGMFlags registers -b/--bgm, --bgm-volume, --bgm-max-delay.
func defineBGMFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.BGMDir, "bgm", cfg.BGMDir, "Background music folder (optional)")
	fs.StringVar(&cfg.BGMDir, "b", cfg.BGMDir, "Same as --bgm")
	fs.Float64Var(&cfg.BGMVolume, "bgm-volume", cfg.BGMVolume, "Background music volume (0.0-1.0)")
	fs.DurationVar(&cfg.BGMMaxDelay, "bgm-max-delay", cfg.BGMMaxDelay, "Maximum random music start delay")
}

// defineEncodingFlags registers --no-hw, --hw-encoder, --hw-preset, -q/--quality, --ffmpeg, --ffprobe.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noHW, "no-hw", false, "Never try the hardware encoder")
	fs.StringVar(&cfg.HWEncoder, "hw-encoder", cfg.HWEncoder, "Hardware encoder name")
	fs.StringVar(&cfg.HWPreset, "hw-preset", cfg.HWPreset, "Hardware encoder preset")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "CQ (hardware) / CRF (software)")
	fs.IntVar(&cfg.Quality, "q", cfg.Quality, "Same as --quality")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log, --log-format, --metrics-file.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.Var(&logFormatValue{&cfg.LogFormat}, "log-format", "Console log format: console | json")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to file at exit")
}

// defineUtilityFlags registers --check, --dry-run, --config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Scan and group only; write nothing")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	// Loaded before flag parsing (see ConfigFileArg); registered so Parse accepts it.
	fs.StringVar(&n.configPath, "config", "", "YAML config file")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noHW {
		cfg.UseHardware = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets SourceDir and OutputDir from the two positional args when not in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	switch len(args) {
	case 0:
		// Both may come from the config file.
		if cfg.SourceDir != "" && cfg.OutputDir != "" {
			break
		}
		return fmt.Errorf("need exactly source_dir and output_dir")
	case 2:
		cfg.SourceDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
	default:
		return fmt.Errorf("need exactly source_dir and output_dir")
	}
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "shortmix v" + version + " - assemble short clips into numbered videos"},
		{"", ""},
		{"  shortmix [OPTIONS] <source_dir> <output_dir>", ""},
		{"", ""},
		{"Grouping", ""},
		{"  -g, --group-size <n>", "Clips per output video (default: 6)"},
		{"  -n, --limit <n>", "Maximum groups this run (default: 0 = all)"},
		{"  --journal <path>", "Journal of produced groups (default: log/journal.jsonl)"},
		{"  --work-dir <dir>", "Temporary files directory (default: system temp)"},
		{"", ""},
		{"Background music", ""},
		{"  -b, --bgm <dir>", "Folder of .mp3 tracks; one is mixed per video"},
		{"  --bgm-volume <v>", "Music volume 0.0-1.0 (default: 0.5)"},
		{"  --bgm-max-delay <d>", "Maximum random music start delay (default: 10s)"},
		{"", ""},
		{"Encoding", ""},
		{"  --no-hw", "Use the software encoder only"},
		{"  --hw-encoder <name>", "Hardware encoder (default: h264_nvenc)"},
		{"  --hw-preset <name>", "Hardware preset (default: p4)"},
		{"  -q, --quality <n>", "CQ / CRF (default: 23)"},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  --log-format <console|json>", "Console log format (default: console)"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  --metrics-file <path>", "Write Prometheus metrics at exit"},
		{"  --config <path>", "YAML config file (env: " + ConfigPathEnvVar + ")"},
		{"  -d, --dry-run", "Scan and group only"},
		{"  -c, --check", "System diagnostics (ffmpeg, encoders, presets)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so LogFormat can be used with flag.Var.

type logFormatValue struct{ p *LogFormat }

func (l *logFormatValue) String() string {
	if l.p == nil {
		return ""
	}
	return string(*l.p)
}

func (l *logFormatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "console":
		*l.p = LogConsole
	case "json":
		*l.p = LogJSON
	default:
		return fmt.Errorf("invalid log format %q (use 'console' or 'json')", s)
	}
	return nil
}
