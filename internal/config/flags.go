package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file (.yaml, .yml or .toml)")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile = flag.String("log-file", "", "Also write logs to this file")
	flagLoop    = flag.String("loop", "", "Loop mode: wrap or clamp")
	flagSpeed   = flag.Float64("speed", 0, "Playback speed multiplier")
	flagClips   = flag.String("clips", "", "Clip library directory")
	flagWatch   = flag.Bool("watch", false, "Reload clips when files change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagLoop != "" {
		cfg.Animation.LoopMode = *flagLoop
	}
	if *flagSpeed != 0 {
		cfg.Animation.PlaybackSpeed = *flagSpeed
	}
	if *flagClips != "" {
		cfg.Library.ClipDir = *flagClips
	}
	if *flagWatch {
		cfg.Library.Watch = true
	}
}
