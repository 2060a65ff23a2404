package config

import "flag"

// Flags holds the command-line overrides shared by the wavesim
// subcommands.
type Flags struct {
	config    *string
	debug     *bool
	logFile   *string
	grid      *float64
	method    *string
	seed      *int64
	frequency *float64
	tolerance *float64
	metrics   *string
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log-file", "", "Also write logs to this file"),
		grid:      fs.Float64("grid", 0, "Uniform decomposition grid size"),
		method:    fs.String("method", "", "Decomposition method: systematic or greedy_random"),
		seed:      fs.Int64("seed", 0, "Seed for greedy_random decomposition"),
		frequency: fs.Float64("max-frequency", 0, "Highest simulated frequency in Hz"),
		tolerance: fs.Float64("tolerance", 0, "Allowed cell overshoot as a fraction of a cell"),
		metrics:   fs.String("metrics-textfile", "", "Write Prometheus metrics to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.File.Path = *f.logFile
	}
	if *f.grid > 0 {
		cfg.Medium.GridSize.X = *f.grid
		cfg.Medium.GridSize.Y = *f.grid
		cfg.Medium.GridSize.Z = *f.grid
	}
	if *f.method != "" {
		cfg.Medium.Method = *f.method
	}
	if *f.seed != 0 {
		cfg.Medium.Seed = *f.seed
	}
	if *f.frequency > 0 {
		cfg.Resolution.MaxFrequency = *f.frequency
	}
	if *f.tolerance > 0 {
		cfg.Resolution.CellTolerance = *f.tolerance
	}
	if *f.metrics != "" {
		cfg.Metrics.Textfile = *f.metrics
	}
}
