package logging

// Config controls logger construction.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	OutputPath  string
}

// DefaultConfig returns a Config with sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		ServiceName: "truesight",
		Environment: "development",
		LogLevel:    "info",
		OutputPath:  "stdout",
	}
}

// WithServiceName returns a copy of the config with ServiceName set.
func (c Config) WithServiceName(name string) Config {
	c.ServiceName = name
	return c
}

// WithEnvironment returns a copy of the config with Environment set.
func (c Config) WithEnvironment(env string) Config {
	c.Environment = env
	return c
}

// WithLogLevel returns a copy of the config with LogLevel set.
func (c Config) WithLogLevel(level string) Config {
	c.LogLevel = level
	return c
}

// IsDevelopment reports whether the configured environment is development-like.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == "local"
}
