package config

const (
	defaultResolvingPower  = 30000
	defaultSamplingDensity = 1000
	defaultLogLevel        = "info"
	defaultLogFormat       = "auto"
)

// Default returns a Config populated with repository defaults. Tail pools
// are left empty so the built-in pools apply.
func Default() Config {
	return Config{
		Preview: Preview{
			ResolvingPower:  defaultResolvingPower,
			SamplingDensity: defaultSamplingDensity,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
