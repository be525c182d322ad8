package api

import "time"

// ServerConfig configures the optional TCP command listener.
type ServerConfig struct {
	Addr        string        `help:"TCP address accepting command lines (empty disables the listener)" default:"" env:"PADRELAY_API_ADDR"`
	IdleTimeout time.Duration `help:"Close command connections idle for this long (0 keeps them open)" default:"0s" env:"PADRELAY_API_IDLE_TIMEOUT"`
}
