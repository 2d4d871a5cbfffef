package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr           string
	AuthToken      string `masq:"secret"`
	AllowedOrigins []string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("BOOKHOST_ADDR"),
		},
		&cli.StringFlag{
			Name:        "auth-token",
			Usage:       "Bearer token required on /invoke and /events (disabled if empty)",
			Destination: &c.AuthToken,
			Sources:     cli.EnvVars("BOOKHOST_AUTH_TOKEN"),
		},
		&cli.StringSliceFlag{
			Name:        "allowed-origin",
			Usage:       "Origin accepted by the event channel, \"*\" for any (same-origin only if unset)",
			Destination: &c.AllowedOrigins,
			Sources:     cli.EnvVars("BOOKHOST_ALLOWED_ORIGINS"),
		},
	}
}
