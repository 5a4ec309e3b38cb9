// Package config manages user-level settings stored at ~/.create-agentx/config.yaml.
// Values resolve with the precedence flag > environment (CREATE_AGENTX_*) >
// config file > built-in default, and are validated before a run starts.
package config
