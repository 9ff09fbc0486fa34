package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Channels
// --------------------------------------------------------------------------

/*
	Note: the bridge server multiplexes several independent channels over one transport,
	the same way a request path selects a handler. Each channel id is bound to one adapter.
*/

type ChannelType string

const (
	ChannelTypeWindow ChannelType = "window"
	ChannelTypeStore  ChannelType = "store"
)

// Well known channel ids used by the shell and its clients
const (
	ChannelWindow uint64 = 1
	ChannelStore  uint64 = 2
)

type ServerChannel struct {
	// ChannelID is the id clients address requests to
	ChannelID uint64
	// Type selects the adapter handling the channel
	Type ChannelType
}

// ParseChannels parses a comma separated list of ID=TYPE pairs (e.g. "1=window,2=store")
func ParseChannels(s string) ([]ServerChannel, error) {
	var channels []ServerChannel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.Split(part, "=")
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid channel format: %s (expected ID=TYPE)", part)
		}

		id, err := strconv.ParseUint(strings.TrimSpace(kv[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel ID %s: %w", kv[0], err)
		}

		var t ChannelType
		switch strings.TrimSpace(kv[1]) {
		case string(ChannelTypeWindow):
			t = ChannelTypeWindow
		case string(ChannelTypeStore):
			t = ChannelTypeStore
		default:
			return nil, fmt.Errorf("invalid channel type: %s (expected one of: window, store)", kv[1])
		}

		channels = append(channels, ServerChannel{ChannelID: id, Type: t})
	}
	return channels, nil
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds the configuration of the bridge server run by the desktop shell.
type ServerConfig struct {
	// Channels served by this server
	Channels []ServerChannel

	// Endpoint the transport listens on (host:port or unix:/path/to.sock)
	Endpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Bridge Server")
	addField("Endpoint", c.Endpoint)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Channels")
	for _, ch := range c.Channels {
		addField(strconv.FormatUint(ch.ChannelID, 10), string(ch.Type))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
