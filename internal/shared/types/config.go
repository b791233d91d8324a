package types

// DefaultListenPort is used when neither the config file nor the
// command line supplies a port.
const DefaultListenPort = 11111

// CommonConf contains behavior shared by all listeners.
type CommonConf struct {
	BufferSize int `ini:"bufferSize"` // per-session read buffer, bytes
}

// ServerConf contains the fault-endpoint specific configuration.
type ServerConf struct {
	ListenPort int `ini:"listen_port"`
	// Directive is an optional global directive string, e.g.
	// "ACT[WAIT=500,CLOSE]". It is parsed once at startup and executed
	// on every new session; inbound payloads are then never consulted.
	Directive string `ini:"directive"`
	WebPort   int    `ini:"web_port"` // 0 disables the status page
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config is the unified configuration structure for the server process.
type Config struct {
	CommonConf `ini:"common"`
	ServerConf `ini:"server"`
	LogConf    `ini:"log"`
}
