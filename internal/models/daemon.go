package models

import (
	"net"
	"strconv"
	"time"
)

// daemonFileVersion is the format version written to daemon.yaml.
const daemonFileVersion = 1

// DaemonInfo is the discovery record the tray daemon writes to
// ~/.cloudtolocalllm/daemon.yaml so the host application can find the bridge
// endpoint and tell a live daemon from a stale file.
type DaemonInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewDaemonInfo records the bridge endpoint and owning process.
func NewDaemonInfo(host string, port, pid int) *DaemonInfo {
	return &DaemonInfo{
		Version:   daemonFileVersion,
		Host:      host,
		Port:      port,
		PID:       pid,
		StartedAt: time.Now().UTC(),
	}
}

// Addr returns the bridge endpoint in host:port form.
func (d *DaemonInfo) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Uptime reports how long the daemon has been up, rounded to whole seconds.
func (d *DaemonInfo) Uptime() time.Duration {
	return time.Since(d.StartedAt).Truncate(time.Second)
}
