package haldev

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal"
)

// udpNetwork binds one UDP socket per run at port_base+run and a single
// egress socket for heartbeats. Poll drains with zero-deadline reads so
// the cooperative loop never blocks on the network.
type udpNetwork struct {
	layout *config.Layout
	logger *slog.Logger

	conns      []*net.UDPConn
	statusConn *net.UDPConn
	readBuf    []byte
}

// NewNetwork creates the UDP network capability for the given layout.
func NewNetwork(layout *config.Layout, logger *slog.Logger) hal.Network {
	return &udpNetwork{layout: layout, logger: logger}
}

func (n *udpNetwork) Init() error {
	localIP := net.ParseIP(n.layout.Network.IP)

	maxPacket := 0
	for run := 0; run < n.layout.RunCount(); run++ {
		if size := n.layout.PacketSize(run); size > maxPacket {
			maxPacket = size
		}
	}
	// One spare byte so an oversized datagram is distinguishable from an
	// exact-length one instead of being silently truncated to valid size.
	n.readBuf = make([]byte, maxPacket+1)

	n.conns = make([]*net.UDPConn, n.layout.RunCount())
	for run := range n.conns {
		conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: localIP, Port: n.layout.RunPort(run)})
		if err != nil {
			n.Close()
			return fmt.Errorf("bind run %d port %d: %w", run, n.layout.RunPort(run), err)
		}
		n.conns[run] = conn
	}

	sender := &net.UDPAddr{
		IP:   net.ParseIP(n.layout.Network.Sender),
		Port: n.layout.Network.StatusPort,
	}
	statusConn, err := net.DialUDP("udp4", nil, sender)
	if err != nil {
		n.Close()
		return fmt.Errorf("dial status endpoint %s: %w", sender, err)
	}
	n.statusConn = statusConn

	n.logger.Info("Network initialized",
		"ip", n.layout.Network.IP,
		"port_base", n.layout.Network.PortBase,
		"runs", n.layout.RunCount(),
		"status_endpoint", sender.String())
	return nil
}

// Close releases every socket. Safe to call on a partially initialized
// network.
func (n *udpNetwork) Close() {
	for _, conn := range n.conns {
		if conn != nil {
			conn.Close()
		}
	}
	n.conns = nil
	if n.statusConn != nil {
		n.statusConn.Close()
		n.statusConn = nil
	}
}

func (n *udpNetwork) LinkUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	want := n.layout.Network.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.String() == want {
				return true
			}
		}
	}
	return false
}

func (n *udpNetwork) LocalIP() string {
	return n.layout.Network.IP
}

func (n *udpNetwork) Poll(cb hal.PacketFunc) {
	deadline := time.Now()
	for run, conn := range n.conns {
		if conn == nil {
			continue
		}
		// Zero deadline turns the read into a non-blocking drain.
		if err := conn.SetReadDeadline(deadline); err != nil {
			continue
		}
		for {
			size, _, err := conn.ReadFromUDP(n.readBuf)
			if err != nil {
				break
			}
			cb(run, n.readBuf[:size])
		}
	}
}

func (n *udpNetwork) SendStatus(payload []byte) {
	if n.statusConn == nil {
		return
	}
	if _, err := n.statusConn.Write(payload); err != nil {
		n.logger.Debug("Heartbeat send failed", "error", err)
	}
}
