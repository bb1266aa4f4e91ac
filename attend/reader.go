package attend

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"
)

// ReaderConfig describes one physical reader connection.
type ReaderConfig struct {
	// Addr is the reader gateway address, e.g. "10.0.0.21:2022".
	Addr string `yaml:"addr"`
	// Type selects the binding. Currently "tcp" (the default).
	Type string `yaml:"type"`
	// Baud is the communication rate of the serial link behind the gateway.
	Baud int `yaml:"baud"`
}

// TagReader is one open channel to a physical reader. NextBatch returns the
// raw tag ids observed since the previous call; an empty batch is normal
// when no tags are in range.
type TagReader interface {
	NextBatch() ([][]byte, error)
	Close() error
}

// OpenReader opens a channel to the reader described by cfg.
func OpenReader(cfg ReaderConfig) (TagReader, error) {
	switch cfg.Type {
	case "", "tcp":
		return openTCPReader(cfg.Addr)
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
}

const (
	dialTimeout   = 5 * time.Second
	tcpReadWindow = 200 * time.Millisecond
)

// tcpReader consumes a reader gateway that emits one hex-encoded tag id per
// line. A short read deadline turns "no tags in range" into an empty batch
// instead of blocking the poll loop indefinitely.
type tcpReader struct {
	conn net.Conn
	br   *bufio.Reader
}

func openTCPReader(addr string) (*tcpReader, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("reader addr is empty")
	}
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &tcpReader{conn: conn, br: bufio.NewReader(conn)}, nil
}

func (r *tcpReader) NextBatch() ([][]byte, error) {
	_ = r.conn.SetReadDeadline(time.Now().Add(tcpReadWindow))
	var batch [][]byte
	for {
		line, err := r.br.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			raw, decErr := hex.DecodeString(trimmed)
			if decErr == nil && len(raw) > 0 {
				batch = append(batch, raw)
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return batch, nil
			}
			return batch, err
		}
	}
}

func (r *tcpReader) Close() error {
	return r.conn.Close()
}
