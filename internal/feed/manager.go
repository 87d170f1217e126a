// Package feed broadcasts selection-change events to connected display
// surfaces over TCP. Each event is a newline-framed JSON document; a
// browser shim or report page subscribes and re-fetches artifacts for the
// views it shows whenever a group it cares about changes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port    int
	Address string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Port <= 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("invalid address: %s", c.Address))
	}
	return errors.Join(errGrp...)
}

type Manager struct {
	port     int
	address  string
	listener net.Listener

	emitChan   chan *Event
	procCtx    context.Context
	procCancel context.CancelFunc

	clients    map[net.Conn]bool
	clientsMux sync.Mutex
}

func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	addrString := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	listener, err := net.Listen("tcp", addrString)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addrString, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		listener:   listener,
		port:       cfg.Port,
		address:    cfg.Address,
		emitChan:   make(chan *Event, 4096),
		procCtx:    ctx,
		procCancel: cancel,

		clients:    make(map[net.Conn]bool),
		clientsMux: sync.Mutex{},
	}, nil
}

func (m *Manager) Start() error {
	go func() {
		for {
			select {
			case <-m.procCtx.Done():
				return
			case e := <-m.emitChan:
				m.broadcast(e)
			}
		}
	}()

	// Accept subscribers in a separate goroutine.
	go func() {
		for {
			select {
			case <-m.procCtx.Done():
				return
			default:
				conn, err := m.listener.Accept()
				if err != nil {
					select {
					case <-m.procCtx.Done():
						return
					default:
					}
					log.Error().Err(err).Msg("Failed to accept feed subscriber")
					continue
				}

				go m.handle(conn)
			}
		}
	}()

	return nil
}

func (m *Manager) Stop() error {
	if m.listener != nil {
		err := m.listener.Close()
		if err != nil {
			return fmt.Errorf("failed to close listener: %w", err)
		}
	}

	if m.procCancel != nil {
		m.procCancel()
	}

	return nil
}

func (m *Manager) Name() string {
	return "Selection Feed"
}

func (m *Manager) handle(conn net.Conn) {
	defer func() {
		m.clientsMux.Lock()
		delete(m.clients, conn)
		m.clientsMux.Unlock()

		_ = conn.Close()
	}()

	m.clientsMux.Lock()
	m.clients[conn] = true
	m.clientsMux.Unlock()

	log.Info().Msgf("Feed subscriber connected: %s", conn.RemoteAddr())

	// Reading is only to detect disconnection; subscribers never send.
	buffer := make([]byte, 512)
	for {
		_, err := conn.Read(buffer)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info().Msgf("Feed subscriber disconnected: %s", conn.RemoteAddr())
			} else {
				log.Error().Err(err).Msgf("Error reading from feed subscriber %s", conn.RemoteAddr())
			}
			return
		}
	}
}
