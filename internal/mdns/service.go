// Package mdns advertises the Brainly server on the local network through the
// Avahi daemon, so clients can find it without manual configuration.
package mdns

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the DNS-SD service type for Brainly servers.
	ServiceType = "_brainly._tcp"

	// APIVersion is the API version advertised in TXT records.
	APIVersion = "v1"
)

// Advertisement describes what is published.
type Advertisement struct {
	Name    string
	Version string
	Port    int
}

// txtRecords builds the DNS-SD TXT payload.
func (a Advertisement) txtRecords() [][]byte {
	return [][]byte{
		[]byte("name=" + a.Name),
		[]byte("version=" + a.Version),
		[]byte("api=" + APIVersion),
		[]byte("path=/api/" + APIVersion),
	}
}

func (a Advertisement) validate() error {
	if a.Name == "" {
		return fmt.Errorf("mdns: name is required")
	}
	if a.Port <= 0 || a.Port > 65535 {
		return fmt.Errorf("mdns: invalid port %d", a.Port)
	}
	return nil
}

// Service manages the Avahi entry group for the server.
type Service struct {
	logger *slog.Logger

	mu     sync.Mutex
	conn   *dbus.Conn
	server *avahi.Server
	group  *avahi.EntryGroup
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger}
}

// Start publishes the advertisement. Errors are usually non-fatal for the
// caller: containers and CI hosts often have no system bus or Avahi daemon.
func (s *Service) Start(ad Advertisement) error {
	if err := ad.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("connect avahi: %w", err)
	}

	group, err := server.EntryGroupNew()
	if err != nil {
		server.Close()
		conn.Close()
		return fmt.Errorf("create entry group: %w", err)
	}

	err = group.AddService(
		avahi.InterfaceUnspec,
		avahi.ProtoUnspec,
		0,
		ad.Name,
		ServiceType,
		"local",
		"",
		uint16(ad.Port),
		ad.txtRecords(),
	)
	if err == nil {
		err = group.Commit()
	}
	if err != nil {
		server.EntryGroupFree(group)
		server.Close()
		conn.Close()
		return fmt.Errorf("publish service: %w", err)
	}

	s.conn, s.server, s.group = conn, server, group

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"name", ad.Name,
		"port", ad.Port,
	)
	return nil
}

// Running reports whether an advertisement is published.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group != nil
}

// Stop withdraws the advertisement.
// Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLocked() {
		s.logger.Info("mDNS advertisement stopped")
	}
}

func (s *Service) stopLocked() bool {
	if s.server == nil {
		return false
	}
	if s.group != nil {
		s.server.EntryGroupFree(s.group)
	}
	s.server.Close()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn, s.server, s.group = nil, nil, nil
	return true
}
