// Package server runs Sky's TCP accept loop: one goroutine per accepted
// connection, requests on a connection processed strictly in sequence,
// replies flushed in request order.
package server

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/skydb/sky/database"
	"github.com/skydb/sky/message"
	"github.com/skydb/sky/processor"
	"go.uber.org/zap"
)

// DefaultPort is Sky's default listen port.
const DefaultPort = 8585

// Server accepts connections and dispatches their requests against a
// database.Manager.
type Server struct {
	manager  *database.Manager
	log      *zap.Logger
	listener net.Listener
}

// New returns a Server over manager.
func New(manager *database.Manager, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{manager: manager, log: log}
}

// ListenAndServe listens on addr and serves connections until the listener
// is closed (e.g. via Close from another goroutine).
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.listener = l
	s.log.Info("listening", zap.String("addr", addr))

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		go s.serve(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}

	return s.listener.Close()
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.log.Info("connection accepted", zap.String("remote", remote))
	defer s.log.Info("connection closed", zap.String("remote", remote))

	dispatcher := message.NewDispatcher(s.manager, processor.Registry())
	r := bufio.NewReader(conn)

	for {
		if err := dispatcher.HandleOne(r, conn); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}

			s.log.Warn("closing connection after decode error", zap.String("remote", remote), zap.Error(err))

			return
		}
	}
}
