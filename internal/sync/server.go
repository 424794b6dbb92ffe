package sync

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
)

// Server accepts TCP subscribers for the review event feed.
type Server struct {
	Addr string
	Hub  *Hub
	Log  *slog.Logger

	ln net.Listener
}

func NewServer(addr string, hub *Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Addr: addr, Hub: hub, Log: log.With("component", "tcp-sync")}
}

// Listen binds the configured address. Run calls it when needed.
func (s *Server) Listen() error {
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// ListenAddr is the bound address, or nil before Listen.
func (s *Server) ListenAddr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.Log.Info("listening", slog.String("addr", s.ln.Addr().String()))

	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Log.Warn("accept", slog.Any("error", err))
			continue
		}

		s.Hub.Add(conn)
		s.Hub.Welcome(conn)
		s.Log.Info("client connected", slog.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Log.Info("client disconnected", slog.String("remote", c.RemoteAddr().String()))
			}()

			// the feed is one-way; drain anything the client sends
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}
