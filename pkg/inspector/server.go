package inspector

import (
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// transports the inspector endpoint may be configured with
	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"firestige.xyz/nodo/pkg/log"
)

// Server publishes report frames on a PUB socket. Subscribers receive the
// latest reports; on disconnect and reconnect they simply miss frames.
type Server struct {
	socket mangos.Socket
}

// NewServer opens the PUB socket at the given address, e.g.
// "tcp://127.0.0.1:12345".
func NewServer(address string) (*Server, error) {
	log.GetLogger().Infof("opening inspector PUB socket at %q", address)

	socket, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("inspector: open PUB socket: %w", err)
	}
	if err := socket.Listen(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("inspector: listen on %q: %w", address, err)
	}

	return &Server{socket: socket}, nil
}

// Publish sends one encoded report frame.
func (s *Server) Publish(report *Report) error {
	frame, err := EncodeFrame(report)
	if err != nil {
		return err
	}
	if err := s.socket.Send(frame); err != nil {
		return fmt.Errorf("inspector: send report: %w", err)
	}
	return nil
}

// Close shuts the socket down.
func (s *Server) Close() error {
	return s.socket.Close()
}
