package scanner

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"admin-console/internal/util"

	"go.uber.org/zap"
)

// TCPScanner reads newline-delimited barcodes from networked hardware
// scanners. Most warehouse scanners in keyboard-wedge or TCP mode emit
// exactly one code per line.
type TCPScanner struct {
	addr   string
	logger *zap.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewTCPScanner creates a scanner that will listen on addr.
func NewTCPScanner(addr string) *TCPScanner {
	return &TCPScanner{
		addr:   addr,
		logger: util.NamedLogger("scanner"),
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start opens the listener and begins forwarding detected codes.
func (s *TCPScanner) Start(onDetect DetectFunc) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("Scanner listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop(ln, onDetect)
	return nil
}

func (s *TCPScanner) acceptLoop(ln net.Listener, onDetect DetectFunc) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed on Stop.
			return
		}

		s.mu.Lock()
		if s.ln == nil {
			// Stop ran between Accept and registration; this conn
			// would miss the sweep, so close it here.
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.readConn(conn, onDetect)
	}
}

func (s *TCPScanner) readConn(conn net.Conn, onDetect DetectFunc) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		code := strings.TrimSpace(reader.Text())
		if code == "" {
			continue
		}
		onDetect(code)
	}
}

// Stop closes the listener first, so no new connection can register
// after the sweep, then closes all open scanner connections and waits
// for reader goroutines to drain.
func (s *TCPScanner) Stop() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	err := ln.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}
