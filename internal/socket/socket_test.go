package socket_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lc/bip353/internal/socket"
)

type SocketTestSuite struct {
	suite.Suite
	tmpDir   string
	sockPath string
	mockProc *mockProcessChecker
	sock     *socket.Socket
}

type mockProcessChecker struct {
	isRunning bool
}

func (m *mockProcessChecker) IsRunning(_ string) bool {
	return m.isRunning
}

func (s *SocketTestSuite) SetupTest() {
	var err error
	s.tmpDir, err = os.MkdirTemp("", "socket-test-*")
	s.Require().NoError(err)

	s.sockPath = filepath.Join(s.tmpDir, "test.sock")
	s.mockProc = &mockProcessChecker{isRunning: true}

	// Use shorter timeouts for testing
	cfg := socket.DefaultConfig()
	cfg.StartupTimeout = 500 * time.Millisecond
	cfg.RetryInterval = 50 * time.Millisecond

	s.sock = socket.New(cfg, s.mockProc)
}

func (s *SocketTestSuite) TearDownTest() {
	// Ensure any listeners are closed
	if conn, err := net.Dial("unix", s.sockPath); err == nil {
		conn.Close()
	}

	// Clean up test directory
	if s.tmpDir != "" {
		os.RemoveAll(s.tmpDir)
	}
}

func (s *SocketTestSuite) TestDefaultConfig() {
	cfg := socket.DefaultConfig()

	s.Equal(5*time.Second, cfg.StartupTimeout)
	s.Equal(250*time.Millisecond, cfg.RetryInterval)
	s.Equal("bip353d", cfg.ProcessName)

	// Permissions depend on OS
	s.Contains([]os.FileMode{0o666, 0o600}, cfg.Permissions)
}

func (s *SocketTestSuite) TestListen() {
	testCases := []struct {
		name        string
		setup       func() error
		expectError string
	}{
		{
			name:  "successful listen",
			setup: func() error { return nil },
		},
		{
			name: "stale socket removed",
			setup: func() error {
				// A leftover socket file with no listener behind it
				ln, err := net.Listen("unix", s.sockPath)
				if err != nil {
					return err
				}
				ln.(*net.UnixListener).SetUnlinkOnClose(false)
				return ln.Close()
			},
		},
		{
			name: "socket already in use",
			setup: func() error {
				_, err := net.Listen("unix", s.sockPath)
				// Keep listener open; TearDownTest removes the directory.
				return err
			},
			expectError: socket.ErrAddressInUse.Error(),
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.Require().NoError(tc.setup())

			ln, err := s.sock.Listen(s.sockPath)

			if tc.expectError != "" {
				s.Error(err)
				s.ErrorContains(err, tc.expectError)
				return
			}

			s.Require().NoError(err)
			s.NotNil(ln)
			ln.Close()
		})
	}
}

func (s *SocketTestSuite) TestConnect() {
	ln, err := s.sock.Listen(s.sockPath)
	s.Require().NoError(err)
	defer ln.Close()

	conn, err := s.sock.Connect(context.Background(), s.sockPath)

	s.Require().NoError(err)
	s.NotNil(conn)
	conn.Close()
}

func (s *SocketTestSuite) TestConnectDaemonNotRunning() {
	s.mockProc.isRunning = false

	conn, err := s.sock.Connect(context.Background(), s.sockPath)

	s.Nil(conn)
	s.Require().Error(err)
	s.ErrorIs(err, socket.ErrNotRunning)
}

func (s *SocketTestSuite) TestConnectCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No listener exists, so the first attempt fails and the cancelled
	// context is observed before the retry.
	conn, err := s.sock.Connect(ctx, s.sockPath)

	s.Nil(conn)
	s.ErrorIs(err, context.Canceled)
}

func TestSocketSuite(t *testing.T) {
	suite.Run(t, new(SocketTestSuite))
}
