// Package ipc is the control socket of a running rotation: another azote
// process can ask it to move on or to show a given picture.
package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"azote/internal/logging"
)

// Commands understood by the rotation.
const (
	CmdNext = "next"
	CmdSet  = "set"
	CmdStop = "stop"
)

// ErrNotRunning is returned by Send when nothing listens on the socket.
var ErrNotRunning = errors.New("no rotation is running")

// SocketPath is the socket inside the app directory.
func SocketPath(appDir string) string {
	return filepath.Join(appDir, "azote.sock")
}

// FormatMessage creates a message in the format "command:argument".
func FormatMessage(cmd, arg string) string {
	return cmd + ":" + arg
}

// ParseMessage splits a message at the first colon, so arguments may
// contain colons themselves.
func ParseMessage(msg string) (string, string) {
	msg = strings.TrimSpace(msg)
	cmd, arg, _ := strings.Cut(msg, ":")
	return cmd, arg
}

// Listen accepts one message per connection and hands it to handle until
// ctx is done. A stale socket file is removed first.
func Listen(ctx context.Context, path string, handle func(cmd, arg string)) error {
	os.Remove(path)
	listener, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", path, err)
	}
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	go func() {
		defer os.Remove(path)
		for {
			conn, err := listener.Accept()
			if err != nil {
				// Listener closed.
				return
			}
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			line, err := bufio.NewReader(conn).ReadString('\n')
			conn.Close()
			if err != nil && line == "" {
				logging.Debug("IPC read: %v", err)
				continue
			}
			cmd, arg := ParseMessage(line)
			if cmd == "" {
				continue
			}
			handle(cmd, arg)
		}
	}()
	return nil
}

// Send delivers one message to the process listening on path.
func Send(path, cmd, arg string) error {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()
	_, err = fmt.Fprintln(conn, FormatMessage(cmd, arg))
	return err
}
