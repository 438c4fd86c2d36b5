// Package socket resolves the filesystem and Unix-domain-socket locations
// the bridge daemon and CLI share, and dials/listens on them. Adapted from
// the teacher's krd/kr socket-discovery layer; renamed for the UR bridge
// daemon (spec.md §10, host-application bridge).
package socket

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

func User() string {
	u := os.Getenv("USER")
	if u == "" {
		whoami, err := exec.Command("whoami").Output()
		if err == nil {
			u = strings.TrimSpace(string(whoami))
			os.Setenv("USER", u)
		}
	}
	return u
}

func HomeDir() string {
	var home string
	if u, err := user.Lookup(User()); err == nil && u != nil {
		home = u.HomeDir
	} else {
		home = os.Getenv("HOME")
	}
	if os.Getenv("HOME") != home {
		os.Setenv("HOME", home)
	}
	return home
}

// DataDir returns (creating if necessary) the directory the bridge daemon
// uses for its Unix socket and message cache.
func DataDir() (path string, err error) {
	path = filepath.Join(HomeDir(), ".passport-ur")
	err = os.MkdirAll(path, os.FileMode(0700))
	return
}

func DataDirFile(file string) (fullPath string, err error) {
	dir, err := DataDir()
	if err != nil {
		return
	}
	fullPath = filepath.Join(dir, file)
	return
}

const DaemonSocketFilename = "urbridged.sock"

// DaemonListen opens the daemon's control-plane Unix socket, removing any
// stale socket file left behind by an unclean shutdown.
func DaemonListen() (listener net.Listener, err error) {
	socketPath, err := DataDirFile(DaemonSocketFilename)
	if err != nil {
		return
	}
	_ = os.Remove(socketPath)
	listener, err = net.Listen("unix", socketPath)
	return
}

func pingDaemon(unixFile string) error {
	conn, err := DaemonDial(unixFile)
	if err != nil {
		return err
	}
	defer conn.Close()

	req, err := http.NewRequest("GET", "/ping", nil)
	if err != nil {
		return err
	}
	if err := req.Write(conn); err != nil {
		return err
	}
	_, err = http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return fmt.Errorf("bridge daemon read error: %s", err.Error())
	}
	return nil
}

// DaemonDialWithTimeout pings the daemon before dialing, so a caller gets
// a clear timeout error instead of hanging against a wedged process.
func DaemonDialWithTimeout(unixFile string) (conn net.Conn, err error) {
	done := make(chan error, 1)
	go func() { done <- pingDaemon(unixFile) }()

	select {
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("ping timed out")
	case err = <-done:
	}
	if err != nil {
		return nil, err
	}
	return DaemonDial(unixFile)
}

func DaemonSocketPathOrFatal() string {
	path, err := DataDirFile(DaemonSocketFilename)
	if err != nil {
		panic("could not resolve bridge daemon socket path: " + err.Error())
	}
	return path
}
