// +build windows

package socket

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

func getPrefix() (string, error) {
	if ex, err := os.Executable(); err == nil {
		return filepath.Dir(ex), nil
	} else {
		return "", err
	}
}

func DaemonDial(unixFile string) (conn net.Conn, err error) {
	if !IsDaemonRunning() {
		os.Stderr.WriteString(color.YellowString("passport-ur ▶ starting urbridged...\r\n"))
		exe := "urbridged.exe"
		if pfx, err := getPrefix(); err == nil {
			exe = pfx + `\urbridged.exe`
		}
		_ = exec.Command(exe).Start()
		<-time.After(1 * time.Second)
	}
	conn, err = net.Dial("unix", unixFile)
	if err != nil {
		err = fmt.Errorf("failed to connect to urbridged, try running \"urbridged.exe\" directly")
	}
	return
}

func KillDaemon() {
	_ = exec.Command("taskkill", "/F", "/FI", `USERNAME eq `+User(), "/IM", "urbridged.exe").Run()
	<-time.After(1 * time.Second)
}

func IsDaemonRunning() bool {
	cmd := exec.Command("tasklist", "/FI", `USERNAME eq `+User(), "/FI", `IMAGENAME eq urbridged.exe`)
	if ret, err := cmd.CombinedOutput(); err == nil {
		return bytes.Contains(ret, []byte("urbridged.exe"))
	}
	return false
}
