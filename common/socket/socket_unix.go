// +build !darwin,!windows

package socket

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/fatih/color"
)

func DaemonDial(unixFile string) (conn net.Conn, err error) {
	if !IsDaemonRunning() {
		os.Stderr.WriteString(color.YellowString("passport-ur ▶ starting urbridged...\r\n"))
		exec.Command("nohup", "urbridged").Start()
		<-time.After(1 * time.Second)
	}
	conn, err = net.Dial("unix", unixFile)
	if err != nil {
		os.Stderr.WriteString(color.YellowString("passport-ur ▶ restarting urbridged...\r\n"))
		KillDaemon()
		exec.Command("nohup", "urbridged").Start()
		<-time.After(1 * time.Second)
		conn, err = net.Dial("unix", unixFile)
	}
	if err != nil {
		err = fmt.Errorf("failed to connect to urbridged, try running \"urbridged\" directly")
	}
	return
}

func KillDaemon() {
	exec.Command("pkill", "-U", User(), "-x", "urbridged").Run()
	<-time.After(1 * time.Second)
}

func IsDaemonRunning() bool {
	err := exec.Command("pgrep", "-U", User(), "urbridged").Run()
	return err == nil
}
