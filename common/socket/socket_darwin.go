package socket

import (
	"fmt"
	"net"
	"os/exec"
)

func DaemonDial(unixFile string) (conn net.Conn, err error) {
	conn, err = net.Dial("unix", unixFile)
	if err != nil {
		err = fmt.Errorf("failed to connect to urbridged, try running \"urbridged\" directly")
	}
	return
}

func IsDaemonRunning() bool {
	err := exec.Command("pgrep", "-U", User(), "urbridged").Run()
	return err == nil
}
