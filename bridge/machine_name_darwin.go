package bridge

import (
	"os"
	"os/exec"
	"strings"
)

func hostMachineName() string {
	if out, err := exec.Command("scutil", "--get", "ComputerName").Output(); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name
		}
	}
	name, _ := os.Hostname()
	return name
}
