// +build !darwin,!windows

package bridge

import "os"

func hostMachineName() string {
	name, _ := os.Hostname()
	return name
}
