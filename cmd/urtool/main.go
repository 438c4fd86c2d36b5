// Command urtool is a local, file-based encode/decode harness for the
// codec: useful for generating or consuming a UR part stream without the
// bridge daemon in the loop, e.g. to feed an animated-QR test harness.
package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"

	"github.com/foundationdevices/passport-ur/decoder"
	"github.com/foundationdevices/passport-ur/encoder"
	"github.com/foundationdevices/passport-ur/registry"
	"github.com/foundationdevices/passport-ur/urtext"
)

func main() {
	app := cli.NewApp()
	app.Name = "urtool"
	app.Usage = "encode/decode files through the fountain-coded UR codec"
	app.Commands = []cli.Command{
		encodeCommand,
		decodeCommand,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		os.Exit(1)
	}
}

var encodeCommand = cli.Command{
	Name:  "encode",
	Usage: "emit an unbounded UR part stream for a file",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "type", Value: "bytes", Usage: "ur type: bytes, psbt, hdkey, x-passport-request, x-passport-response"},
		cli.StringFlag{Name: "file", Usage: "input file path"},
		cli.IntFlag{Name: "max-fragment-len", Value: 200, Usage: "maximum payload bytes per part"},
		cli.IntFlag{Name: "count", Value: 0, Usage: "number of parts to emit (0 = just enough for one full pass)"},
		cli.BoolFlag{Name: "clipboard", Usage: "copy the single emitted part to the clipboard instead of printing a stream"},
	},
	Action: runEncode,
}

func runEncode(c *cli.Context) error {
	path := c.String("file")
	if path == "" {
		return cli.NewExitError("missing --file", 1)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	urType := c.String("type")
	v, err := wrapAsRegistryValue(urType, data)
	if err != nil {
		return err
	}

	enc := encoder.New()
	if err := enc.Start(urType, v, uint32(c.Int("max-fragment-len"))); err != nil {
		return err
	}

	if c.Bool("clipboard") {
		part, err := enc.NextPart()
		if err != nil {
			return err
		}
		return clipboard.WriteAll(part)
	}

	count := c.Int("count")
	for i := 0; i == 0 || i < count; i++ {
		part, err := enc.NextPart()
		if err != nil {
			return err
		}
		fmt.Println(part)
		if i == 0 && count == 0 {
			// One full pass is every pure part, seq 1 through total.
			count = 1
			if u, err := urtext.Parse(part); err == nil && u.MultiPart {
				count = int(u.Total)
			}
		}
	}
	return nil
}

var decodeCommand = cli.Command{
	Name:  "decode",
	Usage: "read UR parts from stdin (one per line) until the message completes",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "out", Usage: "output file path; defaults to stdout"},
	},
	Action: runDecode,
}

func runDecode(c *cli.Context) error {
	dec := decoder.New()
	isTTY := isatty.IsTerminal(os.Stdin.Fd())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() && !dec.IsComplete() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := dec.Receive(line); err != nil {
			if isTTY {
				fmt.Fprintln(os.Stderr, color.YellowString("skipping part: %s", err.Error()))
			}
			continue
		}
		if isTTY {
			fmt.Fprintf(os.Stderr, "\r%.0f%%", dec.EstimatedPercentComplete()*100)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !dec.IsComplete() {
		return cli.NewExitError("input ended before the message completed", 1)
	}

	message, _ := dec.Message()
	urType, _ := dec.URType()
	if v, err := registry.FromUR(urType, message); err == nil {
		switch raw := v.(type) {
		case registry.Bytes:
			message = raw
		case registry.PSBT:
			message = raw
		}
	}
	if out := c.String("out"); out != "" {
		return ioutil.WriteFile(out, message, 0600)
	}
	_, err := os.Stdout.Write(message)
	return err
}

func wrapAsRegistryValue(urType string, data []byte) (registry.Value, error) {
	switch urType {
	case "bytes":
		return registry.Bytes(data), nil
	case "psbt":
		return registry.PSBT(data), nil
	default:
		// hdkey and the x-passport-* types carry structured CBOR rather
		// than opaque bytes; urtool only round-trips the opaque types
		// end to end from a raw file.
		return nil, fmt.Errorf("urtool encode only supports raw-byte types (bytes, psbt); got %q", urType)
	}
}
