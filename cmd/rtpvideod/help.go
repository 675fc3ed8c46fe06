package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagBindAddress     string
	flagBindPort        int
	flagMaxFrameSize    int
	flagAcceptAnySource bool
	flagMonitorAddress  string
	flagReadBufferBytes int
	flagHelp            bool
	flagVersion         bool
)

func init() {
	flag.StringVarP(&flagBindAddress, "bind-address", "a", "0.0.0.0", "Local address to bind")
	flag.IntVarP(&flagBindPort, "bind-port", "p", 5004, "Local UDP port to bind")
	flag.IntVarP(&flagMaxFrameSize, "max-frame-size", "f", 0, "Maximum reconstructed frame size, in bytes (default: library default)")
	flag.BoolVarP(&flagAcceptAnySource, "accept-rtp-from-any", "", false, "Accept RTP from a new endpoint after a NAT rebind, even without a private/public transition")
	flag.StringVarP(&flagMonitorAddress, "monitor-address", "m", "", "HTTP address for the frame-event websocket monitor (disabled if empty)")
	flag.IntVarP(&flagReadBufferBytes, "read-buffer-bytes", "b", 4<<20, "UDP socket receive buffer size, in bytes")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Standalone RTP video receiver

Usage: rtpvideod [OPTION]...

Socket:
  -a, --bind-address=ADDR     Local address to bind (default: 0.0.0.0)
  -p, --bind-port=NUM         Local UDP port to bind (default: 5004)
  -b, --read-buffer-bytes=NUM UDP socket receive buffer size (default: 4194304)

Reassembly:
  -f, --max-frame-size=NUM    Maximum reconstructed frame size, 0 for library default
      --accept-rtp-from-any   Accept RTP from any new endpoint after a rebind

Monitoring:
  -m, --monitor-address=ADDR  Serve a frame-event websocket monitor at ADDR/ws

Miscellaneous:
  -h, --help                  Prints this help message and exits
  -v, --version               Prints version information and exits
`

func help() {
	b := color.New(color.FgCyan, color.Bold)
	b.Println("rtpvideod")
	fmt.Println(helpString)
}
