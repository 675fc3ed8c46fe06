// Command rtpvideod is a reference UDP socket adapter for the rtpreceiver
// library: it binds a single UDP socket, feeds every datagram to a
// rtpreceiver.Receiver, and logs (or, with --monitor-address, broadcasts
// over a websocket) each reassembled frame.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/net/ipv4"

	rtpreceiver "github.com/buldo/rtp-receiver"
	"github.com/buldo/rtp-receiver/internal/logging"
)

var log = logging.DefaultLogger.WithTag("rtpvideod")

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}

	if flagVersion {
		version()
		os.Exit(0)
	}

	addr := &net.UDPAddr{IP: net.ParseIP(flagBindAddress), Port: flagBindPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer conn.Close()

	if err := conn.SetReadBuffer(flagReadBufferBytes); err != nil {
		log.Warn("failed to set UDP read buffer to %d bytes: %v (ignored)", flagReadBufferBytes, err)
	}

	// ipv4.NewPacketConn exposes per-packet control information that a
	// plain *net.UDPConn does not; request the destination address and
	// interface index for every socket read so multi-homed hosts can tell
	// which local address a datagram actually arrived on.
	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetControlMessage(ipv4.FlagDst|ipv4.FlagInterface, true); err != nil {
		log.Debug("ipv4 control messages unavailable on this platform: %v", err)
	}

	receiver := rtpreceiver.NewReceiver(rtpreceiver.Config{
		MaxReconstructedFrameSize: flagMaxFrameSize,
		AcceptRTPFromAny:          flagAcceptAnySource,
	})

	var hub *monitorHub
	if flagMonitorAddress != "" {
		hub = newMonitorHub()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.handleWebsocket)
		server := &http.Server{Addr: flagMonitorAddress, Handler: mux}
		go func() {
			log.Info("monitor listening on %s/ws", flagMonitorAddress)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("monitor server stopped: %v", err)
			}
		}()
	}

	receiver.SetFrameHandler(func(f rtpreceiver.Frame) {
		log.Debug("frame: ssrc=%08x codec=%s ts=%d bytes=%d key=%v",
			f.StreamSSRC, f.Codec, f.Timestamp, len(f.Data), f.KeyFrame)
		if hub != nil {
			hub.broadcast(frameEvent{
				StreamSSRC: f.StreamSSRC,
				Codec:      f.Codec.String(),
				Timestamp:  f.Timestamp,
				Bytes:      len(f.Data),
				KeyFrame:   f.KeyFrame,
			})
		}
	})
	receiver.SetByeHandler(func(ssrc uint32, reason string) {
		log.Info("stream %08x closed: %s", ssrc, reason)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		receiver.Close("signal")
		conn.Close()
	}()

	log.Info("listening on %s", addr)
	readLoop(pconn, receiver)
	log.Info("final stats: %+v", receiver.Stats())
}

// readLoop reads datagrams off pconn until it errors (typically because the
// socket was closed during shutdown) and hands each one to the receiver.
func readLoop(pconn *ipv4.PacketConn, receiver *rtpreceiver.Receiver) {
	buf := make([]byte, 65536)
	for {
		n, cm, src, err := pconn.ReadFrom(buf)
		if err != nil {
			log.Debug("read loop exiting: %v", err)
			return
		}

		remote, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}

		if cm != nil {
			log.Debug("datagram from %s arrived on local address %s (if %d)", remote, cm.Dst, cm.IfIndex)
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		receiver.OnDatagram(flagBindPort, remote, datagram)
	}
}

var version = func() {
	fmt.Println("rtpvideod (development build)")
}
