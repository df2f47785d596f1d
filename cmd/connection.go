// SPDX-License-Identifier: MIT

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/pelorus-nav/pelorus/pkg/config"
)

// Connection provides a common interface for reading/writing bytes from a
// GNSS character device, a serial port, or a WebSocket bridge
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// DeviceConnection wraps a GNSS character device (/dev/tigps, /dev/gnssN).
// The kernel driver handles line settings, so there is nothing to
// configure here.
type DeviceConnection struct {
	f *os.File
}

func (d *DeviceConnection) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

func (d *DeviceConnection) Write(p []byte) (int, error) {
	return d.f.Write(p)
}

func (d *DeviceConnection) Close() error {
	return d.f.Close()
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// Bridge timeouts. Bring-up frames are small and the bridges sit on the
// local network, so these are generous.
const (
	wsHandshakeTimeout = 10 * time.Second
	wsDialTimeout      = 15 * time.Second
)

// WebSocketConnection adapts a WebSocket bridge to the byte-stream
// Connection interface. Bridge messages arrive whole; Read hands them
// out piecewise so the frame decoder never sees message boundaries.
type WebSocketConnection struct {
	conn    *websocket.Conn
	pending []byte
	closed  bool
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	for len(w.pending) == 0 {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		// AI2 traffic travels in binary messages only; anything else on
		// the bridge is skipped.
		if messageType == websocket.BinaryMessage {
			w.pending = data
		}
	}

	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenDeviceConnection opens a GNSS character device
func OpenDeviceConnection(path string) (Connection, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %v", path, err)
	}
	return &DeviceConnection{f: f}, nil
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection dials the bridge named by the device config.
// Basic auth is attached when a username is configured; --no-ssl-verify
// disables certificate checks for bridges with self-signed certificates.
func OpenWebSocketConnection(dev config.DeviceConfig, password string) (Connection, error) {
	u, err := url.Parse(dev.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	if u.Scheme == "wss" && dev.NoSSLVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	headers := http.Header{}
	if dev.Username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(dev.Username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsDialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, dev.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword returns the bridge password from PELORUS_PASSWORD, or
// prompts on stderr with echo disabled. Piped stdin falls back to a
// plain line read.
func GetPassword() (string, error) {
	if pw := os.Getenv("PELORUS_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	defer fmt.Fprintln(os.Stderr)

	if term.IsTerminal(int(syscall.Stdin)) {
		pw, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %v", err)
	}
	return strings.TrimSpace(line), nil
}

// OpenConnection opens the transport selected by flags or the config file
func OpenConnection(dev config.DeviceConfig) (Connection, string, error) {
	if dev.URL != "" {
		// WebSocket mode
		password := ""
		if dev.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(dev, password)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", dev.URL), nil
	}

	if dev.Port != "" {
		// Serial mode
		conn, err := OpenSerialConnection(dev.Port, dev.Baud)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Serial: %s @ %d baud", dev.Port, dev.Baud), nil
	}

	if dev.Path != "" {
		conn, err := OpenDeviceConnection(dev.Path)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Device: %s", dev.Path), nil
	}

	return nil, "", fmt.Errorf("one of --device, --port or --url must be specified (or set in the config file)")
}
