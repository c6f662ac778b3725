package mavlink

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/pkg/errors"
)

type Scheme string

const (
	SchemeTCPServer Scheme = "tcpin"
	SchemeTCPClient Scheme = "tcpout"
	SchemeUDPServer Scheme = "udpin"
	SchemeUDPClient Scheme = "udpout"
	SchemeSerial    Scheme = "serial"

	DefaultBaud = 57600
)

var (
	ErrEmptyDescriptor = errors.New("connection URL cannot be empty")
	ErrMissingScheme   = errors.New("connection URL must be of the form <scheme>://<address>")
	ErrUnknownScheme   = errors.New("unsupported connection URL scheme")
	ErrMissingPort     = errors.New("connection URL must include a port")
	ErrInvalidPort     = errors.New("port must be a number between 1 and 65535")
	ErrMissingHost     = errors.New("a remote host is required for outgoing connections")
	ErrMissingDevice   = errors.New("serial connection URL must include a device path")
	ErrInvalidBaud     = errors.New("baud rate must be a positive number")
)

// legacy spellings still accepted by most ground stations
var schemeAliases = map[string]Scheme{
	"udp": SchemeUDPServer,
	"tcp": SchemeTCPClient,
}

// Descriptor is a parsed connection URL.
type Descriptor struct {
	Scheme Scheme

	// Network endpoints
	Host string
	Port int

	// Serial endpoints
	Device string
	Baud   int
}

// ParseDescriptor parses a connection URL such as "udpin://0.0.0.0:14540" or
// "serial:///dev/ttyUSB0:57600".
func ParseDescriptor(raw string) (*Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyDescriptor
	}

	parts := strings.SplitN(raw, "://", 2)
	if len(parts) != 2 {
		return nil, ErrMissingScheme
	}

	scheme := Scheme(strings.ToLower(parts[0]))
	if alias, ok := schemeAliases[string(scheme)]; ok {
		scheme = alias
	}

	d := &Descriptor{Scheme: scheme}

	switch scheme {
	case SchemeSerial:
		if err := d.parseSerial(parts[1]); err != nil {
			return nil, err
		}
	case SchemeTCPServer, SchemeTCPClient, SchemeUDPServer, SchemeUDPClient:
		if err := d.parseNetwork(parts[1]); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnknownScheme, "'%s'", parts[0])
	}

	return d, nil
}

func (d *Descriptor) parseSerial(rest string) error {
	device := rest
	baud := DefaultBaud

	if idx := strings.LastIndex(rest, ":"); idx != -1 {
		suffix := rest[idx+1:]

		n, err := strconv.Atoi(suffix)
		if err != nil || n <= 0 {
			return errors.Wrapf(ErrInvalidBaud, "'%s'", suffix)
		}

		device = rest[:idx]
		baud = n
	}

	if device == "" {
		return ErrMissingDevice
	}

	d.Device = device
	d.Baud = baud

	return nil
}

func (d *Descriptor) parseNetwork(rest string) error {
	host, portStr, err := net.SplitHostPort(rest)
	if err != nil {
		return errors.Wrapf(ErrMissingPort, "'%s'", rest)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.Wrapf(ErrInvalidPort, "'%s'", portStr)
	}

	if host == "" && (d.Scheme == SchemeTCPClient || d.Scheme == SchemeUDPClient) {
		return ErrMissingHost
	}

	d.Host = host
	d.Port = port

	return nil
}

// Address returns host:port for network endpoints.
func (d *Descriptor) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// EndpointConf translates the descriptor into a gomavlib endpoint.
func (d *Descriptor) EndpointConf() (gomavlib.EndpointConf, error) {
	switch d.Scheme {
	case SchemeSerial:
		return gomavlib.EndpointSerial{Device: d.Device, Baud: d.Baud}, nil
	case SchemeTCPServer:
		return gomavlib.EndpointTCPServer{Address: d.Address()}, nil
	case SchemeTCPClient:
		return gomavlib.EndpointTCPClient{Address: d.Address()}, nil
	case SchemeUDPServer:
		return gomavlib.EndpointUDPServer{Address: d.Address()}, nil
	case SchemeUDPClient:
		return gomavlib.EndpointUDPClient{Address: d.Address()}, nil
	}

	return nil, errors.Wrapf(ErrUnknownScheme, "'%s'", d.Scheme)
}

func (d *Descriptor) String() string {
	if d.Scheme == SchemeSerial {
		return fmt.Sprintf("%s://%s:%d", d.Scheme, d.Device, d.Baud)
	}

	return fmt.Sprintf("%s://%s", d.Scheme, d.Address())
}
