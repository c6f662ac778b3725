// Package options holds everything the operator can set on the command line.
// It performs "light" validation only; the descriptor itself is validated
// when the connection is opened.
package options

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

var (
	VERSION = "UNSET"

	DefaultMessages = []string{"OPTICAL_FLOW", "OPTICAL_FLOW_RAD", "DISTANCE_SENSOR", "HEARTBEAT"}

	// ErrUsage is wrapped by every error New returns; callers print Usage and
	// exit 1 when they see it.
	ErrUsage = errors.New("invalid usage")
)

const Usage = `Usage: mavmon [flags] <connection_url>
Connection URL format should be:
 For TCP server: tcpin://<our_ip>:<port>
 For TCP client: tcpout://<remote_ip>:<port>
 For UDP server: udpin://<our_ip>:<port>
 For UDP client: udpout://<remote_ip>:<port>
 For Serial : serial://</path/to/serial/dev>[:<baudrate>]
For example, to connect to a serial device: serial:///dev/ttyUSB0:57600
`

type Options struct {
	ConnectionURL string `kong:"arg,required,name='connection-url',help='MAVLink connection URL (tcpin, tcpout, udpin, udpout or serial).'"`

	Debug            bool          `kong:"help='Enable debug logging.'"`
	DiscoveryTimeout time.Duration `kong:"default='10s',help='How long to wait for a system heartbeat before falling back to listen-only.'"`
	GracePeriod      time.Duration `kong:"default='2s',help='Extra time to wait for a system after the discovery timeout.'"`
	ReportInterval   time.Duration `kong:"default='1s',help='How often the rate table is redrawn.'"`
	Messages         []string      `kong:"default='OPTICAL_FLOW,OPTICAL_FLOW_RAD,DISTANCE_SENSOR,HEARTBEAT',help='Comma-separated MAVLink message names to monitor, in display order.'"`
	QueueSize        int           `kong:"default='1024',help='Capacity of the ingest queue.'"`
	Backpressure     string        `kong:"default='block',enum='block,drop',help='What to do when the ingest queue is full (block, drop).'"`
	MetricsAddress   string        `kong:"help='Serve Prometheus metrics and the stats API on this host:port.'"`
	NoClear          bool          `kong:"help='Do not clear the screen between frames.'"`
	Version          bool          `kong:"help='Display version and exit.'"`
}

// New parses args (without the program name) into Options.
func New(args []string) (*Options, error) {
	cliOpts := &Options{}

	maybeDisplayVersion(args)

	k, err := kong.New(
		cliOpts,
		kong.Name("mavmon"),
		kong.Description("Monitor MAVLink sensor message rates.\n\n"+Usage),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create new kong instance")
	}

	if _, err := k.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUsage, err)
	}

	if err := validateOptions(cliOpts); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUsage, err)
	}

	return cliOpts, nil
}

func validateOptions(o *Options) error {
	if strings.TrimSpace(o.ConnectionURL) == "" {
		return errors.New("connection url cannot be empty")
	}

	if o.DiscoveryTimeout <= 0 {
		return errors.New("--discovery-timeout must be greater than 0")
	}

	if o.GracePeriod < 0 {
		return errors.New("--grace-period cannot be negative")
	}

	if o.ReportInterval <= 0 {
		return errors.New("--report-interval must be greater than 0")
	}

	if o.QueueSize <= 0 {
		return errors.New("--queue-size must be greater than 0")
	}

	messages := make([]string, 0, len(o.Messages))
	seen := make(map[string]struct{}, len(o.Messages))

	for _, m := range o.Messages {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}

		if _, ok := seen[m]; ok {
			continue
		}

		seen[m] = struct{}{}
		messages = append(messages, m)
	}

	if len(messages) == 0 {
		return errors.New("--messages cannot be empty")
	}

	o.Messages = messages

	return nil
}

func maybeDisplayVersion(args []string) {
	for _, f := range args {
		if f == "--version" {
			fmt.Println(VERSION)
			os.Exit(0)
		}
	}
}
