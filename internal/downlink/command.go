package downlink

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/bft-labs/airship/internal/ports"
)

// Command is a remote configuration command, identified by its downlink port.
type Command uint8

const (
	CmdSendInterval       Command = 1
	CmdCleanInterval      Command = 2
	CmdStabilizationDelay Command = 3
	CmdStopAfterReadout   Command = 4
	CmdResyncInterval     Command = 5
	CmdOverrideTimeSync   Command = 6
	CmdAllowDeepSleep     Command = 7
	CmdForceResync        Command = 8
	CmdRequestReport      Command = 9
)

var commandNames = map[Command]string{
	CmdSendInterval:       "send-interval",
	CmdCleanInterval:      "clean-interval",
	CmdStabilizationDelay: "stabilization-delay",
	CmdStopAfterReadout:   "stop-after-readout",
	CmdResyncInterval:     "resync-interval",
	CmdOverrideTimeSync:   "override-time-sync",
	CmdAllowDeepSleep:     "allow-deep-sleep",
	CmdForceResync:        "resync",
	CmdRequestReport:      "report",
}

// String returns the command name used on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("port-%d", uint8(c))
}

// PayloadSize returns the number of payload bytes the command reads, or 0
// for ports that carry no command.
func (c Command) PayloadSize() int {
	switch {
	case c == CmdSendInterval:
		return 2
	case c >= CmdCleanInterval && c <= CmdRequestReport:
		return 1
	default:
		return 0
	}
}

// ParseCommand looks a command up by name.
func ParseCommand(name string) (Command, error) {
	for c, n := range commandNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown downlink command %q (known: %v)", name, CommandNames())
}

// CommandNames lists command names in port order.
func CommandNames() []string {
	cmds := make([]int, 0, len(commandNames))
	for c := range commandNames {
		cmds = append(cmds, int(c))
	}
	sort.Ints(cmds)
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = commandNames[Command(c)]
	}
	return names
}

// Encode builds the downlink that carries value for c. Values are sent as
// given; the node normalizes them on receipt.
func Encode(c Command, value uint16) (ports.Downlink, error) {
	switch c.PayloadSize() {
	case 2:
		return ports.Downlink{Port: uint8(c), Data: binary.BigEndian.AppendUint16(nil, value)}, nil
	case 1:
		if value > math.MaxUint8 {
			return ports.Downlink{}, fmt.Errorf("%s takes a single byte, got %d", c, value)
		}
		return ports.Downlink{Port: uint8(c), Data: []byte{uint8(value)}}, nil
	default:
		return ports.Downlink{}, fmt.Errorf("port %d carries no command", uint8(c))
	}
}
