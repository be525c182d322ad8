// Package command implements the line-delimited JSON configuration protocol.
// Every command line yields exactly one {"Ok":...} or {"Err":...} line.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Alia5/padrelay/input"
)

// ErrUnsupported is reported for any line that is not a known command.
var ErrUnsupported = errors.New("unsupported command")

// unsupportedMessage is the Err text clients see for ErrUnsupported.
const unsupportedMessage = "The given command is unsupported."

// Name identifies a command variant.
type Name string

const (
	GetAnarchyMode   Name = "GetAnarchyMode"
	SetAnarchyMode   Name = "SetAnarchyMode"
	GetIps           Name = "GetIps"
	SetIps           Name = "SetIps"
	GetDelay         Name = "GetDelay"
	SetDelay         Name = "SetDelay"
	GetLeftDeadzone  Name = "GetLeftDeadzone"
	SetLeftDeadzone  Name = "SetLeftDeadzone"
	GetRightDeadzone Name = "GetRightDeadzone"
	SetRightDeadzone Name = "SetRightDeadzone"
	Swap             Name = "Swap"
	Connect          Name = "Connect"
	Disconnect       Name = "Disconnect"
	Exit             Name = "Exit"
	GetSlots         Name = "GetSlots"
	RunScript        Name = "RunScript"
)

// Command is a decoded command line. Only the fields the variant carries
// are meaningful.
type Command struct {
	Name        Name
	I, J        int
	AnarchyMode bool
	IPs         []string
	Delay       uint8
	Deadzone    float32
	Script      []input.ScriptStep
}

// unit variants are encoded as bare strings, everything else as a
// single-key object.
var unitVariants = map[Name]bool{
	GetAnarchyMode: true,
	GetIps:         true,
	Connect:        true,
	Disconnect:     true,
	Exit:           true,
	GetSlots:       true,
}

type payload struct {
	I           *uint              `json:"i"`
	J           *uint              `json:"j"`
	AnarchyMode *bool              `json:"anarchy_mode"`
	IPs         []string           `json:"ips"`
	Delay       *uint8             `json:"delay"`
	Deadzone    *float32           `json:"deadzone"`
	Script      []input.ScriptStep `json:"script"`
}

// Decode parses one command line.
func Decode(line []byte) (Command, error) {
	line = bytes.TrimSpace(line)
	if len(line) > 0 && line[0] == '"' {
		var name Name
		if err := json.Unmarshal(line, &name); err != nil || !unitVariants[name] {
			return Command{}, ErrUnsupported
		}
		return Command{Name: name}, nil
	}

	var tagged map[Name]json.RawMessage
	if err := json.Unmarshal(line, &tagged); err != nil || len(tagged) != 1 {
		return Command{}, ErrUnsupported
	}
	for name, raw := range tagged {
		var p payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return Command{}, ErrUnsupported
		}
		cmd, ok := fromPayload(name, p)
		if !ok {
			return Command{}, ErrUnsupported
		}
		return cmd, nil
	}
	return Command{}, ErrUnsupported
}

func fromPayload(name Name, p payload) (Command, bool) {
	cmd := Command{Name: name}
	if p.I != nil {
		cmd.I = int(*p.I)
	}
	switch name {
	case SetAnarchyMode:
		if p.AnarchyMode == nil {
			return cmd, false
		}
		cmd.AnarchyMode = *p.AnarchyMode
	case SetIps:
		if p.IPs == nil {
			return cmd, false
		}
		cmd.IPs = p.IPs
	case GetDelay, GetLeftDeadzone, GetRightDeadzone:
		if p.I == nil {
			return cmd, false
		}
	case SetDelay:
		if p.I == nil || p.Delay == nil {
			return cmd, false
		}
		cmd.Delay = *p.Delay
	case SetLeftDeadzone, SetRightDeadzone:
		if p.I == nil || p.Deadzone == nil {
			return cmd, false
		}
		cmd.Deadzone = *p.Deadzone
	case Swap:
		if p.I == nil || p.J == nil {
			return cmd, false
		}
		cmd.J = int(*p.J)
	case RunScript:
		if p.I == nil || p.Script == nil {
			return cmd, false
		}
		cmd.Script = p.Script
	default:
		return cmd, false
	}
	return cmd, true
}

// MarshalJSON encodes the command the way Decode expects it.
func (c Command) MarshalJSON() ([]byte, error) {
	if unitVariants[c.Name] {
		return json.Marshal(string(c.Name))
	}
	i := uint(c.I)
	var p any
	switch c.Name {
	case SetAnarchyMode:
		p = struct {
			AnarchyMode bool `json:"anarchy_mode"`
		}{c.AnarchyMode}
	case SetIps:
		ips := c.IPs
		if ips == nil {
			ips = []string{}
		}
		p = struct {
			IPs []string `json:"ips"`
		}{ips}
	case GetDelay, GetLeftDeadzone, GetRightDeadzone:
		p = struct {
			I uint `json:"i"`
		}{i}
	case SetDelay:
		p = struct {
			I     uint  `json:"i"`
			Delay uint8 `json:"delay"`
		}{i, c.Delay}
	case SetLeftDeadzone, SetRightDeadzone:
		p = struct {
			I        uint    `json:"i"`
			Deadzone float32 `json:"deadzone"`
		}{i, c.Deadzone}
	case Swap:
		p = struct {
			I uint `json:"i"`
			J uint `json:"j"`
		}{i, uint(c.J)}
	case RunScript:
		script := c.Script
		if script == nil {
			script = []input.ScriptStep{}
		}
		p = struct {
			I      uint               `json:"i"`
			Script []input.ScriptStep `json:"script"`
		}{i, script}
	default:
		return nil, fmt.Errorf("encode command %q: %w", c.Name, ErrUnsupported)
	}
	return json.Marshal(map[Name]any{c.Name: p})
}
