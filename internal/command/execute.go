package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Alia5/padrelay/apitypes"
	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/metrics"
)

// Model is the state commands operate on.
type Model interface {
	AnarchyMode() bool
	SetAnarchyMode(on bool)
	IPs() []string
	SetIPs(ips []string) error
	Delay(i int) (uint8, error)
	SetDelay(i int, delay uint8) error
	LeftDeadzone(i int) (float32, error)
	SetLeftDeadzone(i int, dz float32) error
	RightDeadzone(i int) (float32, error)
	SetRightDeadzone(i int, dz float32) error
	Swap(i, j int) error
	Connect() error
	Disconnect() error
	Exit() error
	RunScript(i int, steps []input.ScriptStep) error
	Slots() apitypes.SlotsResponse
}

// Handler executes command lines against a Model.
type Handler struct {
	model  Model
	logger *slog.Logger
}

func NewHandler(model Model, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{model: model, logger: logger}
}

// HandleLine decodes and executes one line and returns the encoded result
// without a trailing newline.
func (h *Handler) HandleLine(line []byte) []byte {
	cmd, err := Decode(line)
	var res apitypes.Result
	if err != nil {
		h.logger.Debug("unsupported command", "line", string(line))
		res = Fail(err)
	} else {
		h.logger.Debug("command", "name", cmd.Name)
		res = Execute(h.model, cmd)
	}
	if res.Err != nil {
		metrics.Commands.WithLabelValues("err").Inc()
		h.logger.Info("command failed", "line", string(line), "error", *res.Err)
	} else {
		metrics.Commands.WithLabelValues("ok").Inc()
	}
	out, _ := json.Marshal(res)
	return out
}

// Ok builds a successful result.
func Ok(msg string) apitypes.Result { return apitypes.Result{Ok: &msg} }

// Fail builds a failed result from err.
func Fail(err error) apitypes.Result {
	msg := err.Error()
	if errors.Is(err, ErrUnsupported) {
		msg = unsupportedMessage
	}
	return apitypes.Result{Err: &msg}
}

func done(err error, msg string) apitypes.Result {
	if err != nil {
		return Fail(err)
	}
	return Ok(msg)
}

func formatDeadzone(dz float32) string {
	return strconv.FormatFloat(float64(dz), 'g', -1, 32)
}

// Execute runs cmd against m.
func Execute(m Model, cmd Command) apitypes.Result {
	switch cmd.Name {
	case GetAnarchyMode:
		return Ok(strconv.FormatBool(m.AnarchyMode()))
	case SetAnarchyMode:
		m.SetAnarchyMode(cmd.AnarchyMode)
		return Ok("Successfully set anarchy mode.")
	case GetIps:
		ips := m.IPs()
		if ips == nil {
			ips = []string{}
		}
		b, err := json.Marshal(ips)
		return done(err, string(b))
	case SetIps:
		return done(m.SetIPs(cmd.IPs), "Successfully set IPs.")
	case GetDelay:
		d, err := m.Delay(cmd.I)
		return done(err, strconv.Itoa(int(d)))
	case SetDelay:
		return done(m.SetDelay(cmd.I, cmd.Delay), fmt.Sprintf("Successfully set delay of gamepad %d.", cmd.I))
	case GetLeftDeadzone:
		dz, err := m.LeftDeadzone(cmd.I)
		return done(err, formatDeadzone(dz))
	case SetLeftDeadzone:
		return done(m.SetLeftDeadzone(cmd.I, cmd.Deadzone), fmt.Sprintf("Successfully set left deadzone of gamepad %d.", cmd.I))
	case GetRightDeadzone:
		dz, err := m.RightDeadzone(cmd.I)
		return done(err, formatDeadzone(dz))
	case SetRightDeadzone:
		return done(m.SetRightDeadzone(cmd.I, cmd.Deadzone), fmt.Sprintf("Successfully set right deadzone of gamepad %d.", cmd.I))
	case Swap:
		return done(m.Swap(cmd.I, cmd.J), fmt.Sprintf("Successfully swapped gamepads %d and %d.", cmd.I, cmd.J))
	case Connect:
		return done(m.Connect(), "Now sending packets.")
	case Disconnect:
		return done(m.Disconnect(), "No longer sending packets.")
	case Exit:
		return done(m.Exit(), "Successfully exited.")
	case GetSlots:
		b, err := json.Marshal(m.Slots())
		return done(err, string(b))
	case RunScript:
		return done(m.RunScript(cmd.I, cmd.Script), fmt.Sprintf("Successfully scheduled script on gamepad %d.", cmd.I))
	}
	return Fail(ErrUnsupported)
}
