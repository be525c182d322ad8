package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Alia5/padrelay/apiclient"
	"github.com/Alia5/padrelay/apitypes"
)

// Status prints the slot table of a running daemon.
type Status struct {
	Addr    string        `help:"Command listener of the running daemon (see run --api.addr)" default:"127.0.0.1:8001" env:"PADRELAY_STATUS_ADDR"`
	Timeout time.Duration `help:"Give up after this long" default:"3s" env:"PADRELAY_STATUS_TIMEOUT"`

	out io.Writer `kong:"-"`
}

// Run is called by Kong when the status command is executed.
func (s *Status) Run(logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	client := apiclient.NewWithConfig(s.Addr, &apiclient.Config{
		DialTimeout:  s.Timeout,
		ReadTimeout:  s.Timeout,
		WriteTimeout: s.Timeout,
	})
	resp, err := client.Slots(ctx)
	if err != nil {
		return fmt.Errorf("query %s: %w", s.Addr, err)
	}
	logger.Debug("fetched slots", "addr", s.Addr, "slots", len(resp.Slots))

	out := s.out
	if out == nil {
		out = os.Stdout
	}
	renderStatus(out, resp)
	return nil
}

func renderStatus(w io.Writer, resp *apitypes.SlotsResponse) {
	state := "disconnected"
	if resp.Connected {
		state = "sending"
	}
	ips := strings.Join(resp.IPs, ", ")
	if ips == "" {
		ips = "none"
	}
	fmt.Fprintf(w, "Remote: %s (ips: %s)  Anarchy: %t  Pending events: %d\n\n", state, ips, resp.Anarchy, resp.Pending)

	table := tablewriter.NewWriter(w)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, slot := range resp.Slots {
		device := "-"
		typeColor := tablewriter.Normal
		if slot.Device != nil {
			device = strconv.FormatUint(uint64(*slot.Device), 10)
		}
		if slot.Type != "disconnected" {
			typeColor = tablewriter.FgGreenColor
		}
		table.Rich(
			[]string{
				strconv.Itoa(slot.Index),
				slot.Type,
				device,
				strconv.Itoa(int(slot.Delay)),
				strconv.FormatFloat(float64(slot.LeftDeadzone), 'g', -1, 32),
				strconv.FormatFloat(float64(slot.RightDeadzone), 'g', -1, 32),
				fmt.Sprintf("%#08x", slot.Buttons),
			},
			[]tablewriter.Colors{{}, {tablewriter.Normal, typeColor}, {}, {}, {}, {}, {}})
	}
	table.SetHeader([]string{"Slot", "Type", "Device", "Delay", "Left DZ", "Right DZ", "Buttons"})
	table.SetBorder(false)
	table.Render()
}
