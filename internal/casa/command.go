package casa

import (
	"fmt"
	"strings"
)

const ModeManual = "manual"

// FlagCommand is a flagdata task invocation. Empty selections are left out
// of the rendered command, except vis which CASA always expects.
type FlagCommand struct {
	Vis         string
	Mode        string
	Antenna     string
	Correlation string
	Spw         string
	Scan        string
	Field       string
	TimeRange   string
	FlagBackup  *bool
}

// NewFlagCommand returns a manual-mode flagdata command for vis
func NewFlagCommand(vis string) FlagCommand {
	return FlagCommand{Vis: vis, Mode: ModeManual}
}

// WithoutBackup disables the flag version backup CASA makes on every call
func (c FlagCommand) WithoutBackup() FlagCommand {
	backup := false
	c.FlagBackup = &backup
	return c
}

func (c FlagCommand) String() string {
	mode := c.Mode
	if mode == "" {
		mode = ModeManual
	}

	args := []string{
		quoted("vis", c.Vis),
		quoted("mode", mode),
	}

	for _, p := range []struct{ name, value string }{
		{"antenna", c.Antenna},
		{"correlation", c.Correlation},
		{"spw", c.Spw},
		{"scan", c.Scan},
		{"field", c.Field},
		{"timerange", c.TimeRange},
	} {
		if p.value != "" {
			args = append(args, quoted(p.name, p.value))
		}
	}

	if c.FlagBackup != nil {
		args = append(args, fmt.Sprintf("flagbackup=%s", pyBool(*c.FlagBackup)))
	}

	return fmt.Sprintf("flagdata(%s)", strings.Join(args, ", "))
}

func quoted(name, value string) string {
	return fmt.Sprintf("%s='%s'", name, strings.ReplaceAll(value, "'", `\'`))
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
