package scan

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// row matches "<ssid> <bssid> <rssi> ...", the SSID may be empty or contain blanks
var row = regexp.MustCompile(`^(?:(.*?)\s+)?([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s+(-?\d+)(?:\s|$)`)

// tableHandler runs a scanner printing one network per line as a
// whitespace separated table of SSID, BSSID and RSSI columns.
type tableHandler struct {
	name    string
	binPath string
	args    []string
}

// New creates a handler for the scanner described by config.
func New(config *Config) (Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	binPath, err := FindRuntime(config.Runtime)
	if err != nil {
		return nil, fmt.Errorf("error finding runtime: %w", err)
	}

	return NewTableHandler(binPath, config.Args...), nil
}

// NewTableHandler creates a handler for the binary at binPath, which is not
// looked up.
func NewTableHandler(binPath string, args ...string) Handler {
	return &tableHandler{
		name:    binName(binPath),
		binPath: binPath,
		args:    args,
	}
}

func (h *tableHandler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

// Parse parses a line of scanner output into ps. Header lines are ignored.
func (h *tableHandler) Parse(line string, ps survey.PointSample) error {
	m := row.FindStringSubmatch(line)
	if m == nil {
		if isHeader(line) {
			return nil
		}
		return fmt.Errorf("invalid scan output: %q", line)
	}

	rssi, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("invalid RSSI: %w", err)
	}

	ps.Add(survey.Measurement{
		Key:      strings.ToUpper(m[2]),
		Label:    strings.TrimSpace(m[1]),
		Strength: rssi,
	})
	return nil
}

func (h *tableHandler) Name() string {
	return h.name
}

func isHeader(line string) bool {
	fields := strings.Fields(strings.ToUpper(line))
	var bssid, rssi bool
	for _, f := range fields {
		switch f {
		case "BSSID":
			bssid = true
		case "RSSI":
			rssi = true
		}
	}
	return bssid && rssi
}

func binName(binPath string) string {
	name := binPath
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".exe")
}
