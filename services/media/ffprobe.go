package mediasvc

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

// FFProbe reads media metadata with the ffprobe binary.
type FFProbe struct {
	path string
}

var _ core.MediaProber = (*FFProbe)(nil)

func NewFFProbe(path string) *FFProbe {
	if path == "" {
		path = "ffprobe"
	}
	return &FFProbe{path: path}
}

func (p *FFProbe) Duration(ctx context.Context, file string) (float64, error) {
	bin, err := exec.LookPath(p.path)
	if err != nil {
		return 0, errors.Wrap(err, "ffprobe not found")
	}
	out, err := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		file,
	).Output()
	if err != nil {
		return 0, errors.Wrap(err, "running ffprobe")
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, errors.Wrap(err, "decoding ffprobe output")
	}
	if probe.Format.Duration == "" {
		return 0, errors.New("ffprobe output has no duration")
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	return d, errors.Wrap(err, "parsing duration")
}
