package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/config"
)

const (
	defaultForceSuccessFilePath = "easycheck.success"
	defaultMtcFilePath          = "easycheck.disabled"
)

// ForceSuccessFileCheck reports an exclusive success while its marker
// file exists, letting an operator force the verdict to healthy no
// matter what the other checks find.
type ForceSuccessFileCheck struct {
	filePath string
	logger   *zap.Logger
}

// NewForceSuccessFileCheck builds the force-success check. It is always
// enabled; without configuration it watches the default marker path.
func NewForceSuccessFileCheck(cfg config.Config, logger *zap.Logger) (*ForceSuccessFileCheck, error) {
	filePath := cfg.ForceSuccessFilePath
	if filePath == "" {
		filePath = defaultForceSuccessFilePath
	}
	return &ForceSuccessFileCheck{filePath: filePath, logger: logger}, nil
}

func (c *ForceSuccessFileCheck) Name() string {
	return "force success file"
}

func (c *ForceSuccessFileCheck) Run(ctx context.Context) (Outcome, error) {
	c.logger.Debug("checking force success file", zap.String("path", c.filePath))
	if _, err := os.Stat(c.filePath); err != nil {
		// marker absent: a plain success that leaves the decision to
		// the other checks
		return Success(), nil
	}
	return Success().IgnoreOtherResults(), nil
}

// MtcFileCheck reports a failure while its maintenance marker file
// exists, taking the instance out of rotation for planned work.
type MtcFileCheck struct {
	filePath string
	logger   *zap.Logger
}

// NewMtcFileCheck builds the maintenance check. It is always enabled;
// without configuration it watches the default marker path.
func NewMtcFileCheck(cfg config.Config, logger *zap.Logger) (*MtcFileCheck, error) {
	filePath := cfg.MtcFilePath
	if filePath == "" {
		filePath = defaultMtcFilePath
	}
	return &MtcFileCheck{filePath: filePath, logger: logger}, nil
}

func (c *MtcFileCheck) Name() string {
	return "mtc file"
}

func (c *MtcFileCheck) Run(ctx context.Context) (Outcome, error) {
	c.logger.Debug("checking mtc file", zap.String("path", c.filePath))
	_, err := os.Stat(c.filePath)
	switch {
	case err == nil:
		return Failure("mtc file exists"), nil
	case errors.Is(err, fs.ErrNotExist):
		return Success(), nil
	default:
		return Failure(fmt.Sprintf("unable to query mtc existence: %v", err)), nil
	}
}
