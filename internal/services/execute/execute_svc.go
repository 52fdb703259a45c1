package execute

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrEmptyCode = errors.New("empty code payload")
	ErrTimeout   = errors.New("execution timed out")
)

// IExecuteService runs a code snippet with a bounded wall-clock timeout.
// The snippet is written to a uniquely named transient file, handed to the
// configured interpreter, and the file is removed afterwards. This is
// filesystem plumbing, not a sandbox; do not expose it to untrusted input
// without real process isolation in front.
type IExecuteService interface {
	Run(ctx context.Context, code string) (string, error)
}

type execService struct {
	interpreter string
	timeout     time.Duration
	tempDir     string // empty means the OS default
	fileSuffix  string // matches the interpreter, e.g. ".py"
}

func NewExecuteService(interpreter string, timeout time.Duration, tempDir, fileSuffix string) IExecuteService {
	return &execService{
		interpreter: interpreter,
		timeout:     timeout,
		tempDir:     tempDir,
		fileSuffix:  fileSuffix,
	}
}

func (s *execService) Run(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}

	f, err := os.CreateTemp(s.tempDir, "snippet-*"+s.fileSuffix)
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			zap.L().Warn("exec.cleanup", zap.String("path", path), zap.Error(rmErr))
		}
	}()

	if _, err = f.WriteString(code); err != nil {
		f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.interpreter, path)
	// Orphaned children inherit the output pipes; without a wait delay a
	// killed interpreter could still stall Run until they exit.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", ErrTimeout
	}
	if runErr != nil {
		// Program-raised failures surface as the captured stderr, which is
		// what the client renders.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.New(msg)
		}
		return "", runErr
	}
	return stdout.String(), nil
}
