package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/capture"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
)

// hostPingTimeout bounds the availability probe regardless of the configured
// capture timeout; a reachable host answers a ping in well under a second.
const hostPingTimeout = 5 * time.Second

// Executor abstracts script execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the script bridge.
type Option func(*ScriptBridge)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(b *ScriptBridge) {
		if exec != nil {
			b.exec = exec
		}
	}
}

// WithPlatform forces the script platform instead of resolving runtime.GOOS,
// letting tests exercise both script sets anywhere.
func WithPlatform(goos string) Option {
	return func(b *ScriptBridge) {
		if goos != "" {
			b.goos = goos
		}
	}
}

// ScriptBridge implements Bridge by running per-OS automation scripts.
type ScriptBridge struct {
	host           string
	captureTimeout time.Duration
	renderTimeout  time.Duration
	goos           string
	platform       platform
	exec           Executor
	logger         *slog.Logger
}

// New constructs a script bridge for the given host application.
func New(hostApp string, captureTimeout, renderTimeout time.Duration, logger *slog.Logger, opts ...Option) (*ScriptBridge, error) {
	hostApp = strings.TrimSpace(hostApp)
	if hostApp == "" {
		return nil, services.Wrap(services.ErrConfiguration, "bridge", "new", "host application name required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	bridge := &ScriptBridge{
		host:           hostApp,
		captureTimeout: captureTimeout,
		renderTimeout:  renderTimeout,
		goos:           runtime.GOOS,
		exec:           commandExecutor{},
		logger:         logging.NewComponentLogger(logger, "bridge"),
	}
	for _, opt := range opts {
		opt(bridge)
	}
	platform, ok := platformFor(bridge.goos)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "bridge", "new",
			fmt.Sprintf("host automation is not supported on %s", bridge.goos), nil)
	}
	bridge.platform = platform
	return bridge, nil
}

// CaptureSelection implements Bridge.
func (b *ScriptBridge) CaptureSelection(ctx context.Context) (*capture.RawShape, error) {
	res, err := b.run(ctx, "capture_selection", b.captureTimeout)
	if err != nil {
		return nil, err
	}
	if res.Shape == nil {
		return nil, services.Wrap(services.ErrBridge, "bridge", "capture_selection",
			"script reported success without a shape payload", nil)
	}
	return res.Shape, nil
}

// SaveSelectionNative implements Bridge.
func (b *ScriptBridge) SaveSelectionNative(ctx context.Context, destPath string) error {
	_, err := b.run(ctx, "save_selection", b.captureTimeout, destPath)
	return err
}

// InsertNative implements Bridge.
func (b *ScriptBridge) InsertNative(ctx context.Context, nativePath string) error {
	_, err := b.run(ctx, "insert_document", b.renderTimeout, nativePath)
	return err
}

// InsertDocument implements Bridge. Synthesized documents insert through the
// same script as native artifacts.
func (b *ScriptBridge) InsertDocument(ctx context.Context, docPath string) error {
	return b.InsertNative(ctx, docPath)
}

// InsertShape implements Bridge.
func (b *ScriptBridge) InsertShape(ctx context.Context, definitionJSON string) error {
	if strings.TrimSpace(definitionJSON) == "" {
		return services.Wrap(services.ErrValidation, "bridge", "insert_shape", "empty shape definition", nil)
	}
	_, err := b.run(ctx, "insert_shape", b.renderTimeout, definitionJSON)
	return err
}

// ComposeShape implements Bridge.
func (b *ScriptBridge) ComposeShape(ctx context.Context, definitionJSON, destPath string) error {
	if strings.TrimSpace(definitionJSON) == "" {
		return services.Wrap(services.ErrValidation, "bridge", "compose_shape", "empty shape definition", nil)
	}
	_, err := b.run(ctx, "compose_shape", b.renderTimeout, definitionJSON, destPath)
	return err
}

// OpenDocument implements Bridge.
func (b *ScriptBridge) OpenDocument(ctx context.Context, path string) error {
	_, err := b.run(ctx, "open_document", b.renderTimeout, path)
	return err
}

// ExportRaster implements Bridge.
func (b *ScriptBridge) ExportRaster(ctx context.Context, docPath, pngPath string, width, height int) error {
	_, err := b.run(ctx, "export_raster", b.renderTimeout,
		docPath, pngPath, strconv.Itoa(width), strconv.Itoa(height))
	return err
}

// AppendSlide implements Bridge.
func (b *ScriptBridge) AppendSlide(ctx context.Context, deckPath, srcPath string) (int, error) {
	res, err := b.run(ctx, "append_slide", b.renderTimeout, deckPath, srcPath)
	if err != nil {
		return 0, err
	}
	if res.Slide < 1 {
		return 0, services.Wrap(services.ErrBridge, "bridge", "append_slide",
			fmt.Sprintf("script reported invalid slide number %d", res.Slide), nil)
	}
	return res.Slide, nil
}

// ExtractSlide implements Bridge.
func (b *ScriptBridge) ExtractSlide(ctx context.Context, deckPath string, slide int, dstPath string) error {
	if slide < 1 {
		return services.Wrap(services.ErrValidation, "bridge", "extract_slide",
			fmt.Sprintf("slide numbers start at 1, got %d", slide), nil)
	}
	_, err := b.run(ctx, "extract_slide", b.renderTimeout, deckPath, strconv.Itoa(slide), dstPath)
	return err
}

// HostAvailable implements Bridge. Failures of any kind read as unavailable.
func (b *ScriptBridge) HostAvailable(ctx context.Context) bool {
	_, err := b.run(ctx, "ping", hostPingTimeout)
	return err == nil
}

// run executes one script operation: load the per-OS source, bound the call,
// decode the single Result document from stdout, and map failures onto the
// service sentinels. No partial result survives a timeout.
func (b *ScriptBridge) run(ctx context.Context, operation string, timeout time.Duration, args ...string) (*Result, error) {
	script, err := b.platform.source(operation)
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, "bridge", operation, "load automation script", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	out, err := b.exec.Run(ctx, b.platform.binary, b.platform.args(script, append([]string{b.host}, args...)))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "bridge", operation,
				fmt.Sprintf("host automation did not answer within %s", timeout), err)
		}
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrBridge, "bridge", operation, "host automation call canceled", ctx.Err())
		}
		return nil, services.Wrap(services.ErrBridge, "bridge", operation, "script runner failed", err)
	}

	res, err := decodeResult(out)
	if err != nil {
		return nil, services.Wrap(services.ErrBridge, "bridge", operation, "script produced no usable result", err)
	}
	if !res.Success {
		return nil, scriptFailure(operation, res.Error)
	}
	b.logger.Debug("bridge call completed",
		logging.String(logging.FieldOperation, operation),
		logging.Duration("elapsed", time.Since(started)))
	return res, nil
}

// decodeResult extracts the Result document from script stdout. Hosts are
// chatty: automation runners may print warnings before the document, so
// decoding starts at the first brace.
func decodeResult(out []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(out)
	idx := bytes.IndexByte(trimmed, '{')
	if idx < 0 {
		return nil, fmt.Errorf("no JSON document in script output")
	}
	var res Result
	if err := json.Unmarshal(trimmed[idx:], &res); err != nil {
		return nil, fmt.Errorf("decode script output: %w", err)
	}
	return &res, nil
}

// scriptFailure maps the failure text a script reported onto a sentinel. The
// scripts use fixed phrases for the conditions callers branch on.
func scriptFailure(operation, message string) error {
	lowered := strings.ToLower(message)
	marker := services.ErrBridge
	switch {
	case strings.Contains(lowered, "no selection"), strings.Contains(lowered, "nothing selected"):
		marker = services.ErrNoSelection
	case strings.Contains(lowered, "unsupported selection"):
		marker = services.ErrUnsupportedSelection
	case strings.Contains(lowered, "not running"), strings.Contains(lowered, "unavailable"),
		strings.Contains(lowered, "cannot connect"):
		marker = services.ErrHostUnavailable
	}
	if message == "" {
		message = "host automation reported failure without detail"
	}
	return services.Wrap(marker, "bridge", operation, message, nil)
}

// platform describes one supported script runner.
type platform struct {
	goos   string
	binary string
}

func platformFor(goos string) (platform, bool) {
	switch goos {
	case "darwin":
		return platform{goos: goos, binary: "osascript"}, true
	case "windows":
		return platform{goos: goos, binary: "powershell"}, true
	default:
		return platform{}, false
	}
}

// RunnerBinary reports the script runner binary host automation needs on
// goos, or "" when the platform is unsupported.
func RunnerBinary(goos string) string {
	p, ok := platformFor(goos)
	if !ok {
		return ""
	}
	return p.binary
}

// args assembles the runner invocation. osascript takes the JXA source via -e
// and passes operands to run(argv); powershell takes a call operator block so
// the script's param() binds the appended quoted arguments.
func (p platform) args(script string, scriptArgs []string) []string {
	if p.goos == "windows" {
		var sb strings.Builder
		sb.WriteString("& {")
		sb.WriteString(script)
		sb.WriteString("\n}")
		for _, arg := range scriptArgs {
			sb.WriteString(" '")
			sb.WriteString(strings.ReplaceAll(arg, "'", "''"))
			sb.WriteString("'")
		}
		return []string{"-NoProfile", "-NonInteractive", "-Command", sb.String()}
	}
	args := []string{"-l", "JavaScript", "-e", script}
	return append(args, scriptArgs...)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), ctxErr
		}
		if detail := firstLine(stderr.String()); detail != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, detail)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
