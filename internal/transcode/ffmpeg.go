package transcode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmunix/vpress/internal/policy"
)

// Fixed preamble: overwrite output, warning-level logging, no banner.
var preamble = []string{"-y", "-v", "warning", "-hide_banner"}

// FFmpeg runs the ffmpeg binary for transcode tasks and places symlinks
// for no-compression tasks.
type FFmpeg struct {
	binary string
	log    *slog.Logger
}

// NewFFmpeg returns a transcoder invoking the given binary ("ffmpeg"
// when empty).
func NewFFmpeg(binary string, log *slog.Logger) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	if log == nil {
		log = slog.Default()
	}
	return &FFmpeg{binary: binary, log: log}
}

// Transcode implements Transcoder. Transcoded output is always named
// <stem>.mp4; a linked file keeps its original name since no container
// conversion occurs.
func (f *FFmpeg) Transcode(ctx context.Context, source, destDir string, args *policy.ArgSet, threads int) (string, error) {
	if args == nil {
		return link(source, filepath.Join(destDir, filepath.Base(source)))
	}

	out := filepath.Join(destDir, stem(source)+".mp4")
	argv := commandArgs(source, out, args, threads)

	f.log.Debug("running transcoder", "binary", f.binary, "source", source, "output", out)

	cmd := exec.CommandContext(ctx, f.binary, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Drop any partial output so a fallback link can take its place.
		_ = os.Remove(out)
		return "", &ExecError{Source: source, Diagnostic: stderr.String(), Err: err}
	}
	return out, nil
}

// commandArgs assembles the argument list: preamble, input fragment,
// input file, output fragment, thread hint, destination.
func commandArgs(source, dest string, args *policy.ArgSet, threads int) []string {
	argv := append([]string{}, preamble...)
	if args.Input != "" {
		argv = append(argv, SplitArgs(args.Input)...)
	}
	argv = append(argv, "-i", source)
	if args.Output != "" {
		argv = append(argv, SplitArgs(args.Output)...)
	}
	if threads > 0 {
		argv = append(argv, "-threads", strconv.Itoa(threads))
	}
	return append(argv, dest)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// link places a symlink to source at dst, replacing any existing entry
// so a fallback retry after a partial transcode converges.
func link(source, dst string) (string, error) {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return "", fmt.Errorf("replace %s: %w", dst, err)
		}
	}
	if err := os.Symlink(source, dst); err != nil {
		return "", fmt.Errorf("link %s: %w", dst, err)
	}
	return dst, nil
}
