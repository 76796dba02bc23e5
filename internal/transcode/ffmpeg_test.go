package transcode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/vpress/internal/policy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript drops an executable shell script acting as the transcoder
// binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCommandArgs(t *testing.T) {
	args := &policy.ArgSet{
		Input:  "-color_trc linear",
		Output: `-vf "format=yuv420p" -crf 18`,
	}
	argv := commandArgs("/in/clip.avi", "/out/clip.mp4", args, 4)

	assert.Equal(t, []string{
		"-y", "-v", "warning", "-hide_banner",
		"-color_trc", "linear",
		"-i", "/in/clip.avi",
		"-vf", "format=yuv420p", "-crf", "18",
		"-threads", "4",
		"/out/clip.mp4",
	}, argv)
}

func TestCommandArgs_EmptyFragmentsAndZeroThreads(t *testing.T) {
	argv := commandArgs("/in/clip.mp4", "/out/clip.mp4", &policy.ArgSet{}, 0)

	assert.Equal(t, []string{
		"-y", "-v", "warning", "-hide_banner",
		"-i", "/in/clip.mp4",
		"/out/clip.mp4",
	}, argv)
}

func TestTranscode_NilArgsLinksOriginalName(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.avi")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	destDir := t.TempDir()

	f := NewFFmpeg("", testLogger())
	out, err := f.Transcode(context.Background(), src, destDir, nil, 0)
	require.NoError(t, err)

	// Original extension preserved; no container conversion occurred.
	assert.Equal(t, filepath.Join(destDir, "clip.avi"), out)
	target, err := os.Readlink(out)
	require.NoError(t, err)
	assert.Equal(t, src, target)
}

func TestTranscode_NilArgsReplacesExistingEntry(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.avi")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	destDir := t.TempDir()
	stale := filepath.Join(destDir, "clip.avi")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o644))

	f := NewFFmpeg("", testLogger())
	out, err := f.Transcode(context.Background(), src, destDir, nil, 0)
	require.NoError(t, err)

	target, err := os.Readlink(out)
	require.NoError(t, err)
	assert.Equal(t, src, target)
}

func TestTranscode_SuccessReturnsMp4Path(t *testing.T) {
	// The destination is the final argument; touch it like a transcode would.
	bin := writeScript(t, "for last; do :; done\ntouch \"$last\"\n")
	src := filepath.Join(t.TempDir(), "clip.avi")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	destDir := t.TempDir()

	f := NewFFmpeg(bin, testLogger())
	out, err := f.Transcode(context.Background(), src, destDir, &policy.ArgSet{Output: "-crf 18"}, 0)
	require.NoError(t, err)

	// Always normalized to an .mp4 name regardless of source container.
	assert.Equal(t, filepath.Join(destDir, "clip.mp4"), out)
	assert.FileExists(t, out)
}

func TestTranscode_FailureCarriesDiagnostic(t *testing.T) {
	bin := writeScript(t, "echo boom >&2\nexit 3\n")
	src := filepath.Join(t.TempDir(), "clip.avi")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	destDir := t.TempDir()

	f := NewFFmpeg(bin, testLogger())
	_, err := f.Transcode(context.Background(), src, destDir, &policy.ArgSet{Output: "-crf 18"}, 0)
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, src, execErr.Source)
	assert.Contains(t, execErr.Diagnostic, "boom")
}
