package plan

import (
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

func writeFile(t *testing.T, root string, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(rel), 0o644))
	return path
}

func TestWalker_MirrorsTreeAndLinksNonVideo(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.mp4")
	writeFile(t, in, "sub/b.avi")
	notes := writeFile(t, in, "sub/notes.csv")

	w := &Walker{
		InputRoot:  in,
		OutputRoot: out,
		Global:     nil, // no-compression
		Index:      policy.Index{},
		Log:        testLogger(),
	}
	tasks, err := w.Plan()
	require.NoError(t, err)

	// Both videos emitted as tasks, in lexical order.
	require.Len(t, tasks, 2)
	assert.Equal(t, filepath.Join(in, "a.mp4"), tasks[0].Source)
	assert.Equal(t, out, tasks[0].DestDir)
	assert.Equal(t, filepath.Join(in, "sub", "b.avi"), tasks[1].Source)
	assert.Equal(t, filepath.Join(out, "sub"), tasks[1].DestDir)

	// Subdirectory mirrored, non-video linked through.
	assert.DirExists(t, filepath.Join(out, "sub"))
	linked := filepath.Join(out, "sub", "notes.csv")
	target, err := os.Readlink(linked)
	require.NoError(t, err)
	assert.Equal(t, notes, target)

	content, err := os.ReadFile(linked)
	require.NoError(t, err)
	assert.Equal(t, "sub/notes.csv", string(content))
}

func TestWalker_PrecedenceFileOverParentOverGlobal(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	clip := writeFile(t, in, "cam1/clip.mp4")
	writeFile(t, in, "cam1/other.mp4")
	writeFile(t, in, "cam2/clip.mp4")

	fileArgs := &policy.ArgSet{Output: "-crf 10"}
	dirArgs := &policy.ArgSet{Output: "-crf 20"}
	global := &policy.ArgSet{Output: "-crf 30"}

	w := &Walker{
		InputRoot:  in,
		OutputRoot: out,
		Global:     global,
		Index: policy.Index{
			clip:                      fileArgs,
			filepath.Join(in, "cam1"): dirArgs,
		},
		Log: testLogger(),
	}
	tasks, err := w.Plan()
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	bys := map[string]*policy.ArgSet{}
	for _, task := range tasks {
		bys[task.Source] = task.Args
	}
	assert.Same(t, fileArgs, bys[clip])
	assert.Same(t, dirArgs, bys[filepath.Join(in, "cam1", "other.mp4")])
	assert.Same(t, global, bys[filepath.Join(in, "cam2", "clip.mp4")])
}

func TestWalker_AncestorDirectoryNotConsulted(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	deep := writeFile(t, in, "top/mid/clip.mp4")

	// Only the top directory is indexed; the file's immediate parent is
	// not, so the global default applies. (BuildIndex pre-populates
	// descendants precisely so this situation does not arise in a real
	// run.)
	global := &policy.ArgSet{Output: "-crf 30"}
	w := &Walker{
		InputRoot:  in,
		OutputRoot: out,
		Global:     global,
		Index: policy.Index{
			filepath.Join(in, "top"): nil,
		},
		Log: testLogger(),
	}
	tasks, err := w.Plan()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, deep, tasks[0].Source)
	assert.Same(t, global, tasks[0].Args)
}

func TestWalker_CaseInsensitiveVideoExtensions(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "CLIP.MP4")
	writeFile(t, in, "clip.WebM")
	writeFile(t, in, "clip.txt")

	w := &Walker{InputRoot: in, OutputRoot: out, Index: policy.Index{}, Log: testLogger()}
	tasks, err := w.Plan()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestWalker_RerunReplacesLinks(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "notes.csv")

	w := &Walker{InputRoot: in, OutputRoot: out, Index: policy.Index{}, Log: testLogger()}

	_, err := w.Plan()
	require.NoError(t, err)
	_, err = w.Plan()
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(out, "notes.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(in, "notes.csv"), target)
}

func TestWalker_SkipsDanglingSymlink(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	clip := writeFile(t, in, "a.mp4")
	require.NoError(t, os.Symlink(filepath.Join(in, "gone.txt"), filepath.Join(in, "dangling.txt")))

	w := &Walker{InputRoot: in, OutputRoot: out, Index: policy.Index{}, Log: testLogger()}
	tasks, err := w.Plan()
	require.NoError(t, err)

	// The broken link is ignored; the rest of the tree still plans.
	require.Len(t, tasks, 1)
	assert.Equal(t, clip, tasks[0].Source)
	assert.NoFileExists(t, filepath.Join(out, "dangling.txt"))
}

func TestWalker_SymlinkCycleTerminates(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.mp4")
	writeFile(t, in, "sub/b.mp4")
	require.NoError(t, os.Symlink(in, filepath.Join(in, "sub", "loop")))

	w := &Walker{InputRoot: in, OutputRoot: out, Index: policy.Index{}, Log: testLogger()}
	tasks, err := w.Plan()
	require.NoError(t, err)

	// Each directory is visited once; the loop back to the root is
	// skipped instead of recursing forever.
	require.Len(t, tasks, 2)
	assert.NoDirExists(t, filepath.Join(out, "sub", "loop"))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("a.mp4"))
	assert.True(t, IsVideo("a.MKV"))
	assert.False(t, IsVideo("a.csv"))
	assert.False(t, IsVideo("mp4"))
}
