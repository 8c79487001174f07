package executor

import (
	"testing"

	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, normalize.Posix, "", nil)

	content := "<!DOCTYPE html>\n<html lang=\"en\">\n<body>héllo</body>\n</html>\n"
	res := w.Write("demo/index.html", content)

	require.True(t, res.OK(), res.String())
	assert.Equal(t, "Success: Content written to demo/index.html", res.String())

	got, err := afero.ReadFile(fs, "demo/index.html")
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestFileWriter_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, normalize.Posix, "", nil)

	require.True(t, w.Write("a.txt", "first version").OK())
	require.True(t, w.Write("a.txt", "second").OK())

	got, err := afero.ReadFile(fs, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFileWriter_NormalizesSeparators(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, normalize.Posix, "", nil)

	res := w.Write(`site\css\style.css`, "body{}")
	require.True(t, res.OK())
	assert.Contains(t, res.Message, "site/css/style.css")

	exists, err := afero.Exists(fs, "site/css/style.css")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileWriter_BaseDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFileWriter(fs, normalize.Posix, "/work", nil)

	require.True(t, w.Write("demo/script.js", "console.log(1)").OK())

	exists, err := afero.Exists(fs, "/work/demo/script.js")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileWriter_Errors(t *testing.T) {
	w := NewFileWriter(afero.NewMemMapFs(), normalize.Posix, "", nil)
	res := w.Write("", "x")
	assert.False(t, res.OK())

	ro := NewFileWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), normalize.Posix, "", nil)
	res = ro.Write("demo/index.html", "x")
	assert.False(t, res.OK())
	assert.Contains(t, res.String(), "Error: ")
}

func TestFileWriter_RealDisk(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(afero.NewOsFs(), normalize.Posix, dir, nil)

	require.True(t, w.Write("nested/deeper/file.txt", "ok").OK())
	assert.FileExists(t, dir+"/nested/deeper/file.txt")
}
