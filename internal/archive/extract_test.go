package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeArchive builds an in-memory tar.gz with the top-level prefix
// directory GitLab puts in repository archives.
func makeArchive(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     prefix + "/",
		Mode:     0755,
		Typeflag: tar.TypeDir,
	}))

	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     prefix + "/" + name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func TestExtractTarGz(t *testing.T) {
	destDir := t.TempDir()
	data := makeArchive(t, "widgets-main-deadbeef", map[string]string{
		"README.md":     "hello",
		"docs/guide.md": "guide",
	})

	require.NoError(t, ExtractTarGz(bytes.NewReader(data), destDir))

	// the top-level archive prefix is stripped
	content, err := os.ReadFile(filepath.Join(destDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	content, err = os.ReadFile(filepath.Join(destDir, "docs", "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, "guide", string(content))

	_, err = os.Stat(filepath.Join(destDir, "widgets-main-deadbeef"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractTarGz_SkipsPathTraversal(t *testing.T) {
	destDir := t.TempDir()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	content := "evil"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "prefix/../../evil.txt",
		Mode:     0644,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())

	require.NoError(t, ExtractTarGz(&buf, destDir))

	_, err = os.Stat(filepath.Join(filepath.Dir(destDir), "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractTarGz_NotGzip(t *testing.T) {
	err := ExtractTarGz(bytes.NewReader([]byte(`{"message":"202 Accepted"}`)), t.TempDir())
	assert.Error(t, err)
}
