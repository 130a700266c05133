package images

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9/x9test"
)

func TestWriteAll(t *testing.T) {
	first := x9test.Bundle("1", "0000003000",
		x9test.Item("0000001000", 2),
		x9test.Item("0000002000", 1),
	)
	first.Credit.ImageViews = []*x9.ImageView{x9test.View(0)}

	png := x9test.View(0)
	png.FormatIndicator = "20"
	noData := x9test.View(1)
	noData.Data = nil
	second := x9test.Bundle("12", "0000000500", &x9.CheckItem{
		Detail:     x9test.Item("0000000500", 0).Detail,
		ImageViews: []*x9.ImageView{png, noData},
	})

	dir := filepath.Join(t.TempDir(), "out")
	w := &Writer{}
	n, err := w.WriteAll(x9test.Document(first, second), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"B12_I0001_front1.png",
		"B1_I0001_back1.tif",
		"B1_I0001_front1.tif",
		"B1_I0002_front1.tif",
		"C1_I0000_front1.tif",
	}, names)

	data, err := os.ReadFile(filepath.Join(dir, "B1_I0001_back1.tif"))
	require.NoError(t, err)
	assert.Equal(t, first.CheckItems[0].ImageViews[1].Data, data)
}

func TestWriteAllNothingToWrite(t *testing.T) {
	n, err := (&Writer{}).WriteAll(&x9.Document{}, t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "tif", Extension("00"))
	assert.Equal(t, "jpg", Extension("21"))
	assert.Equal(t, "jp2", Extension("24"))
	assert.Equal(t, "bin", Extension("99"))
	assert.Equal(t, "bin", Extension(""))
}

func TestBundleSequence(t *testing.T) {
	b := &x9.Bundle{Header: &x9.BundleHeader{SequenceNumber: "0042"}}
	assert.Equal(t, "42", bundleSequence(b, 0))

	b.Header.SequenceNumber = "A1  "
	assert.Equal(t, "A1", bundleSequence(b, 0))

	b.Header.SequenceNumber = "    "
	assert.Equal(t, "3", bundleSequence(b, 2))
}
