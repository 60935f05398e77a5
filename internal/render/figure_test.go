package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/fsutil"
	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/reporterr"
	"github.com/banshee-data/landuse.report/internal/summary"
	"github.com/banshee-data/landuse.report/internal/testutil"
)

var (
	youngVegan = dataset.GroupKey{Age: dataset.Age20s, Diet: dataset.Vegan, Sex: dataset.Female}
	oldMeat    = dataset.GroupKey{Age: dataset.Age70s, Diet: dataset.Meat100, Sex: dataset.Male}
)

func scenarioFigure(t *testing.T) *Figure {
	t.Helper()

	obs, err := dataset.NewLoader().Read(bytes.NewBufferString(testutil.CSV(testutil.ScenarioRows()...)))
	require.NoError(t, err)

	order := dataset.DefaultOrdering()
	s, err := summary.Compute(obs, order.Groups(), summary.DefaultOptions())
	require.NoError(t, err)

	e, err := layout.New(order, layout.DefaultSpacerRatio)
	require.NoError(t, err)

	fig, err := Build(s, e, DefaultOptions())
	require.NoError(t, err)
	return fig
}

func TestBuild_Scenario(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	require.Len(t, fig.Panels, 72)
	require.Len(t, fig.Populated(), 2)

	for _, p := range fig.Panels {
		assert.Equal(t, fig.Ranges.X, p.XLim, "%s", p.Key)
		assert.Equal(t, fig.Ranges.Y, p.YLim, "%s", p.Key)
		assert.NotEqual(t, 6, p.Cell.Col, "%s on spacer", p.Key)
	}

	vegan, ok := fig.Lookup(youngVegan)
	require.True(t, ok)
	assert.Equal(t, layout.Cell{Row: 5, Col: 4}, vegan.Cell)
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xff}, vegan.Background)
	assert.True(t, vegan.XTicks)
	assert.Equal(t, "vegan", vegan.XLabel)
	assert.False(t, vegan.YTicks)
	assert.Empty(t, vegan.YLabel)
	require.NotNil(t, vegan.Curve)

	meat, ok := fig.Lookup(oldMeat)
	require.True(t, ok)
	assert.Equal(t, layout.Cell{Row: 0, Col: 9}, meat.Cell)
	assert.Equal(t, color.NRGBA{R: 0x55, A: 0xff}, meat.Background)
	assert.False(t, meat.XTicks)
	assert.False(t, meat.YTicks)
	assert.Empty(t, meat.XLabel)
}

func TestBuild_LabelPolicy(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	for _, p := range fig.Panels {
		bottom := p.Cell.Row == 5
		left := p.Cell.Col == 0
		assert.Equal(t, bottom, p.XTicks, "%s", p.Key)
		assert.Equal(t, left, p.YTicks, "%s", p.Key)
		if bottom {
			assert.Equal(t, string(p.Key.Diet), p.XLabel)
		}
		if left {
			assert.Equal(t, string(p.Key.Age), p.YLabel)
			assert.Equal(t, dataset.Fish, p.Key.Diet)
			assert.Equal(t, dataset.Female, p.Key.Sex)
		}
	}
}

func TestBuild_EmptyPanelsHaveNoFill(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	p, ok := fig.Lookup(dataset.GroupKey{Age: dataset.Age40s, Diet: dataset.Veggie, Sex: dataset.Male})
	require.True(t, ok)
	assert.False(t, p.HasData())
	assert.Nil(t, p.Curve)
}

func TestBuild_FramesInsideGridArea(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	for _, p := range fig.Panels {
		assert.GreaterOrEqual(t, p.Frame.X0, GridArea.X0-1e-12)
		assert.LessOrEqual(t, p.Frame.X1, GridArea.X1+1e-12)
		assert.GreaterOrEqual(t, p.Frame.Y0, GridArea.Y0-1e-12)
		assert.LessOrEqual(t, p.Frame.Y1, GridArea.Y1+1e-12)
	}
}

func TestBuild_Chrome(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	var values []string
	for _, txt := range fig.Texts {
		values = append(values, txt.Value)
	}
	assert.Contains(t, values, Title)
	assert.Contains(t, values, "Female")
	assert.Contains(t, values, "Male")
	assert.Contains(t, values, DietAxisLabel)
	assert.Contains(t, values, AgeAxisLabel)
	assert.Contains(t, values, DensityLabel)
	assert.Contains(t, values, MeasureLabel)

	assert.Equal(t, MeasureLabel, fig.Colorbar.Label)
	assert.Equal(t, fig.Ranges.Color.Min, fig.Colorbar.Gradient.Min())
	assert.Equal(t, fig.Ranges.Color.Max, fig.Colorbar.Gradient.Max())
}

func TestBuild_DegenerateColorRange(t *testing.T) {
	t.Parallel()

	rows := testutil.Group("female", "fish", "30-39", 4, 6)
	rows = append(rows, testutil.Group("male", "meat", "50-59", 3, 7)...)
	obs, err := dataset.NewLoader().Read(bytes.NewBufferString(testutil.CSV(rows...)))
	require.NoError(t, err)

	order := dataset.DefaultOrdering()
	s, err := summary.Compute(obs, order.Groups(), summary.DefaultOptions())
	require.NoError(t, err)
	e, err := layout.New(order, 0)
	require.NoError(t, err)

	fig, err := Build(s, e, Options{})
	require.NoError(t, err)
	assert.Less(t, fig.Colorbar.Gradient.Min(), fig.Colorbar.Gradient.Max())
	for _, p := range fig.Populated() {
		assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xff}, p.Background)
	}
}

func TestExport_WritesPNG(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	path := filepath.Join(t.TempDir(), DefaultOutputPath)
	require.NoError(t, Export(fsutil.OSFileSystem{}, fig, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 2400, 1200), img.Bounds())

	// Sample well inside each panel, near the top and away from the curves.
	probe := func(p Panel) color.NRGBA {
		x := (p.Frame.X0 + p.Frame.X1) / 2
		y := p.Frame.Y0 + 0.9*(p.Frame.Y1-p.Frame.Y0)
		px := int(x * 2400)
		py := int((1 - y) * 1200)
		return color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	}

	vegan, _ := fig.Lookup(youngVegan)
	meat, _ := fig.Lookup(oldMeat)
	empty, _ := fig.Lookup(dataset.GroupKey{Age: dataset.Age50s, Diet: dataset.Meat, Sex: dataset.Female})

	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xff}, probe(vegan))
	assert.Equal(t, color.NRGBA{R: 0x55, A: 0xff}, probe(meat))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, probe(empty))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestExport_UnwritablePathIsIOError(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	fsys := fsutil.NewMemoryFileSystem()
	fsys.FailCreate = true

	err := Export(fsys, fig, "out/figure.png")
	var ioe *reporterr.IOError
	require.True(t, errors.As(err, &ioe))
	assert.Equal(t, "out/figure.png", ioe.Path)
	assert.Empty(t, fsys.Names())
}

func TestExport_MemoryFileSystem(t *testing.T) {
	t.Parallel()

	fig := scenarioFigure(t)
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, Export(fsys, fig, ""))

	data, err := fsys.ReadFile(DefaultOutputPath)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultOutputPath}, fsys.Names())
}
