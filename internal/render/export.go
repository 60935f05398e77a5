package render

import (
	"bufio"
	"image/color"
	"io"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/landuse.report/internal/fsutil"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// DefaultOutputPath is where the figure is written when no path is given.
const DefaultOutputPath = "CW2_figure.png"

// WritePNG rasterises the figure and encodes it to w.
func (f *Figure) WritePNG(w io.Writer) error {
	img := vgimg.NewWith(
		vgimg.UseWH(f.Width, f.Height),
		vgimg.UseDPI(f.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	f.Draw(draw.New(img))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// Export writes the figure to path through a temporary sibling file so a
// failed write never leaves a partial PNG behind. Failures are IOErrors.
func Export(fsys fsutil.FileSystem, f *Figure, path string) error {
	if path == "" {
		path = DefaultOutputPath
	}
	if err := fsutil.WriteFileAtomic(fsys, path, f.WritePNG); err != nil {
		return &reporterr.IOError{Op: "write figure", Path: path, Err: err}
	}
	monitoring.Logf("wrote figure %s (%d panels, %d populated)", path, len(f.Panels), len(f.Populated()))
	return nil
}
