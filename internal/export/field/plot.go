package field

import (
	"fmt"
	"io"

	"github.com/ibal-unist/picdump/internal/export"
	"github.com/ibal-unist/picdump/internal/preview"
)

func (e *Exporter) plot(step int, axisLabel string, coords, phis []float64) error {
	out := e.opts.Output
	f := export.File{Kind: export.KindPreview, Step: step, Dir: out.Dir, Name: export.StepFileName(out.Prefix, step, ".png")}
	title := fmt.Sprintf("phi along %v, step %d", e.opts.Selector, step)
	_, err := e.sink.WriteFile(f, func(w io.Writer) (int, error) {
		return len(coords), preview.FieldProfile(w, title, axisLabel, coords, phis)
	})
	return err
}
