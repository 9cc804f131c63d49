package report

import (
	"archive/zip"
	"fmt"
	"io"
)

// WriteZip packages the gallery page and every chart into a deflated
// zip archive, mirroring the downloadable bundle layout:
// gallery.html at the root, charts under misa_visuals/.
func (b *Bundle) WriteZip(w io.Writer) error {
	html, err := b.RenderHTML()
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	entry, err := zw.Create("gallery.html")
	if err != nil {
		return fmt.Errorf("report: zip gallery: %w", err)
	}
	if _, err := entry.Write(html); err != nil {
		return fmt.Errorf("report: zip gallery: %w", err)
	}
	for _, chart := range b.Charts {
		entry, err := zw.Create("misa_visuals/" + chart.Slug + ".svg")
		if err != nil {
			return fmt.Errorf("report: zip chart %s: %w", chart.Slug, err)
		}
		if _, err := io.WriteString(entry, string(chart.SVG)); err != nil {
			return fmt.Errorf("report: zip chart %s: %w", chart.Slug, err)
		}
	}
	return zw.Close()
}
