package job

import (
	"context"
	"os"
	"path/filepath"

	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/report"
	"sheet-reconciler/core/storage"

	"github.com/rotisserie/eris"
)

// Destination is a resolved report output.
type Destination struct {
	Format   report.Format
	PageSize int
	// Path is a local file; empty means none.
	Path string
	// Upload is an s3:// location; empty means none.
	Upload string
}

// Destination resolves the job output. Non-empty fields of override win over the
// job's output section; the format falls back to cfg.DefaultFormat.
func (d *Definition) Destination(cfg Config, override Output) (Destination, error) {
	out := d.Output
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.Path != "" {
		out.Path = override.Path
	}
	if override.Upload != "" {
		out.Upload = override.Upload
	}

	resolved := Definition{Output: out}
	format, err := resolved.ReportFormat(cfg.DefaultFormat)
	if err != nil {
		return Destination{}, eris.Wrap(reconcile.ErrInvalidConfig, err.Error())
	}
	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = cfg.PageSize
	}
	return Destination{Format: format, PageSize: pageSize, Path: out.Path, Upload: out.Upload}, nil
}

// Publish renders res once and writes it to the destination's path and upload
// location. It returns the locations written.
func Publish(ctx context.Context, res *reconcile.Result, dst Destination, client storage.Client, bucket string) ([]string, error) {
	if dst.Path == "" && dst.Upload == "" {
		return nil, nil
	}
	data, err := report.New(dst.Format, dst.PageSize).Render(res)
	if err != nil {
		return nil, err
	}

	var written []string
	if dst.Path != "" {
		if err := os.MkdirAll(filepath.Dir(dst.Path), 0o755); err != nil {
			return written, eris.Wrapf(err, "report: create directory for %s", dst.Path)
		}
		if err := os.WriteFile(dst.Path, data, 0o644); err != nil {
			return written, eris.Wrapf(err, "report: write %s", dst.Path)
		}
		written = append(written, dst.Path)
	}
	if dst.Upload != "" {
		if client == nil {
			return written, eris.Errorf("report: upload to %s requires object storage", dst.Upload)
		}
		obj, err := report.Upload(ctx, client, dst.Upload, bucket, data, dst.Format)
		if err != nil {
			return written, err
		}
		written = append(written, obj.String())
	}
	return written, nil
}
