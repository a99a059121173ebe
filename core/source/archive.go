package source

import (
	"archive/zip"
	"bytes"
	"context"
	"path"
	"strings"

	"sheet-reconciler/core/reconcile"

	"github.com/rotisserie/eris"
)

// DefaultExtensions are the archive entries read when none are configured.
var DefaultExtensions = []string{".csv", ".txt"}

// ArchiveOptions configures an Archive.
type ArchiveOptions struct {
	// Extensions filters entries (case-insensitive). Empty means DefaultExtensions.
	Extensions []string
	Delimited  DelimitedOptions
}

// Archive reads a collection of delimited files: a zip file, an object prefix or
// a local directory. Every matching file is one unit labelled with its base name.
type Archive struct {
	fetcher  *Fetcher
	location string
	opts     ArchiveOptions
}

// NewArchive creates an Archive source.
func NewArchive(fetcher *Fetcher, location string, opts ArchiveOptions) *Archive {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Archive{fetcher: fetcher, location: location, opts: opts}
}

// Name returns the archive location.
func (a *Archive) Name() string {
	return a.location
}

// Units lists the archive entries. Entries are only decompressed and parsed when read.
func (a *Archive) Units(ctx context.Context) ([]reconcile.Unit, error) {
	if a.fetcher.IsCollection(a.location) {
		return a.collectionUnits(ctx)
	}

	data, err := a.fetcher.Fetch(ctx, a.location)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}

	var units []reconcile.Unit
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !a.matches(f.Name) {
			continue
		}
		units = append(units, reconcile.Unit{
			Label: path.Base(f.Name),
			Read: func(context.Context) ([]*reconcile.WideRow, error) {
				rc, err := f.Open()
				if err != nil {
					return nil, eris.Wrap(err, "zip: open entry")
				}
				defer rc.Close() //nolint:errcheck
				return parseDelimited(rc, a.opts.Delimited)
			},
		})
	}
	return units, nil
}

func (a *Archive) collectionUnits(ctx context.Context) ([]reconcile.Unit, error) {
	locations, err := a.fetcher.List(ctx, a.location)
	if err != nil {
		return nil, err
	}

	var units []reconcile.Unit
	for _, loc := range locations {
		if !a.matches(loc) {
			continue
		}
		units = append(units, reconcile.Unit{
			Label: path.Base(loc),
			Read: func(ctx context.Context) ([]*reconcile.WideRow, error) {
				data, err := a.fetcher.Fetch(ctx, loc)
				if err != nil {
					return nil, err
				}
				return parseDelimited(bytes.NewReader(data), a.opts.Delimited)
			},
		})
	}
	return units, nil
}

func (a *Archive) matches(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, want := range a.opts.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
