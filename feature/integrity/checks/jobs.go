package checks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// JobReport is the result of checking one job file.
type JobReport struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Status string   `json:"status"` // "ok", "error"
	Errors []string `json:"errors"`
}

// Deps are the connections job locations are resolved against. Client and DB may be nil.
type Deps struct {
	Client storage.Client
	Bucket string
	DB     *gorm.DB
}

// CheckJobs parses every job of the catalog and checks that the locations it reads
// exist: local files and directories, objects and prefixes, tables and their
// required columns. No source is read.
func CheckJobs(ctx context.Context, catalog *job.Catalog, deps Deps) ([]JobReport, error) {
	entries, err := catalog.List()
	if err != nil {
		return nil, err
	}

	reports := make([]JobReport, 0, len(entries))
	for _, e := range entries {
		r := JobReport{Name: e.Name, File: e.File, Status: "ok", Errors: []string{}}
		if e.Error != "" {
			r.Errors = append(r.Errors, e.Error)
		} else if def, err := job.Load(e.File); err != nil {
			r.Errors = append(r.Errors, err.Error())
		} else {
			for _, ref := range def.SourceRefs() {
				if err := checkRef(ctx, ref, deps); err != nil {
					r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", ref.Role, err))
				}
			}
		}
		if len(r.Errors) > 0 {
			r.Status = "error"
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func checkRef(ctx context.Context, ref job.SourceRef, deps Deps) error {
	switch {
	case ref.Kind == job.KindTable:
		if deps.DB == nil {
			return fmt.Errorf("table %s: database is not configured", ref.Location)
		}
		cols, err := database.GetTableColumns(deps.DB, strings.TrimSpace(ref.Location))
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return fmt.Errorf("table %s not found", ref.Location)
		}
		if missing := database.MissingColumns(cols, ref.Require...); len(missing) > 0 {
			return fmt.Errorf("table %s: missing columns %s", ref.Location, strings.Join(missing, ", "))
		}
		return nil

	case storage.IsObjectLocation(ref.Location):
		if deps.Client == nil {
			return fmt.Errorf("%s: object storage is not configured", ref.Location)
		}
		obj, err := storage.ParseLocation(ref.Location, deps.Bucket)
		if err != nil {
			return err
		}
		if !obj.IsPrefix() {
			if _, err := deps.Client.StatObject(ctx, obj.Bucket, obj.Key, minio.StatObjectOptions{}); err != nil {
				return fmt.Errorf("%s: %w", ref.Location, err)
			}
			return nil
		}
		keys, err := storage.ListKeys(ctx, deps.Client, obj.Bucket, obj.Key)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return fmt.Errorf("%s: no objects", ref.Location)
		}
		return nil

	default:
		if _, err := os.Stat(ref.Location); err != nil {
			return fmt.Errorf("%s: %w", ref.Location, err)
		}
		return nil
	}
}

// Buckets returns defaultBucket and every bucket the jobs of the catalog read from
// or upload to, sorted. Invalid jobs are skipped.
func Buckets(catalog *job.Catalog, defaultBucket string) []string {
	set := map[string]struct{}{}
	add := func(loc string) {
		if !storage.IsObjectLocation(loc) {
			return
		}
		if obj, err := storage.ParseLocation(loc, defaultBucket); err == nil {
			set[obj.Bucket] = struct{}{}
		}
	}
	if defaultBucket != "" {
		set[defaultBucket] = struct{}{}
	}

	entries, _ := catalog.List()
	for _, e := range entries {
		if e.Error != "" {
			continue
		}
		def, err := job.Load(e.File)
		if err != nil {
			continue
		}
		for _, ref := range def.SourceRefs() {
			add(ref.Location)
		}
		add(def.Output.Upload)
	}

	buckets := make([]string, 0, len(set))
	for b := range set {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	return buckets
}
