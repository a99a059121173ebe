package job

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no job file matches a name.
var ErrNotFound = eris.New("job not found")

// Entry describes a job file in a catalog. Error is set when the file is invalid.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	File        string `json:"file"`
	Error       string `json:"error,omitempty"`
}

// Catalog is a directory of job files (*.yaml, *.yml).
type Catalog struct {
	dir string
}

// NewCatalog creates a Catalog over dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// List describes every job file, sorted by name. Invalid files are listed with their error.
func (c *Catalog) List() ([]Entry, error) {
	files, err := c.files()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		def, err := Load(f)
		if err != nil {
			entries = append(entries, Entry{Name: baseName(f), File: f, Error: err.Error()})
			continue
		}
		entries = append(entries, Entry{Name: def.Name, Description: def.Description, File: f})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Get loads the job with the given name: the job whose name field matches, or else
// the file named after it.
func (c *Catalog) Get(name string) (*Definition, error) {
	files, err := c.files()
	if err != nil {
		return nil, err
	}

	var byFile string
	for _, f := range files {
		if baseName(f) == name {
			byFile = f
		}
		def, err := Load(f)
		if err == nil && def.Name == name {
			return def, nil
		}
	}
	if byFile != "" {
		return Load(byFile)
	}
	return nil, eris.Wrapf(ErrNotFound, "job %q", name)
}

func (c *Catalog) files() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "job: read catalog %s", c.dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(c.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Resolve loads ref as a job file when it names an existing file, and otherwise
// looks it up by name in the catalog at dir.
func Resolve(ref, dir string) (*Definition, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return Load(ref)
	}
	return NewCatalog(dir).Get(ref)
}
