package palette

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// EnvPath names the environment variable holding extra palette directories,
// separated like PATH.
const EnvPath = "INKSPLIT_PALETTE_PATH"

// Library resolves palettes by name from built-ins and from GIMP palette
// files found in its search directories.
type Library struct {
	Dirs   []string
	Logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Palette
}

func NewLibrary(dirs ...string) *Library {
	return &Library{
		Dirs:   dirs,
		Logger: slog.Default(),
		cache:  make(map[string]*Palette),
	}
}

// DefaultDirs returns the directories of EnvPath followed by the usual user
// and system GIMP palette directories.
func DefaultDirs() []string {
	var dirs []string
	if v := os.Getenv(EnvPath); v != "" {
		dirs = append(dirs, filepath.SplitList(v)...)
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(cfg, "GIMP", "3.0", "palettes"),
			filepath.Join(cfg, "GIMP", "2.10", "palettes"),
		)
	}
	dirs = append(dirs,
		"/usr/share/gimp/3.0/palettes",
		"/usr/share/gimp/2.0/palettes",
	)
	return lo.Compact(dirs)
}

// Lookup resolves name to a palette. name may be a path to a .gpl file, a
// built-in palette, or the file stem or Name header of a .gpl file in one of
// the search directories. Names compare case-insensitively, with spaces and
// underscores equal to dashes. The first directory holding a match wins.
// Each call returns its own copy, free to modify.
func (l *Library) Lookup(name string) (*Palette, error) {
	key := normalize(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty palette name", ErrNotFound)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache == nil {
		l.cache = make(map[string]*Palette)
	}
	if p, ok := l.cache[key]; ok {
		return p.Clone(), nil
	}

	p, err := l.resolve(name, key)
	if err != nil {
		return nil, err
	}
	l.cache[key] = p
	return p.Clone(), nil
}

func (l *Library) resolve(name, key string) (*Palette, error) {
	if strings.EqualFold(filepath.Ext(name), ".gpl") || strings.ContainsRune(name, os.PathSeparator) {
		p, err := LoadGPL(name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return p, err
	}
	if build, ok := builtins[key]; ok {
		return build(), nil
	}

	for _, dir := range l.Dirs {
		files := gplFiles(dir)
		for _, f := range files {
			if normalize(stem(f)) == key {
				return LoadGPL(f)
			}
		}
		for _, f := range files {
			p, err := LoadGPL(f)
			if err != nil {
				l.logger().Debug("skipping palette file", "path", f, "err", err)
				continue
			}
			if normalize(p.Name) == key {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// List returns the names of all resolvable palettes, sorted.
func (l *Library) List() []string {
	names := lo.Keys(builtins)
	for _, dir := range l.Dirs {
		for _, f := range gplFiles(dir) {
			names = append(names, stem(f))
		}
	}
	names = lo.Uniq(lo.Map(names, func(n string, _ int) string { return normalize(n) }))
	slices.Sort(names)
	return names
}

func (l *Library) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func gplFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gpl") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}

// ============ BUILT-IN PALETTES ============

var builtins = map[string]func() *Palette{
	"web":       webPalette,
	"grayscale": grayscalePalette,
	"cmyk":      cmykPalette,
}

// webPalette is the 216-color web-safe cube.
func webPalette() *Palette {
	p := &Palette{Name: "Web", Columns: 6}
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
				p.Entries = append(p.Entries, Entry{Name: c.Hex(), Color: c})
			}
		}
	}
	return p
}

func grayscalePalette() *Palette {
	p := &Palette{Name: "Grayscale", Columns: 11}
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		p.Entries = append(p.Entries, Entry{
			Name:  fmt.Sprintf("Gray %d%%", i*10),
			Color: colorful.Color{R: v, G: v, B: v},
		})
	}
	return p
}

func cmykPalette() *Palette {
	return &Palette{
		Name: "CMYK",
		Entries: []Entry{
			{Name: "Cyan", Color: colorful.Color{R: 0, G: 1, B: 1}},
			{Name: "Magenta", Color: colorful.Color{R: 1, G: 0, B: 1}},
			{Name: "Yellow", Color: colorful.Color{R: 1, G: 1, B: 0}},
			{Name: "Black", Color: colorful.Color{R: 0, G: 0, B: 0}},
			{Name: "White", Color: colorful.Color{R: 1, G: 1, B: 1}},
		},
	}
}
