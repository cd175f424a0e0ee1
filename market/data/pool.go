package data

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Discover turns every file matching a doublestar pattern (for example
// "data/**/*.csv") into a Dataset named after the file.
func Discover(pattern string) ([]Dataset, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", pattern, err)
	}
	sort.Strings(matches)

	out := make([]Dataset, 0, len(matches))
	for _, m := range matches {
		out = append(out, DatasetFor(m))
	}
	return out, nil
}

// DatasetFor names a file's dataset after its base name.
func DatasetFor(path string) Dataset {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Dataset{Path: path, Name: base, Ticker: strings.ToUpper(base)}
}

// Pool is the set of datasets a game draws its rounds from.
type Pool struct {
	loader   *Loader
	datasets []Dataset
	seen     map[string]bool
	log      *zap.Logger
}

func NewPool(loader *Loader, log *zap.Logger, datasets ...Dataset) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{loader: loader, seen: map[string]bool{}, log: log}
	p.Add(datasets...)
	return p
}

// Add appends datasets, ignoring paths already in the pool.
func (p *Pool) Add(datasets ...Dataset) {
	for _, ds := range datasets {
		key := filepath.Clean(ds.Path)
		if p.seen[key] {
			continue
		}
		p.seen[key] = true
		p.datasets = append(p.datasets, ds)
	}
}

// Discover adds every file matching pattern and reports how many were new.
func (p *Pool) Discover(pattern string) (int, error) {
	found, err := Discover(pattern)
	if err != nil {
		return 0, err
	}
	before := len(p.datasets)
	p.Add(found...)
	return len(p.datasets) - before, nil
}

func (p *Pool) Len() int { return len(p.datasets) }

func (p *Pool) Datasets() []Dataset {
	out := make([]Dataset, len(p.datasets))
	copy(out, p.datasets)
	return out
}

// Pick loads up to n distinct datasets in random order. Files that fail to
// load are logged and skipped; ErrNoData is returned only when nothing loads.
func (p *Pool) Pick(n int, rng *rand.Rand) ([]*Loaded, error) {
	order := rng.Perm(len(p.datasets))

	var out []*Loaded
	for _, i := range order {
		if len(out) == n {
			break
		}
		ds := p.datasets[i]
		ld, err := p.loader.Load(ds)
		if err != nil {
			p.log.Warn("dataset skipped", zap.String("path", ds.Path), zap.Error(err))
			continue
		}
		out = append(out, ld)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
