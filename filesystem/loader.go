package filesystem

import (
	"slices"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/internal/util"
	"github.com/brettbedarf/ffs/vpath"
)

// SkippedName is a flat name the loader could not place in the tree
type SkippedName struct {
	Name string
	Err  error
}

// LoadReport summarizes one bootstrap pass over the flat store
type LoadReport struct {
	Loaded  int           // Files placed in the tree
	Skipped []SkippedName // Malformed or conflicting names, in processing order
}

// Load lists store and rebuilds the tree from its names; see [BuildFromFlatNames].
// Only a failure to list the store is returned as an error.
func Load(store ffs.FlatStore, opts ...Option) (*Tree, *LoadReport, error) {
	names, err := store.Names()
	if err != nil {
		return nil, nil, ffs.WrapIO(err, "list", "flat store")
	}
	t, report := BuildFromFlatNames(store, names, opts...)
	return t, report, nil
}

// BuildFromFlatNames reconstructs a tree from flat names without touching the
// store. Implied ancestor directories are created once and reused.
//
// Names are processed in sorted order so the result does not depend on the
// order they were listed in. A name that conflicts with an earlier one (e.g.
// "-a-b" is a File, so "-a-b-c" cannot make b a Directory), lacks the leading
// separator, or is otherwise malformed is skipped and recorded in the report.
func BuildFromFlatNames(store ffs.FlatStore, names []string, opts ...Option) (*Tree, *LoadReport) {
	logger := util.GetLogger("Loader")

	t := NewTree(store, opts...)
	report := &LoadReport{}
	skip := func(name string, err error) {
		logger.Warn().Err(err).Str("name", name).Msg("Skipping flat file")
		report.Skipped = append(report.Skipped, SkippedName{Name: name, Err: err})
	}

	for _, name := range slices.Sorted(slices.Values(names)) {
		p, err := vpath.Decode(name)
		if err != nil {
			skip(name, err)
			continue
		}
		if !p.Absolute {
			skip(name, ffs.ErrMalformedPath(name, "missing leading separator"))
			continue
		}
		// "-a-b-" decodes to -a-b, which would point the node at the wrong file
		if vpath.Encode(p) != name {
			skip(name, ffs.ErrMalformedPath(name, "trailing separator is not a supported stored file name"))
			continue
		}
		dir, leaf, err := p.Split()
		if err != nil {
			skip(name, err)
			continue
		}
		if _, err := t.insert(t.root, dir, leaf, false); err != nil {
			skip(name, err)
			continue
		}
		report.Loaded++
	}

	logger.Info().Int("loaded", report.Loaded).Int("skipped", len(report.Skipped)).Msg("Tree loaded from flat store")
	return t, report
}
