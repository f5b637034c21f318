package shell

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmgilman/go/exec"
	"github.com/mattn/go-shellwords"

	"github.com/brettbedarf/ffs"
)

// Lister produces the `rls` view of the flat store
type Lister interface {
	List(ctx context.Context) (string, error)
}

// HostLister runs a host command (`ls -l` by default) inside the store directory
type HostLister struct {
	executor exec.Executor
	dir      string
	args     []string
}

// NewHostLister parses cmdline into a command run in dir
func NewHostLister(dir, cmdline string) (*HostLister, error) {
	args, err := shellwords.Parse(cmdline)
	if err != nil {
		return nil, fmt.Errorf("invalid host list command %q: %w", cmdline, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("host list command is empty")
	}
	return &HostLister{
		executor: exec.New(exec.WithInheritEnv(), exec.WithDisableColors()),
		dir:      dir,
		args:     args,
	}, nil
}

func (h *HostLister) List(ctx context.Context) (string, error) {
	res, err := h.executor.WithContext(ctx).WithDir(h.dir).Run(h.args...)
	if err != nil {
		return "", ffs.WrapIO(err, "run", strings.Join(h.args, " "))
	}
	return res.Stdout, nil
}

// NameLister lists the store's flat names, one per line. It stands in for
// HostLister when the store has no host directory.
type NameLister struct {
	store ffs.FlatStore
}

func NewNameLister(store ffs.FlatStore) *NameLister {
	return &NameLister{store: store}
}

func (n *NameLister) List(context.Context) (string, error) {
	names, err := n.store.Names()
	if err != nil {
		return "", ffs.WrapIO(err, "list", "flat store")
	}
	slices.Sort(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
