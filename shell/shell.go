// Package shell runs the interactive command loop over a [filesystem.Tree].
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/config"
	"github.com/brettbedarf/ffs/filesystem"
	"github.com/brettbedarf/ffs/internal/util"
	"github.com/brettbedarf/ffs/vpath"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Shell reads one command per line, runs it against the tree and prints the
// result. Command errors are printed and never end the loop.
type Shell struct {
	cfg         *config.Config
	tree        *filesystem.Tree
	session     *Session
	lister      Lister
	in          io.Reader
	out         io.Writer
	interactive bool
	logger      zerolog.Logger
}

// Option configures a Shell
type Option func(*Shell)

// WithInput sets the command source (default os.Stdin)
func WithInput(r io.Reader) Option {
	return func(s *Shell) { s.in = r }
}

// WithOutput sets where results go (default os.Stdout)
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// WithLister sets the `rls` implementation
func WithLister(l Lister) Option {
	return func(s *Shell) { s.lister = l }
}

// WithInteractive overrides terminal detection
func WithInteractive(interactive bool) Option {
	return func(s *Shell) { s.interactive = interactive }
}

// New creates a shell at the tree's root. Interactive mode is on when the
// input is a terminal unless overridden with [WithInteractive]. Without a
// lister, `rls` lists the store's names.
func New(cfg *config.Config, tree *filesystem.Tree, opts ...Option) *Shell {
	s := &Shell{
		cfg:     cfg,
		tree:    tree,
		session: NewSession(tree.Root()),
		in:      os.Stdin,
		out:     os.Stdout,
	}
	s.interactive = isTerminal(s.in)
	for _, opt := range opts {
		opt(s)
	}
	if s.lister == nil {
		s.lister = NewNameLister(tree.Store())
	}
	s.logger = util.GetLogger("Shell").With().Str("session", s.session.ID.String()).Logger()
	return s
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Session returns the shell's session state
func (s *Shell) Session() *Session {
	return s.session
}

// Run reads and executes lines until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Debug().Bool("interactive", s.interactive).Msg("Shell started")
	scanner := bufio.NewScanner(s.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.interactive {
			fmt.Fprint(s.out, promptStyle.Render(s.cfg.Prompt))
		}
		if !scanner.Scan() {
			if s.interactive {
				fmt.Fprintln(s.out)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			s.logger.Debug().Msg("End of input")
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !s.interactive && s.cfg.EchoCommands {
			fmt.Fprintln(s.out, s.cfg.Prompt+line)
		}
		if quit := s.Execute(ctx, line); quit {
			s.logger.Debug().Msg("Quit")
			return nil
		}
	}
}

// Execute runs one line and reports whether the shell should stop
func (s *Shell) Execute(ctx context.Context, line string) bool {
	cmd := Parse(line)
	s.logger.Debug().Str("cmd", cmd.Name).Strs("args", cmd.Args).Msg("Dispatch")

	switch cmd.Kind {
	case CmdEmpty:
		return false
	case CmdUnknown:
		fmt.Fprintln(s.out, "Command not found: "+cmd.Name)
		return false
	case CmdQuit:
		return true
	}

	if need := cmd.minArgs(); len(cmd.Args) < need {
		if need == 1 {
			fmt.Fprintf(s.out, "%s: requires arguments\n", cmd.Name)
		} else {
			fmt.Fprintf(s.out, "%s: requires %d arguments\n", cmd.Name, need)
		}
		return false
	}

	if err := s.dispatch(ctx, cmd); err != nil {
		if ffs.IsIOFailure(err) {
			s.logger.Error().Err(err).Str("cmd", cmd.Name).Msg("Store operation failed")
		}
		s.printErr(err)
	}
	return false
}

func (s *Shell) dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdPwd:
		fmt.Fprintln(s.out, vpath.EncodeDir(s.session.Cwd.Path()))
	case CmdCd:
		return s.cd(cmd.Args)
	case CmdLs:
		return s.ls(cmd.Args)
	case CmdTree:
		return s.printTree(cmd.Args)
	case CmdCreate:
		return s.create(cmd.Args[0])
	case CmdDelete:
		return s.remove(cmd.Args[0], false)
	case CmdDD:
		return s.remove(cmd.Args[0], true)
	case CmdCat:
		return s.cat(cmd.Args[0])
	case CmdAdd:
		return s.add(cmd.Args[0], strings.Join(cmd.Args[1:], " "))
	case CmdClear:
		before := s.session.Cwd.Path()
		defer s.session.Relocate(s.tree, before)
		return s.tree.Clear()
	case CmdRls:
		return s.rls(ctx)
	case CmdHelp:
		s.help()
	}
	return nil
}

// resolve interprets arg against the current directory
func (s *Shell) resolve(arg string) (vpath.Path, error) {
	return vpath.Resolve(s.session.Cwd.Path(), arg)
}

func (s *Shell) find(arg string) (filesystem.Node, error) {
	p, err := s.resolve(arg)
	if err != nil {
		return nil, err
	}
	return s.tree.Find(s.tree.Root(), p)
}

// target is the node named by args[0], or the current directory
func (s *Shell) target(args []string) (filesystem.Node, error) {
	if len(args) == 0 {
		return s.session.Cwd, nil
	}
	return s.find(args[0])
}

func (s *Shell) cd(args []string) error {
	if len(args) == 0 {
		s.session.Cwd = s.tree.Root()
		return nil
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	dir, err := s.tree.ChangeDirectory(s.tree.Root(), p)
	if err != nil {
		return err
	}
	s.session.Cwd = dir
	return nil
}

func (s *Shell) ls(args []string) error {
	n, err := s.target(args)
	if err != nil {
		return err
	}
	dir, ok := n.(*filesystem.Directory)
	if !ok {
		return ffs.ErrNotADirectory(vpath.Encode(n.Path()))
	}
	for _, e := range s.tree.List(dir) {
		fmt.Fprintln(s.out, e.String())
	}
	return nil
}

func (s *Shell) printTree(args []string) error {
	n, err := s.target(args)
	if err != nil {
		return err
	}
	for line := range s.tree.PrintTree(n, 0) {
		fmt.Fprintln(s.out, line)
	}
	return nil
}

func (s *Shell) create(arg string) error {
	p, err := s.resolve(arg)
	if err != nil {
		return err
	}
	dir, leaf, err := p.Split()
	if err != nil {
		return err
	}
	_, err = s.tree.Create(s.tree.Root(), dir, leaf)
	return err
}

func (s *Shell) remove(arg string, recursive bool) error {
	n, err := s.find(arg)
	if err != nil {
		return err
	}
	before := s.session.Cwd.Path()
	defer s.session.Relocate(s.tree, before)
	if !recursive {
		return s.tree.Delete(n)
	}
	dir, ok := n.(*filesystem.Directory)
	if !ok {
		return ffs.ErrNotADirectory(vpath.Encode(n.Path()))
	}
	return s.tree.DeleteRecursive(dir)
}

func (s *Shell) cat(arg string) error {
	n, err := s.find(arg)
	if err != nil {
		return err
	}
	text, err := s.tree.Read(n)
	if err != nil {
		return err
	}
	if text != "" {
		fmt.Fprintln(s.out, text)
	}
	return nil
}

func (s *Shell) add(arg, text string) error {
	n, err := s.find(arg)
	if err != nil {
		return err
	}
	return s.tree.Write(n, text)
}

func (s *Shell) rls(ctx context.Context) error {
	listing, err := s.lister.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, listing)
	if listing != "" && !strings.HasSuffix(listing, "\n") {
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *Shell) help() {
	for _, c := range commandTable {
		usage := strings.TrimSpace(c.name + " " + c.usage)
		fmt.Fprintf(s.out, "  %-20s %s\n", usage, c.summary)
	}
}

func (s *Shell) printErr(err error) {
	msg := ffs.Describe(err)
	if s.interactive {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(s.out, msg)
}
