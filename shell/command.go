package shell

import (
	"strings"
	"unicode"

	"github.com/mattn/go-shellwords"
)

// CommandKind identifies a shell command. Names are resolved once, at parse time.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdEmpty
	CmdPwd
	CmdCd
	CmdLs
	CmdTree
	CmdCreate
	CmdDelete
	CmdDD
	CmdCat
	CmdAdd
	CmdClear
	CmdRls
	CmdHelp
	CmdQuit
)

// Command is one parsed input line
type Command struct {
	Kind CommandKind
	Name string   // command word as typed
	Args []string // remaining words, quotes removed
}

type commandInfo struct {
	name    string
	kind    CommandKind
	usage   string
	summary string
	minArgs int
}

// commandTable is also the order `help` prints in
var commandTable = []commandInfo{
	{"pwd", CmdPwd, "", "print the current directory", 0},
	{"cd", CmdCd, "[path]", "change directory; no path goes to the root", 0},
	{"ls", CmdLs, "[path]", "list a directory", 0},
	{"tree", CmdTree, "[path]", "print a subtree", 0},
	{"create", CmdCreate, "path", "create a file and any missing directories", 1},
	{"delete", CmdDelete, "path", "delete a file or an empty directory", 1},
	{"dd", CmdDD, "path", "delete a directory and everything in it", 1},
	{"cat", CmdCat, "path", "print a file", 1},
	{"add", CmdAdd, "path text...", "append text to a file", 2},
	{"clear", CmdClear, "", "delete everything", 0},
	{"rls", CmdRls, "", "list the store directory on the host", 0},
	{"help", CmdHelp, "", "show this list", 0},
	{"quit", CmdQuit, "", "leave the shell", 0},
	{"exit", CmdQuit, "", "leave the shell", 0},
}

var commandsByName = func() map[string]commandInfo {
	m := make(map[string]commandInfo, len(commandTable))
	for _, c := range commandTable {
		m[c.name] = c
	}
	return m
}()

// Parse splits line into words, honoring single and double quotes, and
// resolves the command word. A blank line is CmdEmpty; an unrecognized word is
// CmdUnknown with Name set. Parse never drops text: characters a shell would
// treat as operators are kept as literal words.
func Parse(line string) Command {
	words := splitWords(line)
	if len(words) == 0 {
		return Command{Kind: CmdEmpty}
	}
	cmd := Command{Name: words[0], Args: words[1:]}
	if info, ok := commandsByName[cmd.Name]; ok {
		cmd.Kind = info.kind
	}
	return cmd
}

// splitWords only applies quote handling when the line has quotes, so
// backslashes in unquoted text survive. Unbalanced quotes fall back to plain
// whitespace splitting.
func splitWords(line string) []string {
	if !strings.ContainsAny(line, `"'`) {
		return strings.Fields(line)
	}
	p := shellwords.NewParser()
	words, err := p.Parse(line)
	if err != nil {
		return strings.Fields(line)
	}
	if p.Position < 0 {
		return words
	}

	// the parser stopped at an operator; Position is a rune offset and may
	// sit before a digit it swallowed, so split the head again ourselves
	runes := []rune(line)
	words, err = shellwords.Parse(string(runes[:p.Position]))
	if err != nil {
		return strings.Fields(line)
	}
	rest := strings.Fields(string(runes[p.Position:]))
	if len(words) > 0 && len(rest) > 0 && p.Position > 0 && !unicode.IsSpace(runes[p.Position-1]) {
		words[len(words)-1] += rest[0]
		rest = rest[1:]
	}
	return append(words, rest...)
}

// minArgs is the number of arguments cmd needs to run
func (c Command) minArgs() int {
	if info, ok := commandsByName[c.Name]; ok {
		return info.minArgs
	}
	return 0
}
