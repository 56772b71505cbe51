// Package menu implements a hierarchical command-line interface on top of
// linecraft: nested menus, tab completion over the menu tree, per-command
// help via a trailing '?', and command history.
package menu

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/nsheridan/linecraft"
)

// Help describes one accepted argument form for a leaf command.
type Help struct {
	Parm  string
	Descr string
}

// User receives all CLI output.
type User interface {
	Put(s string)
}

// Item is one menu entry, in one of three shapes:
//
//	{name string, sub Menu, descr string}   - reference to a submenu
//	{name string, leaf Leaf}                - leaf with generic <cr> help
//	{name string, leaf Leaf, help []Help}    - leaf with specific arg help
type Item []interface{}

// Menu is an ordered set of items at one level of the tree.
type Menu []Item

// names returns the display name of every item in m, in order.
func (m Menu) names() []string {
	s := make([]string, len(m))
	for i := range m {
		s[i] = m[i][0].(string)
	}
	return s
}

// matchPrefix returns every item in m whose name has cmd as a prefix.
func (m Menu) matchPrefix(cmd string) Menu {
	matches := make(Menu, 0, len(m))
	for _, item := range m {
		if strings.HasPrefix(item[0].(string), cmd) {
			matches = append(matches, item)
		}
	}
	return matches
}

// matchExact returns the single item named exactly cmd if one exists,
// otherwise falls back to every prefix match.
func (m Menu) matchExact(cmd string) Menu {
	for _, item := range m {
		if item[0].(string) == cmd {
			return Menu{item}
		}
	}
	return m.matchPrefix(cmd)
}

// Leaf is a command's implementation.
type Leaf struct {
	Descr string
	Run   func(*CLI, []string)
}

var crHelp = []Help{
	{"<cr>", "perform the function"},
}

// GeneralHelp lists the editing keys every CLI offers.
var GeneralHelp = []Help{
	{"?", "display command help - e.g. ?, show ?, s?"},
	{"<up>", "go backwards in command history"},
	{"<dn>", "go forwards in command history"},
	{"<tab>", "auto complete commands"},
	{"* note", "commands can be incomplete - e.g. sh = sho = show"},
}

// HistoryHelp documents the builtin history leaf's argument forms.
var HistoryHelp = []Help{
	{"<cr>", "display all history"},
	{"<index>", "recall history entry <index>"},
}

// IntArg parses arg as a base-radix integer within limits, reporting a
// typed parse or range error to user.
func IntArg(user User, arg string, limits [2]int, base int) (int, error) {
	x, err := strconv.ParseInt(arg, base, 64)
	if err != nil {
		cmdErr := newError(KindInvalidArgument, fmt.Sprintf("%q", arg), err)
		user.Put(cmdErr.Error() + "\n")
		return 0, cmdErr
	}
	val := int(x)
	if val < limits[0] || val > limits[1] {
		cmdErr := newError(KindInvalidArgument, fmt.Sprintf("%d outside [%d,%d]", val, limits[0], limits[1]), nil)
		user.Put(cmdErr.Error() + "\n")
		return 0, cmdErr
	}
	return val, nil
}

// TableString renders rows of columns via text/tabwriter, left justified,
// each column separated by cmargin spaces of padding. minWidth, when
// non-nil, floors the rendered width of column j at minWidth[j] so a
// short cell doesn't collapse a column meant to hold a longer header.
func TableString(rows [][]string, minWidth []int, cmargin int) string {
	if len(rows) == 0 {
		return ""
	}
	ncols := len(rows[0])
	if minWidth == nil {
		minWidth = make([]int, ncols)
	} else if len(minWidth) != ncols {
		panic("len(minWidth) != ncols")
	}
	for i := range rows {
		if len(rows[i]) != ncols {
			panic(fmt.Sprintf("ncols row%d != ncols row0", i))
		}
	}
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, cmargin, ' ', 0)
	for _, r := range rows {
		cells := make([]string, ncols)
		for j, cell := range r {
			cells[j] = padToWidth(cell, minWidth[j])
		}
		// a trailing tab after the last cell gets tabwriter to pad it
		// too, matching every column aligning, not just the first n-1.
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

func padToWidth(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// tokenPattern matches one whitespace-delimited token.
var tokenPattern = regexp.MustCompile(`\S+`)

// splitIndex returns the [start,end) byte index of each whitespace-
// separated token in s.
func splitIndex(s string) [][2]int {
	matches := tokenPattern.FindAllStringIndex(s, -1)
	indices := make([][2]int, len(matches))
	for i, m := range matches {
		indices[i] = [2]int{m[0], m[1]}
	}
	return indices
}

//-----------------------------------------------------------------------------

// CLI is a running hierarchical command-line session built on a
// linecraft.Editor.
type CLI struct {
	User     User
	ed       *linecraft.Editor
	root     Menu
	nextLine string
	prompt   string
	running  bool
}

// NewCLI constructs a CLI over a fresh linecraft Editor bound to
// stdin/stdout, wiring completion and the '?' help hotkey.
func NewCLI(user User) (*CLI, error) {
	ed, err := linecraft.New()
	if err != nil {
		return nil, err
	}
	c := &CLI{User: user, ed: ed, prompt: "> ", running: true}
	c.ed.SetCompletionCallback(c.completionCallback)
	c.ed.SetHotkey('?')
	return c, nil
}

// SetRoot installs the menu tree's root level.
func (c *CLI) SetRoot(root Menu) { c.root = root }

// SetPrompt changes the displayed prompt.
func (c *CLI) SetPrompt(prompt string) { c.prompt = prompt }

// SetLine sets the line a leaf function wants shown (and editable) on
// the next prompt, e.g. a history-recall leaf replaying a past command.
func (c *CLI) SetLine(line string) { c.nextLine = line }

// Loop passes through to the editor's raw-mode polling loop.
func (c *CLI) Loop(fn func() bool, exitKey rune) bool {
	return c.ed.Loop(fn, exitKey)
}

// Put passes output through to the user.
func (c *CLI) Put(s string) { c.User.Put(s) }

// Close releases the underlying editor.
func (c *CLI) Close() error { return c.ed.Close() }

// Editor exposes the underlying linecraft.Editor, e.g. for HistoryLoad/
// HistorySave via c.Editor().History().
func (c *CLI) Editor() *linecraft.Editor { return c.ed }

// Running reports whether the CLI loop should keep iterating.
func (c *CLI) Running() bool { return c.running }

// Exit stops the CLI loop.
func (c *CLI) Exit() { c.running = false }

// completionCallback implements linecraft.CompletionCallback by walking
// the menu tree to the token under the cursor and offering every
// matching name at that level.
func (c *CLI) completionCallback(buf string, pos int, out *linecraft.CompletionSet) {
	line := ""
	at := c.root
	for _, idx := range splitIndex(buf) {
		cmd := buf[idx[0]:idx[1]]
		line = buf[:idx[1]]
		matches := at.matchPrefix(cmd)
		switch {
		case len(matches) == 0:
			return
		case len(matches) == 1:
			item := matches[0]
			name := item[0].(string)
			if len(cmd) < len(name) {
				addCandidates(out, line, cmd, matches.names())
				return
			}
			if submenu, ok := item[1].(Menu); ok {
				at = submenu
				continue
			}
			return
		default:
			addCandidates(out, line, cmd, matches.names())
			return
		}
	}
	addCandidates(out, line, "", at.names())
}

func addCandidates(out *linecraft.CompletionSet, line, cmd string, names []string) {
	for _, name := range names {
		completed := line
		if cmd == "" && line != "" {
			completed += " "
		}
		completed += name[len(cmd):]
		out.AddCompletion(name, completed, len([]rune(completed)))
	}
}

//-----------------------------------------------------------------------------

func (c *CLI) displayError(kind Kind, cmds []string, idx int) {
	marker := make([]string, len(cmds))
	for i := range cmds {
		n := runewidth.StringWidth(cmds[i])
		mark := ' '
		if i == idx {
			mark = '^'
		}
		marker[i] = strings.Repeat(string(rune(mark)), n)
	}
	s := strings.Join([]string{kind.String(), strings.Join(cmds, " "), strings.Join(marker, " ")}, "\n")
	c.Put(s + "\n")
}

func (c *CLI) displayFunctionHelp(help []Help) {
	s := make([][]string, len(help))
	for i := range s {
		p := help[i].Parm
		var d string
		if len(p) != 0 {
			d = fmt.Sprintf(": %s", help[i].Descr)
		} else {
			d = fmt.Sprintf("  %s", help[i].Descr)
		}
		s[i] = []string{"   ", p, d}
	}
	c.Put(TableString(s, []int{0, 16, 0}, 1) + "\n")
}

func (c *CLI) commandHelp(cmd string, at Menu) {
	s := make([][]string, 0, len(at))
	for _, item := range at.matchPrefix(cmd) {
		name := item[0].(string)
		var descr string
		switch v := item[1].(type) {
		case Menu:
			descr = item[2].(string)
		case Leaf:
			descr = v.Descr
		default:
			panic("unknown menu item type")
		}
		s = append(s, []string{"  ", name, fmt.Sprintf(": %s", descr)})
	}
	c.Put(TableString(s, []int{0, 16, 0}, 1) + "\n")
}

func (c *CLI) functionHelp(item Item) {
	var help []Help
	if len(item) == 3 {
		help = item[2].([]Help)
	} else {
		help = crHelp
	}
	c.displayFunctionHelp(help)
}

// GeneralHelp prints the editing-key cheat sheet.
func (c *CLI) GeneralHelp() {
	c.displayFunctionHelp(GeneralHelp)
}

// HistoryLoad loads persisted command history from path.
func (c *CLI) HistoryLoad(path string) error { return c.ed.History().Load(path) }

// HistorySave persists command history to path.
func (c *CLI) HistorySave(path string) error { return c.ed.History().Save(path) }

// DisplayHistory implements the builtin "history" leaf: with no
// arguments it prints every entry through the same tabwriter-backed
// TableString used for command help; with one numeric argument it
// returns that entry's text so the caller can feed it back via SetLine.
func (c *CLI) DisplayHistory(args []string) string {
	h := c.ed.History().List()
	n := len(h)
	if len(args) == 1 {
		idx, err := IntArg(c.User, args[0], [2]int{0, n - 1}, 10)
		if err != nil {
			return ""
		}
		// the entry comes back with a trailing space, so the cursor lands
		// after a separator on the next prompt; parseCmdline trims it
		// again before the line is added to history.
		return h[n-idx-1] + " "
	}
	if n == 0 {
		c.Put("no history\n")
		return ""
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d:", n-i-1), h[i]}
	}
	c.Put(TableString(rows, []int{4, 0}, 1) + "\n")
	return ""
}

// parseCmdline tokenizes line, traces it through the menu tree, and runs
// the matched leaf (or prints command/argument help for a trailing '?').
// It returns the line to show on the next prompt: usually empty, but a
// leaf may set one via SetLine, a '?' help request returns the line
// without its '?', and a line that stops at a submenu is kept so the user
// can complete it. Unknown and ambiguous commands return empty.
func (c *CLI) parseCmdline(line string) string {
	cmdList := make([]string, 0, 8)
	for _, s := range strings.Split(line, " ") {
		if len(s) != 0 {
			cmdList = append(cmdList, s)
		}
	}
	if len(cmdList) == 0 {
		return ""
	}
	at := c.root
	for idx, cmd := range cmdList {
		if cmd[len(cmd)-1] == '?' {
			c.commandHelp(cmd[:len(cmd)-1], at)
			return line[:len(line)-1]
		}
		matches := at.matchExact(cmd)
		switch {
		case len(matches) == 0:
			c.displayError(KindUnknownCommand, cmdList, idx)
			c.ed.History().Add(strings.TrimSpace(line))
			return ""
		case len(matches) == 1:
			item := matches[0]
			if submenu, ok := item[1].(Menu); ok {
				at = submenu
				continue
			}
			args := cmdList[idx+1:]
			if len(args) != 0 {
				last := args[len(args)-1]
				if last[len(last)-1] == '?' {
					c.functionHelp(item)
					return line[:len(line)-1]
				}
			}
			item[1].(Leaf).Run(c, args)
			if c.nextLine != "" {
				s := c.nextLine
				c.nextLine = ""
				return s
			}
			c.ed.History().Add(strings.TrimSpace(line))
			return ""
		default:
			c.displayError(KindAmbiguousCommand, cmdList, idx)
			return ""
		}
	}
	c.Put(KindIncompleteCommand.String() + "\n")
	return line
}

// Run reads and processes one command line. It returns false (and sets
// Running() to false) on EOF or cancellation.
func (c *CLI) Run() bool {
	line, err := c.ed.ReadLineInit(c.prompt, c.nextLine)
	c.nextLine = ""
	if err != nil {
		c.running = false
		return false
	}
	c.nextLine = c.parseCmdline(line)
	return true
}
