// Command linecraft-demo exercises the linecraft editor and its menu
// package end to end: nested menus, tab completion, inline hints,
// history persistence, reverse-i-search and multi-line mode.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nsheridan/linecraft"
	"github.com/nsheridan/linecraft/internal/menu"
)

const historyPath = "history.txt"

var cmdHelp = menu.Leaf{
	Descr: "general help",
	Run: func(c *menu.CLI, args []string) {
		c.GeneralHelp()
	},
}

var cmdHistory = menu.Leaf{
	Descr: "command history",
	Run: func(c *menu.CLI, args []string) {
		c.SetLine(c.DisplayHistory(args))
	},
}

var cmdExit = menu.Leaf{
	Descr: "exit application",
	Run: func(c *menu.CLI, args []string) {
		c.Exit()
	},
}

const maxLoops = 10

var loopIndex int

func loopFn() bool {
	fmt.Printf("loop index %d/%d\r\n", loopIndex, maxLoops)
	time.Sleep(200 * time.Millisecond)
	loopIndex++
	return loopIndex > maxLoops
}

var cmdLoop = menu.Leaf{
	Descr: "run a background loop, ctrl-d to exit early",
	Run: func(c *menu.CLI, args []string) {
		c.Put("looping... ctrl-D to exit\n")
		loopIndex = 0
		c.Loop(loopFn, 4) // ctrl-D
	},
}

func printLeaf(name string) menu.Leaf {
	return menu.Leaf{
		Descr: name + " function",
		Run: func(c *menu.CLI, args []string) {
			c.Put(fmt.Sprintf("%s called with arguments %v\n", name, args))
		},
	}
}

var argHelp = []menu.Help{
	{"arg0", "first argument"},
	{"arg1", "second argument"},
}

var debugMenu = menu.Menu{
	{"print", printLeaf("print"), argHelp},
	{"printf", printLeaf("printf"), argHelp},
	{"printk", printLeaf("printk")},
}

var menuRoot = menu.Menu{
	{"debug", debugMenu, "debug print functions"},
	{"loop", cmdLoop},
	{"exit", cmdExit},
	{"help", cmdHelp},
	{"history", cmdHistory, menu.HistoryHelp},
}

type appUser struct{}

func (appUser) Put(s string) { fmt.Print(s) }

// hints offers a trailing suggestion when the buffer is exactly "debug".
func hints(buf string) *linecraft.Hint {
	if buf == "debug" {
		return &linecraft.Hint{Hint: " <tab> to see subcommands", Color: 35, Bold: false}
	}
	return nil
}

func main() {
	multiline := flag.Bool("multiline", false, "enable multi-line editing mode")
	uniwidth := flag.Bool("uniwidth", false, "measure character widths with github.com/unilibs/uniwidth instead of go-runewidth")
	flag.Parse()

	c, err := menu.NewCLI(appUser{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()

	if *multiline {
		c.Editor().SetMultiline(true)
		fmt.Println("multi-line mode enabled")
	}
	if *uniwidth {
		c.Editor().SetWidthProvider(linecraft.NewUniwidthProvider())
		fmt.Println("uniwidth-based character widths enabled")
	}
	c.Editor().SetHintsCallback(hints)
	c.HistoryLoad(historyPath)
	c.SetRoot(menuRoot)
	c.SetPrompt("linecraft> ")

	for c.Running() {
		c.Run()
	}
	c.HistorySave(historyPath)
}
