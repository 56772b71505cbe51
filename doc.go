/*
Package linecraft is a line-editing core for interactive POSIX terminal
programs: raw-mode terminal control, an ANSI/UTF-8 input decoder, a
bounded history ring, tab completion, reverse-incremental history search,
and single-line/multi-line refresh, all driven through one Editor.

See: https://github.com/antirez/linenoise for the design this package's
algorithms are grounded on.

A minimal program:

	ed, err := linecraft.New()
	if err != nil {
		log.Fatal(err)
	}
	defer ed.Close()
	for {
		line, err := ed.ReadLine("> ")
		if err != nil {
			break
		}
		ed.History().Add(line)
		fmt.Println(line)
	}

Notes on Unicode: this code operates on UTF-8 codepoints and assumes each
glyph occupies k columns, k >= 0, as reported by the installed
WidthProvider. These assumptions do not hold for every character set or
font; see SetWidthProvider.
*/
package linecraft
