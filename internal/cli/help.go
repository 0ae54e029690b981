package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer with lipgloss styling. It
// prints help for the selected command, or for the application.
func StyledHelpPrinter(kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("spkdsp"))
		sb.WriteString("\n")

		if desc := node.Help; desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(node.Path())
		sb.WriteString(" [flags]")
		if len(node.Children) > 0 {
			sb.WriteString(" <command>")
		}
		sb.WriteString("\n")

		if cmds := getCommands(node); len(cmds) > 0 {
			writeSection(&sb, "Commands:", cmds, helpArgStyle)
		}

		if args := getArguments(node); len(args) > 0 {
			writeSection(&sb, "Arguments:", args, helpArgStyle)
		}

		if flags := getFlags(node); len(flags) > 0 {
			writeSection(&sb, "Flags:", flags, helpFlagStyle)
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}

type entry struct {
	name       string
	help       string
	defaultVal string
}

func writeSection(sb *strings.Builder, title string, entries []entry, nameStyle lipgloss.Style) {
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(nameStyle.Render(e.name))

		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}

		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}

		sb.WriteString("\n")
	}
}

func getCommands(node *kong.Node) []entry {
	var cmds []entry

	for _, child := range node.Children {
		if child.Hidden {
			continue
		}

		cmds = append(cmds, entry{name: child.Name, help: child.Help})
	}

	return cmds
}

func getArguments(node *kong.Node) []entry {
	var args []entry

	for _, arg := range node.Positional {
		args = append(args, entry{name: arg.Summary(), help: arg.Help})
	}

	return args
}

func getFlags(node *kong.Node) []entry {
	flags := []entry{{name: "-h, --help", help: "Show context-sensitive help."}}

	seen := map[string]bool{"help": true}

	// Flags of the selected command first, then inherited ones.
	for n := node; n != nil; n = n.Parent {
		for _, f := range n.Flags {
			if seen[f.Name] || f.Hidden {
				continue
			}
			seen[f.Name] = true

			name := "--" + f.Name
			if f.Short != 0 {
				name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}

			if !f.IsBool() {
				name += "=" + strings.ToUpper(f.FormatPlaceHolder())
			}

			flags = append(flags, entry{name: name, help: f.Help, defaultVal: f.Default})
		}
	}

	return flags
}
