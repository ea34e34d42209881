package diffing

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	delStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headStyle   = lipgloss.NewStyle().Bold(true)
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	changeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// Unified renders every modified section and code block as a unified-diff
// text block: "--- old\n+++ new\n@@ ... @@" hunks with +/-/space prefixes.
// Line numbers are relative to the section (or block) body.
func (d *SpecDiff) Unified(oldName, newName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)

	for _, sc := range d.Sections {
		switch sc.Kind {
		case KindAdded:
			fmt.Fprintf(&b, "@@ section %q added @@\n", sc.Name)
		case KindRemoved:
			fmt.Fprintf(&b, "@@ section %q removed @@\n", sc.Name)
		case KindModified:
			writeHunks(&b, fmt.Sprintf("section %q", sc.Name), sc.Hunks)
		}
	}
	for _, cc := range d.CodeBlocks {
		label := codeBlockLabel(cc)
		switch cc.Kind {
		case KindAdded:
			fmt.Fprintf(&b, "@@ %s added @@\n", label)
		case KindRemoved:
			fmt.Fprintf(&b, "@@ %s removed @@\n", label)
		case KindModified:
			writeHunks(&b, label, cc.Hunks)
		}
	}
	return b.String()
}

func writeHunks(b *strings.Builder, label string, hunks []Hunk) {
	for _, h := range hunks {
		fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@ %s\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount, label)
		for _, l := range h.Lines {
			switch l.Tag {
			case TagAddition:
				b.WriteString("+" + l.Text + "\n")
			case TagDeletion:
				b.WriteString("-" + l.Text + "\n")
			default:
				b.WriteString(" " + l.Text + "\n")
			}
		}
	}
}

// Text renders a human-readable summary, optionally colored.
func (d *SpecDiff) Text(color bool) string {
	plain := func(s lipgloss.Style, text string) string {
		if color {
			return s.Render(text)
		}
		return text
	}

	var b strings.Builder
	if d.Empty() {
		b.WriteString("no structural changes\n")
		return b.String()
	}

	if d.Title != nil {
		fmt.Fprintf(&b, "%s %q -> %q\n", plain(headStyle, "title:"), d.Title.Old, d.Title.New)
	}
	for _, fc := range d.Metadata {
		fmt.Fprintf(&b, "%s %s: %q -> %q\n", plain(changeStyle, "metadata"), fc.Field, fc.Old, fc.New)
	}
	if d.Dependencies != nil {
		for _, dep := range d.Dependencies.Added {
			fmt.Fprintf(&b, "%s dependency %s\n", plain(addStyle, "+"), dep)
		}
		for _, dep := range d.Dependencies.Removed {
			fmt.Fprintf(&b, "%s dependency %s\n", plain(delStyle, "-"), dep)
		}
	}

	for _, sc := range d.Sections {
		switch sc.Kind {
		case KindAdded:
			fmt.Fprintf(&b, "%s section %q\n", plain(addStyle, "+"), sc.Name)
		case KindRemoved:
			fmt.Fprintf(&b, "%s section %q\n", plain(delStyle, "-"), sc.Name)
		case KindModified:
			fmt.Fprintf(&b, "%s section %q\n", plain(changeStyle, "~"), sc.Name)
			for _, h := range sc.Hunks {
				fmt.Fprintf(&b, "  %s\n", plain(hunkStyle, fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)))
				for _, l := range h.Lines {
					switch l.Tag {
					case TagAddition:
						fmt.Fprintf(&b, "  %s\n", plain(addStyle, "+"+l.Text))
					case TagDeletion:
						fmt.Fprintf(&b, "  %s\n", plain(delStyle, "-"+l.Text))
					default:
						fmt.Fprintf(&b, "   %s\n", l.Text)
					}
				}
			}
		}
	}

	for _, ic := range d.Items {
		switch ic.Kind {
		case KindAdded:
			fmt.Fprintf(&b, "%s item [%s] %s\n", plain(addStyle, "+"), ic.Section, ic.Text)
		case KindRemoved:
			fmt.Fprintf(&b, "%s item [%s] %s\n", plain(delStyle, "-"), ic.Section, ic.Text)
		case KindStateChanged:
			fmt.Fprintf(&b, "%s item [%s] %s: %s -> %s\n", plain(changeStyle, "~"), ic.Section, ic.Text, checkbox(ic.OldChecked), checkbox(ic.NewChecked))
		}
	}

	for _, cc := range d.CodeBlocks {
		label := codeBlockLabel(cc)
		switch cc.Kind {
		case KindAdded:
			fmt.Fprintf(&b, "%s %s\n", plain(addStyle, "+"), label)
		case KindRemoved:
			fmt.Fprintf(&b, "%s %s\n", plain(delStyle, "-"), label)
		case KindModified:
			fmt.Fprintf(&b, "%s %s\n", plain(changeStyle, "~"), label)
		}
	}

	s := d.Stats
	fmt.Fprintf(&b, "%s\n", plain(statStyle, fmt.Sprintf(
		"sections +%d -%d ~%d | items +%d -%d ~%d | lines +%d -%d",
		s.SectionsAdded, s.SectionsRemoved, s.SectionsModified,
		s.ItemsAdded, s.ItemsRemoved, s.ItemsStateChanged,
		s.LinesAdded, s.LinesRemoved)))
	return b.String()
}

func codeBlockLabel(cc CodeBlockChange) string {
	if cc.Language == "" {
		return fmt.Sprintf("code block in %q", cc.Section)
	}
	return fmt.Sprintf("code block (%s) in %q", cc.Language, cc.Section)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

