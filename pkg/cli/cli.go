package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
	Get() any
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }
func (v *stringValue) Get() any           { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v *boolValue) Get() any       { return *v.p }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = n
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }
func (v *intValue) Get() any       { return *v.p }

type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }
func (v *listValue) Get() any           { return *v.p }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

func (f *Flag) isBool() bool {
	_, ok := f.Value.(*boolValue)
	return ok
}

type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

// FlagGroupEntry is one member of a -X<name>/-Xno-<name> flag pair.
type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Enabled  *bool
	Disabled *bool
	Default  bool
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	args       []string
	flagGroups []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) List(p *[]string, name, shorthand string, value []string, usage, expectedType string) {
	*p = value
	f.Var(&listValue{p}, name, shorthand, usage, strings.Join(value, ","), expectedType)
}

func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	for _, e := range entries {
		if e.Enabled != nil {
			f.Bool(e.Enabled, e.Prefix+e.Name, "", false, e.Usage)
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, e.Prefix+"no-"+e.Name, "", false, "Disable '"+e.Name+"'")
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name: name, Description: description, Flags: entries,
		GroupType: groupType, AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

// Parse accepts --name[=value], -name[=value] for multi-letter flags such
// as -Wshadow, and -x[value] shorthands.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
			continue
		}

		body := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		name, value, hasValue := strings.Cut(body, "=")
		flag, ok := f.flags[name]
		if !ok && !strings.HasPrefix(arg, "--") {
			if sh, ok := f.shorthands[arg[1:2]]; ok {
				flag, name = sh, arg[1:2]
				value, hasValue = arg[2:], len(arg) > 2
			}
		}
		if flag == nil {
			return fmt.Errorf("unknown flag: %s", arg)
		}

		switch {
		case hasValue:
		case flag.isBool():
			value = ""
		case i+1 < len(arguments):
			i++
			value = arguments[i]
		default:
			return fmt.Errorf("flag needs an argument: -%s", name)
		}
		if err := flag.Value.Set(value); err != nil {
			return err
		}
	}
	return nil
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	Since       int
	FlagSet     *FlagSet
	Action      func(args []string) error
	Stdout      io.Writer
	Stderr      io.Writer
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name), Stdout: os.Stdout, Stderr: os.Stderr}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(a.Stderr, err)
		fmt.Fprintf(a.Stderr, "Usage: %s %s\nRun '%s --help' for all available options and flags.\n", a.Name, a.Synopsis, a.Name)
		return err
	}
	if help {
		fmt.Fprint(a.Stdout, a.HelpPage(terminalWidth()))
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

// HelpPage renders the full help text wrapped to width columns.
func (a *App) HelpPage(width int) string {
	var sb strings.Builder
	indent := func(level int) string { return strings.Repeat(" ", 4*level) }

	authors := strings.Join(a.Authors, ", ") + " and contributors"
	fmt.Fprintf(&sb, "\n%sCopyright (c) %d-%d: %s\n", indent(1), a.Since, time.Now().Year(), authors)
	if a.Repository != "" {
		fmt.Fprintf(&sb, "%sFor more details refer to %s\n", indent(1), a.Repository)
	}
	if a.Synopsis != "" {
		fmt.Fprintf(&sb, "\n%sSynopsis\n%s%s %s\n", indent(1), indent(2), a.Name, a.Synopsis)
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%sDescription\n", indent(1))
		for _, line := range wrapText(a.Description, width-len(indent(2))) {
			fmt.Fprintf(&sb, "%s%s\n", indent(2), line)
		}
	}

	options := a.optionFlags()
	leftWidth := 0
	for _, flag := range options {
		leftWidth = max(leftWidth, len(formatFlag(flag)))
	}
	for _, g := range a.FlagSet.flagGroups {
		for _, e := range g.Flags {
			leftWidth = max(leftWidth, len(e.Name), len(fmt.Sprintf("-%sno-<%s>", e.Prefix, g.GroupType)))
		}
	}

	if len(options) > 0 {
		fmt.Fprintf(&sb, "\n%sOptions\n", indent(1))
		for _, flag := range options {
			right := ""
			if !flag.isBool() && flag.DefValue != "" {
				right = "|" + flag.DefValue + "|"
			}
			writeEntry(&sb, indent(2), width, leftWidth, formatFlag(flag), flag.Usage, right)
		}
	}

	groups := append([]FlagGroup(nil), a.FlagSet.flagGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, g := range groups {
		if len(g.Flags) == 0 {
			continue
		}
		prefix := g.Flags[0].Prefix
		fmt.Fprintf(&sb, "\n%s%s\n", indent(1), g.Name)
		writeEntry(&sb, indent(2), width, leftWidth, fmt.Sprintf("-%s<%s>", prefix, g.GroupType), "Enable a specific "+g.GroupType, "")
		writeEntry(&sb, indent(2), width, leftWidth, fmt.Sprintf("-%sno-<%s>", prefix, g.GroupType), "Disable a specific "+g.GroupType, "")
		if g.AvailableFlagsHeader != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent(1), g.AvailableFlagsHeader)
		}
		entries := append([]FlagGroupEntry(nil), g.Flags...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		for _, e := range entries {
			mark := "|-|"
			if e.Default {
				mark = "|x|"
			}
			writeEntry(&sb, indent(2), width, leftWidth, e.Name, e.Usage, mark)
		}
	}
	return sb.String()
}

func (a *App) optionFlags() []*Flag {
	grouped := make(map[string]bool)
	for _, g := range a.FlagSet.flagGroups {
		for _, e := range g.Flags {
			grouped[e.Prefix+e.Name] = true
			grouped[e.Prefix+"no-"+e.Name] = true
		}
	}
	var out []*Flag
	for name, flag := range a.FlagSet.flags {
		if !grouped[name] {
			out = append(out, flag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func formatFlag(flag *Flag) string {
	var sb strings.Builder
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if !flag.isBool() && flag.ExpectedType != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ExpectedType)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, indent string, width, leftWidth int, left, usage, right string) {
	usageWidth := max(width-len(indent)-leftWidth-len(right)-3, 10)
	lines := wrapText(usage, usageWidth)
	if len(lines) == 0 {
		lines = []string{""}
	}
	if right != "" {
		fmt.Fprintf(sb, "%s%-*s %-*s  %s\n", indent, leftWidth, left, usageWidth, lines[0], right)
	} else {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, leftWidth, left, lines[0])
	}
	for _, line := range lines[1:] {
		fmt.Fprintf(sb, "%s%s %s\n", indent, strings.Repeat(" ", leftWidth), line)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if maxWidth <= 0 || len(words) == 0 {
		return words
	}
	var lines []string
	var cur strings.Builder
	for _, word := range words {
		if cur.Len() > 0 && cur.Len()+1+len(word) > maxWidth {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
