package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jsema/internal/diag"
	"jsema/internal/diagfmt"
	"jsema/internal/loader"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

var classinfoCmd = &cobra.Command{
	Use:   "classinfo <binary-name>...",
	Short: "Describe classes from the classpath",
	Long: `Load classes by binary name (java.util.Map$Entry or java/util/Map$Entry) from the
configured classpath and print their header and members`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassinfo,
}

func init() {
	classinfoCmd.Flags().Bool("private", false, "include private members")
}

func runClassinfo(cmd *cobra.Command, args []string) error {
	showPrivate, err := cmd.Flags().GetBool("private")
	if err != nil {
		return fmt.Errorf("failed to get private flag: %w", err)
	}
	sess, opts, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	bag := diag.NewBag(opts.MaxDiagnostics)
	tab := symbols.NewTable()
	l := loader.New(tab, loader.Options{
		Index:    opts.Index,
		Reporter: &diag.BagReporter{Bag: bag},
		Tracer:   opts.Tracer,
		Retries:  opts.Retries,
	})

	out := cmd.OutOrStdout()
	var missing []string
	for i, name := range args {
		sym := l.ClassSymbol(name)
		if tab.IsUnknownSym(sym) {
			missing = append(missing, name)
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		describeClass(out, tab, sym, showPrivate)
	}
	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, source.NewFileSet(), diagfmt.PrettyOpts{Color: sess.settings.color})
	}
	if len(missing) > 0 {
		return fmt.Errorf("class not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

var (
	keywordColor = color.New(color.FgMagenta)
	memberColor  = color.New(color.Bold)
)

func describeClass(w io.Writer, t *symbols.Table, cls symbols.SymbolID, showPrivate bool) {
	t.Complete(cls)
	flags := t.Flags(cls)

	kind := "class"
	switch {
	case flags.IsAnnotation():
		kind = "@interface"
	case flags.IsInterface():
		kind = "interface"
	case flags.IsEnum():
		kind = "enum"
	case flags.IsRecord():
		kind = "record"
	}
	header := t.FullyQualifiedName(cls)
	if tps := t.TypeParams(cls); len(tps) > 0 {
		names := make([]string, len(tps))
		for i, tp := range tps {
			names[i] = t.MustSym(tp).Name
		}
		header += "<" + strings.Join(names, ", ") + ">"
	}
	fmt.Fprintf(w, "%s %s", keywordColor.Sprint(kind), memberColor.Sprint(header))
	if sup := t.Superclass(cls); sup.IsValid() && !flags.IsInterface() {
		fmt.Fprintf(w, " %s %s", keywordColor.Sprint("extends"), t.TypeString(sup))
	}
	if ifaces := t.Interfaces(cls); len(ifaces) > 0 {
		word := "implements"
		if flags.IsInterface() {
			word = "extends"
		}
		parts := make([]string, len(ifaces))
		for i, it := range ifaces {
			parts[i] = t.TypeString(it)
		}
		fmt.Fprintf(w, " %s %s", keywordColor.Sprint(word), strings.Join(parts, ", "))
	}
	if flags.IsDeprecated() {
		fmt.Fprintf(w, " %s", keywordColor.Sprint("@Deprecated"))
	}
	fmt.Fprintln(w)

	members := t.ScopeSymbols(t.Members(cls))
	sort.SliceStable(members, func(i, j int) bool {
		return memberRank(t.MustSym(members[i])) < memberRank(t.MustSym(members[j]))
	})
	for _, m := range members {
		s := t.MustSym(m)
		if s.Flags.IsSynthetic() || (s.Flags.IsPrivate() && !showPrivate) {
			continue
		}
		mods := strings.Join(modifiers(s.Flags), " ")
		if mods != "" {
			mods += " "
		}
		switch s.Kind {
		case symbols.SymVariable:
			fmt.Fprintf(w, "  %s%s %s\n", mods, t.TypeString(s.Type), memberColor.Sprint(s.Name))
		case symbols.SymMethod:
			sig := t.Signature(m)
			if s.IsConstructor() {
				fmt.Fprintf(w, "  %s%s\n", mods, memberColor.Sprint(sig))
				continue
			}
			fmt.Fprintf(w, "  %s%s %s", mods, t.TypeString(s.Method.Result), memberColor.Sprint(sig))
			if len(s.Method.Thrown) > 0 {
				thrown := make([]string, len(s.Method.Thrown))
				for i, th := range s.Method.Thrown {
					thrown[i] = t.TypeString(th)
				}
				fmt.Fprintf(w, " throws %s", strings.Join(thrown, ", "))
			}
			fmt.Fprintln(w)
		case symbols.SymType:
			fmt.Fprintf(w, "  %s%s %s\n", mods, keywordColor.Sprint("class"), t.BinaryName(m))
		}
	}
}

func memberRank(s *symbols.Symbol) int {
	switch {
	case s.Kind == symbols.SymVariable:
		return 0
	case s.Kind == symbols.SymMethod && s.IsConstructor():
		return 1
	case s.Kind == symbols.SymMethod:
		return 2
	}
	return 3
}

func modifiers(f symbols.Flags) []string {
	var out []string
	switch {
	case f.IsPublic():
		out = append(out, "public")
	case f.IsProtected():
		out = append(out, "protected")
	case f.IsPrivate():
		out = append(out, "private")
	}
	if f.IsStatic() {
		out = append(out, "static")
	}
	if f.IsAbstract() && !f.IsInterface() {
		out = append(out, "abstract")
	}
	if f.IsFinal() {
		out = append(out, "final")
	}
	if f.IsDefault() {
		out = append(out, "default")
	}
	return out
}
