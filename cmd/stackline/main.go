// Package main provides the stackline CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"

	"stackline/absorb"
	"stackline/filestack"
	"stackline/internal/fixture"
	"stackline/internal/gitio"
	"stackline/linelog"
)

// Version is the current stackline CLI version
var Version = "0.1.0"

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	addColor     = color.New(color.FgGreen)
	delColor     = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:     "stackline",
	Short:   "Stackline - line-history engine for commit stacks",
	Long:    `Stackline tracks every line of a file across a stack of commits, answers blame and checkout queries for any revision, and distributes working-copy edits back into the commits that own the touched lines.`,
	Version: Version,
}

var (
	repoPath string
	baseRef  string
	headRef  string
	revFlag  int
	nesting  bool
	pattern  string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Dump the internal line-history program for a file",
	Long: `Dump the interpreted program that encodes a file's history across
the base..head commit range, either as raw instructions or as the
nested insertion/deletion block structure (--nesting).`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <file>",
	Short: "Print a file's content at one stack revision",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckout,
}

var blameCmd = &cobra.Command{
	Use:   "blame <file>",
	Short: "Annotate each line with the commit that introduced it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlame,
}

var absorbCmd = &cobra.Command{
	Use:   "absorb",
	Short: "Plan how working-copy edits distribute into the commit stack",
	Long: `Diff each changed file's working copy against the head commit and
attribute every hunk to the commit in base..head that introduced the
touched lines. Hunks with a single owner are absorbable; the rest need
a manual target and are flagged.

Nothing is written: the output is the plan a history-rewriting tool
would apply.`,
	RunE: runAbsorb,
}

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml|dir>",
	Short: "Replay YAML history scenarios and check their expectations",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

// loadStack opens the repo, resolves base..head, and builds the file's
// revision stack (revision 0 is the base commit's content).
func loadStack(path string) (*filestack.FileStackState, []string, error) {
	repo, err := gitio.Open(repoPath)
	if err != nil {
		return nil, nil, err
	}
	base, err := repo.ResolveRef(baseRef)
	if err != nil {
		return nil, nil, err
	}
	head, err := repo.ResolveRef(headRef)
	if err != nil {
		return nil, nil, err
	}
	chain, err := repo.FirstParentChain(base, head)
	if err != nil {
		return nil, nil, err
	}

	texts, err := repo.FileStack(base, chain, path)
	if err != nil {
		return nil, nil, err
	}

	labels := make([]string, 0, len(chain)+1)
	labels = append(labels, shortID(base.Hash.String()))
	for _, c := range chain {
		labels = append(labels, shortID(c.Hash.String()))
	}
	return filestack.New(texts), labels, nil
}

func runDump(cmd *cobra.Command, args []string) error {
	stack, _, err := loadStack(args[0])
	if err != nil {
		return err
	}
	log := stack.LineLog()
	if nesting {
		fmt.Print(log.DumpNesting())
	} else {
		fmt.Print(log.DumpInstructions())
	}
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	stack, labels, err := loadStack(args[0])
	if err != nil {
		return err
	}
	rev := revFlag
	if rev < 0 {
		rev = stack.RevLength() - 1
	}
	if rev >= stack.RevLength() {
		return fmt.Errorf("revision %d out of range: stack has %d revisions (base %s)", rev, stack.RevLength(), labels[0])
	}
	fmt.Print(stack.GetRev(linelog.Rev(rev)))
	return nil
}

func runBlame(cmd *cobra.Command, args []string) error {
	stack, labels, err := loadStack(args[0])
	if err != nil {
		return err
	}
	rev := revFlag
	if rev < 0 {
		rev = stack.RevLength() - 1
	}
	if rev >= stack.RevLength() {
		return fmt.Errorf("revision %d out of range: stack has %d revisions", rev, stack.RevLength())
	}

	text := stack.GetRev(linelog.Rev(rev))
	blame := stack.Blame(linelog.Rev(rev))
	lines := strings.SplitAfter(text, "\n")
	for i, owner := range blame {
		label := labels[owner]
		if owner == 0 {
			dimColor.Printf("%s ", label)
		} else {
			headerColor.Printf("%s ", label)
		}
		fmt.Print(lines[i])
	}
	return nil
}

func runAbsorb(cmd *cobra.Command, args []string) error {
	repo, err := gitio.Open(repoPath)
	if err != nil {
		return err
	}
	base, err := repo.ResolveRef(baseRef)
	if err != nil {
		return err
	}
	head, err := repo.ResolveRef(headRef)
	if err != nil {
		return err
	}
	chain, err := repo.FirstParentChain(base, head)
	if err != nil {
		return err
	}

	paths, err := repo.ChangedFiles(base, chain)
	if err != nil {
		return err
	}

	absorbed, ambiguous := 0, 0
	for _, path := range paths {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, path)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}

		working, err := os.ReadFile(filepath.Join(repoPath, path))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		texts, err := repo.FileStack(base, chain, path)
		if err != nil {
			return err
		}
		stack := filestack.New(texts)
		chunks := absorb.AnalyseFileStack(stack, string(working))
		if len(chunks) == 0 {
			continue
		}

		headerColor.Println(path)
		for _, c := range chunks {
			target := "???"
			if c.SelectedRev != nil {
				target = shortID(commitLabel(base, chain, *c.SelectedRev))
				absorbed++
			} else {
				ambiguous++
			}
			rangeDesc := fmt.Sprintf("lines %d-%d", c.OldStart+1, c.OldEnd)
			if c.OldStart == c.OldEnd {
				rangeDesc = fmt.Sprintf("after line %d", c.OldStart)
			}
			if c.SelectedRev != nil {
				fmt.Printf("  %s -> %s\n", rangeDesc, target)
			} else {
				warnColor.Printf("  %s -> ambiguous (owner unclear, newest involved commit %s)\n",
					rangeDesc, shortID(commitLabel(base, chain, c.IntroductionRev)))
			}
			for i := c.OldStart; i < c.OldEnd; i++ {
				delColor.Printf("    -%s", lineAt(stack, i))
			}
			for _, l := range c.NewLines {
				addColor.Printf("    +%s", l)
			}
		}
	}

	fmt.Println()
	successColor.Printf("%d chunk(s) absorbable", absorbed)
	if ambiguous > 0 {
		warnColor.Printf(", %d need a manual target", ambiguous)
	}
	fmt.Println()
	return nil
}

func lineAt(stack *filestack.FileStackState, idx int) string {
	top := linelog.Rev(stack.RevLength() - 1)
	lines := strings.SplitAfter(stack.GetRev(top), "\n")
	if idx < len(lines) {
		return lines[idx]
	}
	return ""
}

func commitLabel(base *object.Commit, chain []*object.Commit, rev linelog.Rev) string {
	if rev == 0 {
		return base.Hash.String()
	}
	return chain[rev-1].Hash.String()
}

func runReplay(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	var scenarios []*fixture.Scenario
	if info.IsDir() {
		scenarios, err = fixture.LoadDir(args[0])
	} else {
		var s *fixture.Scenario
		s, err = fixture.Load(args[0])
		scenarios = []*fixture.Scenario{s}
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, sc := range scenarios {
		stack := filestack.New(sc.Stack)
		if sc.Edit != nil {
			chunks := absorb.AnalyseFileStack(stack, *sc.Edit)
			stack = absorb.ApplyFileStackEdits(stack, chunks)
		}

		var problems []string
		for rev, want := range sc.Expect.Revisions {
			if got := stack.GetRev(linelog.Rev(rev)); got != want {
				problems = append(problems, fmt.Sprintf("rev %d: got %q, want %q", rev, got, want))
			}
		}
		if sc.Expect.Blame != nil {
			top := linelog.Rev(stack.RevLength() - 1)
			blame := stack.Blame(top)
			for i, want := range sc.Expect.Blame {
				if i >= len(blame) || blame[i] != linelog.Rev(want) {
					problems = append(problems, fmt.Sprintf("blame[%d]: want %d", i, want))
					break
				}
			}
		}

		if len(problems) == 0 {
			successColor.Printf("ok   ")
			fmt.Println(sc.Name)
		} else {
			failed++
			delColor.Printf("FAIL ")
			fmt.Println(sc.Name)
			for _, p := range problems {
				fmt.Printf("     %s\n", p)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed", failed, len(scenarios))
	}
	return nil
}

// shortID safely truncates an ID string to 12 characters.
func shortID(s string) string {
	if len(s) >= 12 {
		return s[:12]
	}
	return s
}

func init() {
	for _, c := range []*cobra.Command{dumpCmd, checkoutCmd, blameCmd, absorbCmd} {
		c.Flags().StringVar(&repoPath, "repo", ".", "Path to the Git repository")
		c.Flags().StringVar(&baseRef, "base", "", "Base commit (revision 0, immutable)")
		c.Flags().StringVar(&headRef, "head", "HEAD", "Head commit of the stack")
		c.MarkFlagRequired("base")
	}
	dumpCmd.Flags().BoolVar(&nesting, "nesting", false, "Show nested insertion/deletion blocks instead of raw instructions")
	checkoutCmd.Flags().IntVar(&revFlag, "rev", -1, "Stack revision to print (default: head)")
	blameCmd.Flags().IntVar(&revFlag, "rev", -1, "Stack revision to annotate (default: head)")
	absorbCmd.Flags().StringVar(&pattern, "pattern", "", "Only absorb files matching this glob (doublestar syntax)")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(blameCmd)
	rootCmd.AddCommand(absorbCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
