// Package remediation turns suggested fixes into a reviewable shell script.
// Nothing in this package runs a command.
package remediation

import (
	"bytes"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// Script is an ordered list of remediation steps.
type Script struct {
	Root     string
	Revision string
	// ToRoot is the path from the script's directory to Root.
	ToRoot string
	Steps  []Step
}

// Step is one fix. Exactly one of Command and Manual is rendered as code;
// Manual steps become comments.
type Step struct {
	Severity domain.Severity
	Checker  string
	Service  string
	Dir      string
	Message  string
	Command  string
	Manual   string
}

// Build collects the fixes of findings in order. dirs maps a service name to
// its directory relative to root; commands of that service run from there.
// Identical steps are emitted once.
func Build(root, revision string, findings []domain.Finding, dirs map[string]string) *Script {
	s := &Script{Root: root, Revision: revision}
	seen := make(map[string]bool)
	for _, f := range findings {
		if !f.HasFix() {
			continue
		}
		step := Step{
			Severity: f.Severity,
			Checker:  f.Checker,
			Service:  f.Service,
			Dir:      dirs[f.Service],
			Message:  f.Message,
		}
		if f.SuggestedFix.Command != "" {
			step.Command = f.SuggestedFix.Command
		} else {
			step.Manual = f.SuggestedFix.Description
		}
		key := step.Dir + "\x00" + step.Command + "\x00" + step.Manual
		if seen[key] {
			continue
		}
		seen[key] = true
		s.Steps = append(s.Steps, step)
	}
	return s
}

// Commands returns the executable steps, already wrapped for their directory.
func (s *Script) Commands() []string {
	var out []string
	for _, st := range s.Steps {
		if st.Command != "" {
			out = append(out, st.commandLine())
		}
	}
	return out
}

func (st Step) commandLine() string {
	if st.Dir == "" || st.Dir == "." {
		return st.Command
	}
	return fmt.Sprintf("( cd %s && %s )", Quote(st.Dir), st.Command)
}

// Render produces the script text.
func (s *Script) Render() []byte {
	var b bytes.Buffer
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# Generated by railcheck. Nothing below has been run.\n")
	b.WriteString("# Review each step, then run this script by hand.\n")
	if s.Root != "" {
		fmt.Fprintf(&b, "# root: %s\n", oneLine(s.Root))
	}
	if s.Revision != "" {
		fmt.Fprintf(&b, "# revision: %s\n", oneLine(s.Revision))
	}
	b.WriteString("set -euo pipefail\n")
	b.WriteString("cd \"$(dirname \"$0\")\"\n")
	if s.ToRoot != "" && s.ToRoot != "." {
		fmt.Fprintf(&b, "cd %s\n", Quote(s.ToRoot))
	}

	for i, st := range s.Steps {
		b.WriteString("\n")
		scope := st.Checker
		if st.Service != "" {
			scope = st.Service + ": " + scope
		}
		fmt.Fprintf(&b, "# [%d] %s (%s): %s\n", i+1, st.Severity, oneLine(scope), oneLine(st.Message))
		if st.Command != "" {
			b.WriteString(st.commandLine())
			b.WriteString("\n")
			continue
		}
		if st.Dir != "" && st.Dir != "." {
			fmt.Fprintf(&b, "# MANUAL (in %s): %s\n", oneLine(st.Dir), oneLine(st.Manual))
		} else {
			fmt.Fprintf(&b, "# MANUAL: %s\n", oneLine(st.Manual))
		}
	}
	return b.Bytes()
}

// Verify parses script as bash without running it.
func Verify(script []byte) error {
	p := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := p.Parse(bytes.NewReader(script), "auto-fix.sh"); err != nil {
		return fmt.Errorf("generated script does not parse: %w", err)
	}
	return nil
}

// Quote returns s as a single bash word.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only unquotable bytes (NUL) get here; drop them.
		q, _ = syntax.Quote(strings.ReplaceAll(s, "\x00", ""), syntax.LangBash)
	}
	return q
}

// Command joins args into one command line, quoting each as needed.
func Command(args ...string) string {
	words := make([]string, len(args))
	for i, a := range args {
		words[i] = Quote(a)
	}
	return strings.Join(words, " ")
}

// JQSet returns a command that sets a JSON value in file in place. value is
// encoded as a JSON string unless raw is true.
func JQSet(file, path, value string, raw bool) string {
	flag := "--arg"
	if raw {
		flag = "--argjson"
	}
	tmp := file + ".tmp"
	return Command("jq", flag, "v", value, path+" = $v", file) +
		" > " + Quote(tmp) + " && " + Command("mv", "--", tmp, file)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
