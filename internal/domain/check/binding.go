package check

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/remediation"
)

// Binding checks that the service listens on the platform-assigned port and
// on all interfaces. It only reads text, so it cannot see ports or hosts
// computed at runtime.
type Binding struct{}

func (Binding) Name() string            { return domain.CheckerBinding }
func (Binding) NeedsParsedConfig() bool { return true }
func (Binding) Description() string {
	return "start command uses the dynamic port variable and binds all interfaces"
}

var (
	wildcardHosts = map[string]bool{"0.0.0.0": true, "::": true, "[::]": true}
	loopbackHosts = map[string]bool{"127.0.0.1": true, "localhost": true, "::1": true, "[::1]": true}

	portFlag = regexp.MustCompile(`^(--port|--listen-port|-p|-P)(=(.*))?$`)
	hostFlag = regexp.MustCompile(`^(--host|--hostname|--bind|--listen|-H|-b)(=(.*))?$`)
	// host:port, :port, [::]:port
	hostPort = regexp.MustCompile(`^(\[[0-9a-fA-F:]*\]|[A-Za-z0-9._-]*):([0-9]{2,5})$`)
	numeric  = regexp.MustCompile(`^[0-9]{2,5}$`)

	sourceWildcard = regexp.MustCompile(`["'` + "`" + `](0\.0\.0\.0|::)["'` + "`" + `]|0\.0\.0\.0:|ListenAndServe(TLS)?\(\s*":|Listen\(\s*"tcp[46]?",\s*":`)
	sourceLoopback = regexp.MustCompile(`(?i)(host|bind|listen|addr)\w*["']?\s*[:=(,]\s*["'](127\.0\.0\.1|localhost)["']`)
)

// startArgs is what the start command says about port and host.
type startArgs struct {
	usesPortVar bool
	literalPort string // e.g. "8000"
	portToken   string // the word carrying literalPort
	host        string
	hostToken   string
}

func (c Binding) Check(in *Input) []domain.Finding {
	d := in.Descriptors.Primary()
	cmd := strings.TrimSpace(d.Config.Deploy.StartCommand)
	args := parseStartCommand(cmd, in.Config.PortVariables)
	fixed := args.portFixed(cmd, in.Config.PortVariables[0])

	return []domain.Finding{
		c.checkPort(in, d, cmd, fixed.cmd, args),
		c.checkBind(in, d, fixed, args),
	}
}

// fixedStart is the start command after the port rewrite. hostToken is the
// host word as it appears in cmd.
type fixedStart struct {
	cmd       string
	hostToken string
}

// portFixed rewrites a hardcoded port to read portVar. The bind fix applies
// on top of the result, so a script running both steps keeps both.
func (a startArgs) portFixed(cmd, portVar string) fixedStart {
	out := fixedStart{cmd: cmd, hostToken: a.hostToken}
	if a.literalPort == "" {
		return out
	}
	tok := strings.Replace(a.portToken, a.literalPort, "${"+portVar+":-"+a.literalPort+"}", 1)
	out.cmd = strings.Replace(cmd, a.portToken, tok, 1)
	if a.hostToken == a.portToken {
		out.hostToken = tok
	}
	return out
}

func (c Binding) checkPort(in *Input, d *Descriptor, cmd, fixed string, args startArgs) domain.Finding {
	portVar := in.Config.PortVariables[0]

	if args.literalPort != "" {
		f := newFinding(c.Name(), domain.SeverityError, domain.KindBindingMisconfigured, d.Path,
			fmt.Sprintf("hardcoded port %s in start command %q; the platform assigns the port through $%s",
				args.literalPort, cmd, portVar))
		return withFix(f,
			remediation.JQSet(d.Path, ".deploy.startCommand", fixed, false),
			fmt.Sprintf("replace %s with ${%s:-%s} in deploy.startCommand", args.literalPort, portVar, args.literalPort))
	}
	if args.usesPortVar {
		return newFinding(c.Name(), domain.SeverityOK, domain.KindOK, d.Path,
			fmt.Sprintf("start command reads $%s", portVar))
	}

	// The command may leave the port to the application itself.
	m, _, err := searchSources(in, portEnvRead(in.Config.PortVariables))
	if err == nil && m != nil {
		return newFinding(c.Name(), domain.SeverityOK, domain.KindOK, m.File,
			fmt.Sprintf("%s reads $%s from the environment", m.File, portVar))
	}

	msg := fmt.Sprintf("start command %q does not reference $%s and no source file reads it", cmd, portVar)
	if cmd == "" {
		msg = fmt.Sprintf("no deploy.startCommand and no source file reads $%s", portVar)
	}
	f := newFinding(c.Name(), domain.SeverityError, domain.KindBindingMisconfigured, d.Path, msg)
	return withFix(f, "", fmt.Sprintf("pass --port ${%s} in deploy.startCommand or read %s in the application", portVar, portVar))
}

func (c Binding) checkBind(in *Input, d *Descriptor, fixed fixedStart, args startArgs) domain.Finding {
	switch {
	case wildcardHosts[args.host]:
		return newFinding(c.Name(), domain.SeverityOK, domain.KindOK, d.Path,
			fmt.Sprintf("start command binds %s", args.host))
	case loopbackHosts[args.host]:
		f := newFinding(c.Name(), domain.SeverityWarning, domain.KindBindingMisconfigured, d.Path,
			fmt.Sprintf("start command binds loopback address %s; external traffic will not reach it", args.host))
		cmd := strings.Replace(fixed.cmd, fixed.hostToken, strings.Replace(fixed.hostToken, args.host, "0.0.0.0", 1), 1)
		return withFix(f,
			remediation.JQSet(d.Path, ".deploy.startCommand", cmd, false),
			fmt.Sprintf("bind 0.0.0.0 instead of %s", args.host))
	}

	if m, _, err := searchSources(in, sourceWildcard); err == nil && m != nil {
		return newFinding(c.Name(), domain.SeverityOK, domain.KindOK, m.File,
			fmt.Sprintf("%s binds all interfaces (%s)", m.File, m.Text))
	}
	if m, _, err := searchSources(in, sourceLoopback); err == nil && m != nil {
		f := newFinding(c.Name(), domain.SeverityWarning, domain.KindBindingMisconfigured, m.File,
			fmt.Sprintf("%s binds a loopback address (%s)", m.File, m.Text))
		return withFix(f, "", fmt.Sprintf("bind 0.0.0.0 in %s", m.File))
	}

	f := newFinding(c.Name(), domain.SeverityWarning, domain.KindBindingMisconfigured, d.Path,
		"no explicit all-interfaces bind (0.0.0.0) in start command or sources")
	return withFix(f, "", "add --host 0.0.0.0 (or the framework's equivalent) to deploy.startCommand")
}

// parseStartCommand tokenises cmd as shell. Unparseable commands fall back
// to whitespace splitting.
func parseStartCommand(cmd string, portVars []string) startArgs {
	var args startArgs
	if cmd == "" {
		return args
	}
	vars := make(map[string]bool, len(portVars))
	for _, v := range portVars {
		vars[v] = true
	}

	var words []string
	file, err := syntax.NewParser().Parse(strings.NewReader(cmd), "startCommand")
	if err != nil {
		words = strings.Fields(cmd)
		for _, w := range words {
			for v := range vars {
				if strings.Contains(w, "$"+v) || strings.Contains(w, "${"+v) {
					args.usesPortVar = true
				}
			}
		}
	} else {
		syntax.Walk(file, func(node syntax.Node) bool {
			switch n := node.(type) {
			case *syntax.ParamExp:
				if n.Param != nil && vars[n.Param.Value] {
					args.usesPortVar = true
				}
			case *syntax.Assign:
				// PORT=8000 uvicorn ... pins the port.
				if n.Name != nil && vars[n.Name.Value] && n.Value != nil {
					if lit := n.Value.Lit(); numeric.MatchString(lit) {
						args.literalPort, args.portToken = lit, n.Name.Value+"="+lit
					}
				}
			case *syntax.CallExpr:
				for _, w := range n.Args {
					words = append(words, wordText(w))
				}
			}
			return true
		})
	}

	for i := 0; i < len(words); i++ {
		w := words[i]
		next := ""
		if i+1 < len(words) {
			next = words[i+1]
		}
		// A value of some other flag (--redis localhost:6379) is not the
		// service's own listen address.
		flagValue := i > 0 && strings.HasPrefix(words[i-1], "-") && !strings.Contains(words[i-1], "=")

		if m := portFlag.FindStringSubmatch(w); m != nil {
			val, tok := m[3], w
			if m[2] == "" {
				val, tok = next, next
			}
			if numeric.MatchString(val) && args.literalPort == "" {
				args.literalPort, args.portToken = val, tok
			}
		}
		if m := hostFlag.FindStringSubmatch(w); m != nil {
			val, tok := m[3], w
			if m[2] == "" {
				val, tok = next, next
			}
			host, port := splitHostPort(val)
			if host != "" && args.host == "" {
				args.host, args.hostToken = host, tok
			}
			if numeric.MatchString(port) && args.literalPort == "" {
				args.literalPort, args.portToken = port, tok
			}
		}
		if flagValue {
			continue
		}
		if m := hostPort.FindStringSubmatch(w); m != nil {
			if m[1] != "" && args.host == "" {
				args.host, args.hostToken = m[1], w
			}
			if args.literalPort == "" {
				args.literalPort, args.portToken = m[2], w
			}
		}
		if args.host == "" && (wildcardHosts[w] || loopbackHosts[w]) {
			args.host, args.hostToken = w, w
		}
	}
	return args
}

// splitHostPort splits "host:port" leniently; a bare host has no port.
func splitHostPort(s string) (string, string) {
	if m := hostPort.FindStringSubmatch(s); m != nil {
		return m[1], m[2]
	}
	if i := strings.LastIndex(s, ":"); i > 0 && !strings.HasPrefix(s, "[") && strings.Count(s, ":") == 1 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// wordText flattens a shell word: literals and quoted text are kept,
// parameter expansions render as ${NAME}.
func wordText(w *syntax.Word) string {
	var b strings.Builder
	var walk func(parts []syntax.WordPart)
	walk = func(parts []syntax.WordPart) {
		for _, p := range parts {
			switch t := p.(type) {
			case *syntax.Lit:
				b.WriteString(t.Value)
			case *syntax.SglQuoted:
				b.WriteString(t.Value)
			case *syntax.DblQuoted:
				walk(t.Parts)
			case *syntax.ParamExp:
				if t.Param != nil {
					b.WriteString("${" + t.Param.Value + "}")
				}
			}
		}
	}
	walk(w.Parts)
	return b.String()
}

// portEnvRead matches the common ways applications read the port variable.
func portEnvRead(vars []string) *regexp.Regexp {
	quoted := make([]string, len(vars))
	for i, v := range vars {
		quoted[i] = regexp.QuoteMeta(v)
	}
	name := "(?:" + strings.Join(quoted, "|") + ")"
	return regexp.MustCompile(
		`process\.env\.` + name + `\b` +
			`|process\.env\[["']` + name + `["']\]` +
			`|os\.environ(?:\.get)?\s*[\[(]\s*["']` + name + `["']` +
			`|(?:os\.)?[Gg]etenv\(\s*["']` + name + `["']` +
			`|Deno\.env\.get\(\s*["']` + name + `["']`)
}
