package application

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/check"
	"github.com/monkeycoder/railcheck/internal/domain/remediation"
)

// ValidateService runs the checkers over every scan target of a repository
// and aggregates their findings into a Report. A run never fails: loader,
// checker and writer failures all end up as findings.
type ValidateService struct {
	configLoader domain.ConfigLoader
	workspaces   domain.WorkspaceOpener
	scripts      domain.ScriptWriter
	runLog       domain.RunLog
	revisions    domain.RevisionSource
	checkers     []check.Checker
	logger       *log.Logger
	now          func() time.Time
}

// NewValidateService creates a ValidateService with the default checkers.
// revisions and runLog may be nil.
func NewValidateService(
	configLoader domain.ConfigLoader,
	workspaces domain.WorkspaceOpener,
	scripts domain.ScriptWriter,
	runLog domain.RunLog,
	revisions domain.RevisionSource,
	logger *log.Logger,
) *ValidateService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ValidateService{
		configLoader: configLoader, workspaces: workspaces, scripts: scripts,
		runLog: runLog, revisions: revisions, logger: logger,
		checkers: check.Default(),
		now:      time.Now,
	}
}

// WithCheckers replaces the checker list. The first checker must fill the
// descriptor set, as check.FileSyntax does.
func (s *ValidateService) WithCheckers(checkers ...check.Checker) *ValidateService {
	s.checkers = checkers
	return s
}

// ValidateOptions are the per-run switches.
type ValidateOptions struct {
	Service    string
	Fix        bool
	RunLogPath string
}

// ValidateOutcome is the result of one run.
type ValidateOutcome struct {
	Report     *domain.Report
	Script     *remediation.Script
	ScriptPath string
}

type target struct {
	ctx domain.RepositoryContext
	dir string // relative to the project root
}

// Validate runs Init → file check → remaining (or text-only) checkers →
// aggregate → optional remediation for each target.
func (s *ValidateService) Validate(projectPath string, opts ValidateOptions) (outcome *ValidateOutcome) {
	var results []domain.CheckerResult
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validation aborted", "panic", r)
			results = append(results, internalResult(fmt.Sprintf("validation aborted: %v", r)))
			outcome = &ValidateOutcome{Report: s.report(projectPath, "", results)}
		}
	}()

	cfg, cfgResult := s.loadConfig(projectPath)
	if cfgResult != nil {
		results = append(results, *cfgResult)
	}

	patterns, err := cfg.CompilePatterns()
	if err != nil {
		results = append(results, internalResult(fmt.Sprintf("compiling reference patterns: %v", err)))
		patterns, _ = domain.DefaultConfig().CompilePatterns()
	}

	targets, targetResult := s.targets(projectPath, cfg, opts)
	if targetResult != nil {
		results = append(results, *targetResult)
	}
	for _, t := range targets {
		results = append(results, s.runTarget(t, cfg, patterns)...)
	}

	revision := s.revision(projectPath)
	outcome = &ValidateOutcome{Report: s.report(projectPath, revision, results)}

	if opts.Fix {
		if res := s.emitRemediation(projectPath, cfg, targets, outcome); res != nil {
			results = append(results, *res)
			outcome.Report = s.report(projectPath, revision, results)
		}
	}

	s.recordRun(projectPath, cfg, opts, outcome.Report)
	return outcome
}

func (s *ValidateService) report(root, revision string, results []domain.CheckerResult) *domain.Report {
	r := domain.NewReport(results)
	r.Root = root
	r.Revision = revision
	return r
}

func (s *ValidateService) loadConfig(projectPath string) (domain.ProjectConfig, *domain.CheckerResult) {
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		s.logger.Error("configuration rejected, using defaults", "err", err)
		f := domain.Finding{
			Severity: domain.SeverityError,
			Kind:     domain.KindConfigMalformed,
			Checker:  domain.CheckerConfiguration,
			Message:  fmt.Sprintf("%v; validating with defaults", err),
			SuggestedFix: &domain.Fix{
				Description: "fix .railcheck.yaml or regenerate it with `railcheck init --force`",
			},
		}
		return domain.DefaultConfig(), &domain.CheckerResult{Checker: f.Checker, Findings: []domain.Finding{f}}
	}
	return cfg.WithDefaults(), nil
}

func (s *ValidateService) targets(projectPath string, cfg domain.ProjectConfig, opts ValidateOptions) ([]target, *domain.CheckerResult) {
	if opts.Service != "" {
		files, err := cfg.ServiceDescriptorFiles(opts.Service)
		if err != nil {
			f := domain.Finding{
				Severity: domain.SeverityError,
				Kind:     domain.KindConfigMissing,
				Checker:  domain.CheckerConfiguration,
				Service:  opts.Service,
				Message:  fmt.Sprintf("%v; declare it under services: in .railcheck.yaml", err),
			}
			return nil, &domain.CheckerResult{Checker: f.Checker, Findings: []domain.Finding{f}}
		}
		svc := cfg.Services[opts.Service]
		return []target{{
			ctx: domain.NewRepositoryContext(filepath.Join(projectPath, svc.Root), opts.Service, files, opts.Fix),
			dir: filepath.ToSlash(svc.Root),
		}}, nil
	}

	targets := []target{{
		ctx: domain.NewRepositoryContext(projectPath, "", cfg.DescriptorFiles(), opts.Fix),
		dir: ".",
	}}
	names := make([]string, 0, len(cfg.Services))
	for name := range cfg.Services {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		svc := cfg.Services[name]
		files, _ := cfg.ServiceDescriptorFiles(name)
		targets = append(targets, target{
			ctx: domain.NewRepositoryContext(filepath.Join(projectPath, svc.Root), name, files, opts.Fix),
			dir: filepath.ToSlash(svc.Root),
		})
	}
	return targets, nil
}

func (s *ValidateService) runTarget(t target, cfg domain.ProjectConfig, patterns domain.Patterns) []domain.CheckerResult {
	logger := s.logger.With("target", t.ctx.Label())
	in := &check.Input{
		Context:     t.ctx,
		Workspace:   s.workspaces.Open(t.ctx.Root(), cfg.ExcludeDirs),
		Config:      cfg,
		Patterns:    patterns,
		Descriptors: check.NewDescriptors(),
	}

	results := make([]domain.CheckerResult, 0, len(s.checkers))
	for _, c := range s.checkers {
		var res domain.CheckerResult
		if reason := in.Descriptors.SkipReason(); c.NeedsParsedConfig() && reason != "" {
			logger.Info("skipping checker", "checker", c.Name(), "reason", reason)
			res = domain.CheckerResult{Checker: c.Name(), Findings: []domain.Finding{check.Skipped(c, reason)}}
		} else {
			res = s.runChecker(c, in, logger)
		}
		for i := range res.Findings {
			res.Findings[i].Service = t.ctx.Service()
		}
		results = append(results, res)
	}
	return results
}

// runChecker isolates one checker: a panic becomes an internal-error finding
// and the remaining checkers still run.
func (s *ValidateService) runChecker(c check.Checker, in *check.Input, logger *log.Logger) (res domain.CheckerResult) {
	res.Checker = c.Name()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("checker crashed", "checker", c.Name(), "panic", r)
			res.Findings = append(res.Findings, internalFinding(fmt.Sprintf("%s checker crashed: %v", c.Name(), r)))
		}
	}()

	logger.Debug("running checker", "checker", c.Name())
	res.Findings = c.Check(in)
	for i, f := range res.Findings {
		if f.Severity == domain.SeverityError && f.Message == "" {
			res.Findings[i].Message = fmt.Sprintf("%s reported an error without details", c.Name())
		}
	}
	logger.Debug("checker finished", "checker", c.Name(), "findings", len(res.Findings))
	return res
}

// emitRemediation writes the remediation script when any finding carries a
// fix. The script is only written, never run.
func (s *ValidateService) emitRemediation(projectPath string, cfg domain.ProjectConfig, targets []target, outcome *ValidateOutcome) *domain.CheckerResult {
	fixable := outcome.Report.Fixable()
	if len(fixable) == 0 {
		s.logger.Info("no suggested fixes; remediation script not written")
		return nil
	}

	dirs := make(map[string]string, len(targets))
	for _, t := range targets {
		dirs[t.ctx.Service()] = t.dir
	}

	scriptPath := cfg.RemediationPath
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(projectPath, scriptPath)
	}
	script := remediation.Build(projectPath, outcome.Report.Revision, fixable, dirs)
	if rel, err := filepath.Rel(filepath.Dir(scriptPath), projectPath); err == nil {
		script.ToRoot = filepath.ToSlash(rel)
	}

	data := script.Render()
	if err := remediation.Verify(data); err != nil {
		s.logger.Error("remediation script rejected", "err", err)
		r := internalResult(err.Error())
		return &r
	}
	written, err := s.scripts.Write(scriptPath, data)
	if err != nil {
		s.logger.Error("writing remediation script", "path", scriptPath, "err", err)
		r := internalResult(fmt.Sprintf("writing remediation script: %v", err))
		return &r
	}
	s.logger.Info("remediation script written", "path", written, "steps", len(script.Steps))
	outcome.Script = script
	outcome.ScriptPath = written
	return nil
}

func (s *ValidateService) recordRun(projectPath string, cfg domain.ProjectConfig, opts ValidateOptions, report *domain.Report) {
	path := opts.RunLogPath
	if path == "" {
		path = cfg.RunLog
	}
	if path == "" || s.runLog == nil {
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectPath, path)
	}
	entry := domain.RunEntry{
		Timestamp: s.now().UTC(),
		Root:      projectPath,
		Revision:  report.Revision,
		Service:   opts.Service,
		Status:    report.Status,
		Counts:    report.Counts,
	}
	if err := s.runLog.Append(path, entry); err != nil {
		s.logger.Warn("run log not updated", "path", path, "err", err)
	}
}

func (s *ValidateService) revision(projectPath string) string {
	if s.revisions == nil {
		return ""
	}
	hash, err := s.revisions.CommitHash(projectPath)
	if err != nil {
		s.logger.Debug("no revision", "err", err)
		return ""
	}
	return hash
}

func internalFinding(msg string) domain.Finding {
	return domain.Finding{
		Severity: domain.SeverityError,
		Kind:     domain.KindInternalError,
		Checker:  domain.CheckerInternal,
		Message:  msg,
	}
}

func internalResult(msg string) domain.CheckerResult {
	return domain.CheckerResult{Checker: domain.CheckerInternal, Findings: []domain.Finding{internalFinding(msg)}}
}
