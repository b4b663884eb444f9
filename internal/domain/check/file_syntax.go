package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// FileSyntax confirms every expected descriptor exists and is strict JSON
// matching the descriptor schema.
type FileSyntax struct{}

func (FileSyntax) Name() string            { return domain.CheckerFileSyntax }
func (FileSyntax) NeedsParsedConfig() bool { return false }
func (FileSyntax) Description() string {
	return "expected descriptor files exist and parse as JSON"
}

func (c FileSyntax) Check(in *Input) []domain.Finding {
	var findings []domain.Finding
	files := in.Context.ConfigFiles()

	for _, path := range files {
		d := &Descriptor{Path: path}
		in.Descriptors.add(d)

		if !in.Workspace.Exists(path) {
			d.Err = ErrDescriptorMissing
			f := newFinding(c.Name(), domain.SeverityError, domain.KindConfigMissing, path,
				fmt.Sprintf("%s does not exist", path))
			findings = append(findings, withFix(f, "", fmt.Sprintf("create %s", path)))
			continue
		}

		data, err := in.Workspace.ReadFile(path)
		if err != nil {
			d.Err = err
			findings = append(findings, newFinding(c.Name(), domain.SeverityError, domain.KindConfigMissing, path,
				fmt.Sprintf("cannot read %s: %v", path, err)))
			continue
		}
		d.Raw = data

		if err := syntaxError(data); err != nil {
			d.Err = err
			findings = append(findings, malformed(c.Name(), path, data, err))
			continue
		}

		cfg, err := domain.ParseDeployConfig(data)
		if err != nil {
			d.Err = err
			findings = append(findings, newFinding(c.Name(), domain.SeverityError, domain.KindConfigMalformed, path,
				fmt.Sprintf("%s does not match the descriptor schema: %v", path, err)))
			continue
		}
		d.Config = cfg
	}

	if len(findings) == 0 && len(files) > 0 {
		findings = append(findings, newFinding(c.Name(), domain.SeverityOK, domain.KindOK, "",
			fmt.Sprintf("%d descriptor file(s) present and valid JSON", len(files))))
	}
	return findings
}

// syntaxError returns a *json.SyntaxError (or the decoder error) when data
// is not a single strict JSON value.
func syntaxError(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	if err := dec.Decode(&v); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

func malformed(checker, path string, data []byte, err error) domain.Finding {
	msg := fmt.Sprintf("%s is not valid JSON: %v", path, err)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		line, col := position(data, se.Offset)
		msg = fmt.Sprintf("%s is not valid JSON (line %d, column %d): %v", path, line, col, err)
	}
	f := newFinding(checker, domain.SeverityError, domain.KindConfigMalformed, path, msg)

	// Trailing commas and comments are the usual culprits; JSONC tolerates
	// both, so a clean JSONC parse pins the problem down.
	if json.Valid(jsonc.ToJSON(data)) {
		return withFix(f, "", fmt.Sprintf("remove trailing commas and comments from %s; Railway reads strict JSON", path))
	}
	return withFix(f, "", fmt.Sprintf("fix the JSON syntax of %s", path))
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
