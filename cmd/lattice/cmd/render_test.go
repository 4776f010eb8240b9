package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	searchDirs, rawOutput, ignoreEmitZero = nil, false, false
	renderCmd.ResetFlags()
	renderCmd.Flags().StringArrayVarP(&searchDirs, "search", "I", nil, "")
	renderCmd.Flags().BoolVar(&rawOutput, "raw", false, "")
	renderCmd.Flags().BoolVar(&ignoreEmitZero, "ignore-emit-zero", false, "")

	var outBuf, errBuf bytes.Buffer
	renderCmd.SetIn(strings.NewReader(stdin))
	renderCmd.SetOut(&outBuf)
	renderCmd.SetErr(&errBuf)
	renderCmd.SetArgs(args)
	err = renderCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIRenderSuccess(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.tmpl", "hi ${name}")

	out, _, err := runCLI(t, `{"name":"ada"}`, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hi ada" {
		t.Errorf("stdout = %q, want %q", out, "hi ada")
	}
}

func TestCLIRenderBadJSONExitCode3(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.tmpl", "hi")

	_, _, err := runCLI(t, `not json`, path)
	if err == nil {
		t.Fatal("expected an error for invalid JSON input")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != 3 {
		t.Fatalf("expected exit code 3, got %#v", err)
	}
}

func TestCLIRenderMissingTemplateExitCode2(t *testing.T) {
	_, _, err := runCLI(t, `{}`, filepath.Join(t.TempDir(), "missing.tmpl"))
	if err == nil {
		t.Fatal("expected an error for a missing template file")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != 2 {
		t.Fatalf("expected exit code 2, got %#v", err)
	}
}

func TestCLIRenderUndefinedNameExitCode4(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.tmpl", "${missing}")

	_, stderr, err := runCLI(t, `{}`, path)
	if err == nil {
		t.Fatal("expected an error for an undefined template name")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != 4 {
		t.Fatalf("expected exit code 4, got %#v", err)
	}
	if !strings.Contains(stderr, path) {
		t.Errorf("stderr should name the failing template, got %q", stderr)
	}
}

func TestCLIRenderRawFlagDisablesEscape(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.tmpl", "$[html]")

	out, _, err := runCLI(t, `{"html":"<b>"}`, "--raw", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<b>" {
		t.Errorf("stdout = %q, want %q", out, "<b>")
	}
}
