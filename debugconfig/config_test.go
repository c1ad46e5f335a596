package debugconfig

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func mustParse(t *testing.T, raw string) *yaml.Node {
	t.Helper()
	root, err := parseDocument(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root == nil {
		t.Fatal("expected a document")
	}
	return root
}

func TestBindCollectsAllFieldErrors(t *testing.T) {
	raw := `
functions:
  arn:aws:lambda:eu-central-1:000000000000:function:one:
    debug-port: not-a-port
  arn:aws:lambda:eu-central-1:000000000000:function:two:
    timeout-disable: 42
  arn:aws:lambda:eu-central-1:000000000000:function:three:
    - not
    - a
    - mapping
`
	node := mustParse(t, raw)
	_, err := bind(node)
	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if len(bindErr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(bindErr.Fields), bindErr)
	}
	msg := bindErr.Error()
	for _, fragment := range []string{"function:one", "function:two", "function:three", "debug-port", "timeout-disable"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected message to mention %q, got %q", fragment, msg)
		}
	}
}

func TestBindIgnoresUnrecognizedKeys(t *testing.T) {
	raw := `
functions:
  arn:aws:lambda:eu-central-1:000000000000:function:functionname:
    debug-port: 19891
    comment: attach here
`
	node := mustParse(t, raw)
	cfg, err := bind(node)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if fc := cfg.Functions[qualifiedARN]; fc == nil || fc.DebugPort == nil || *fc.DebugPort != 19891 {
		t.Fatalf("expected port 19891, got %+v", fc)
	}
}

func TestBindRejectsScalarFunctions(t *testing.T) {
	node := mustParse(t, "functions: debugging\n")
	_, err := bind(node)
	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if !strings.Contains(bindErr.Error(), "functions") {
		t.Fatalf("expected error to name the functions key, got %q", bindErr.Error())
	}
}

func TestBindQualifiesKeys(t *testing.T) {
	node := mustParse(t, configBaseUnqualified)
	cfg, err := bind(node)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, ok := cfg.Functions[qualifiedARN]; !ok {
		t.Fatalf("expected qualified key, got %v", cfg.Functions)
	}
}

func TestBindDetectsImplicitDuplicate(t *testing.T) {
	node := mustParse(t, configDuplicateImplicitARN)
	_, err := bind(node)
	var dup *DuplicateConfigError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateConfigError, got %v", err)
	}
	if dup.Second != qualifiedARN {
		t.Fatalf("expected collision with %q, got %q", qualifiedARN, dup.Second)
	}
	if QualifyFunctionARN(dup.First) != dup.Second {
		t.Fatalf("expected %q to qualify to %q", dup.First, dup.Second)
	}
}
