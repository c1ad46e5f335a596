// Package debugconfig loads and validates the per-function debug mode
// configuration of the lambda emulator. A configuration document maps lambda
// function ARNs to an optional debugger port and a flag that disables the
// invocation timeout while a debugger is attached.
package debugconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FunctionConfig holds the debug settings requested for a single function.
type FunctionConfig struct {
	// DebugPort is the port the runtime exposes for debugger attachment.
	// Nil means no debugger is requested for this function.
	DebugPort *int
	// TimeoutDisable suspends the invocation timeout so that a paused
	// debug session does not get reaped.
	TimeoutDisable bool
}

// Config binds lambda function ARNs to their debug settings. After a
// successful Load every key is in qualified form and the config is not
// mutated again, so it may be shared across goroutines.
type Config struct {
	Functions map[string]*FunctionConfig
}

// FieldError describes a single field that failed to bind.
type FieldError struct {
	Path    string
	Message string
}

// BindError aggregates every field error found while binding one document,
// so a single diagnostic line gives the author the complete picture.
type BindError struct {
	Fields []FieldError
}

func (e *BindError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		path := field.Path
		if path == "" {
			path = "(document)"
		}
		msgs = append(msgs, fmt.Sprintf("when parsing %q: %s", path, field.Message))
	}
	return strings.Join(msgs, "; ")
}

// DuplicateConfigError reports two entries that name the same logical
// function, once qualified and once not.
type DuplicateConfigError struct {
	First  string
	Second string
}

func (e *DuplicateConfigError) Error() string {
	return fmt.Sprintf("debug configuration for %q is redefined in %q", e.First, e.Second)
}

// bind maps the generic node tree onto the configuration schema. Field
// errors are collected rather than failing fast; a *BindError enumerating
// them is returned when any field failed. A successful bind also rewrites
// every function key into its qualified form, failing with a
// *DuplicateConfigError when two keys collapse onto the same function.
func bind(root *yaml.Node) (*Config, error) {
	if root.Kind != yaml.MappingNode {
		return nil, &BindError{Fields: []FieldError{
			{Path: "", Message: "expected a mapping of configuration sections"},
		}}
	}

	var functionsNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Kind == yaml.ScalarNode && key.Value == "functions" {
			functionsNode = root.Content[i+1]
		}
	}
	if functionsNode == nil {
		return nil, &BindError{Fields: []FieldError{
			{Path: "functions", Message: "required mapping is missing"},
		}}
	}
	if functionsNode.Kind != yaml.MappingNode {
		return nil, &BindError{Fields: []FieldError{
			{Path: "functions", Message: "expected a mapping of function ARNs, found " + describeNode(functionsNode)},
		}}
	}

	var fieldErrs []FieldError
	functions := make(map[string]*FunctionConfig, len(functionsNode.Content)/2)
	for i := 0; i+1 < len(functionsNode.Content); i += 2 {
		key := functionsNode.Content[i]
		if key.Kind != yaml.ScalarNode {
			fieldErrs = append(fieldErrs, FieldError{
				Path:    "functions",
				Message: "function ARN must be a scalar string, found " + describeNode(key),
			})
			continue
		}
		fc, errs := bindFunction("functions."+key.Value, functionsNode.Content[i+1])
		if len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}
		functions[key.Value] = fc
	}
	if len(fieldErrs) > 0 {
		return nil, &BindError{Fields: fieldErrs}
	}

	cfg := &Config{Functions: functions}
	if err := qualifyKeys(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindFunction decodes the debug settings record of a single function.
// Unrecognized keys are ignored, matching the tolerant binding of the rest
// of the emulator's configuration surface.
func bindFunction(path string, node *yaml.Node) (*FunctionConfig, []FieldError) {
	if node.Kind != yaml.MappingNode {
		return nil, []FieldError{
			{Path: path, Message: "expected a mapping of debug settings, found " + describeNode(node)},
		}
	}
	fc := &FunctionConfig{}
	var errs []FieldError
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			continue
		}
		switch key.Value {
		case "debug-port":
			if isNull(value) {
				continue
			}
			var port int
			if value.Kind != yaml.ScalarNode || value.Tag != "!!int" || value.Decode(&port) != nil {
				errs = append(errs, FieldError{
					Path:    path + ".debug-port",
					Message: "expected an integer or null, found " + describeNode(value),
				})
				continue
			}
			fc.DebugPort = &port
		case "timeout-disable":
			var disable bool
			if value.Kind != yaml.ScalarNode || value.Tag != "!!bool" || value.Decode(&disable) != nil {
				errs = append(errs, FieldError{
					Path:    path + ".timeout-disable",
					Message: "expected a boolean, found " + describeNode(value),
				})
				continue
			}
			fc.TimeoutDisable = disable
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return fc, nil
}

// qualifyKeys rewrites every function key into its qualified form. The new
// map is built while reading the old one, so keys are never mutated during
// iteration. A key whose qualified form is itself present in the source map
// means the author defined the same function twice.
func qualifyKeys(cfg *Config) error {
	functions := make(map[string]*FunctionConfig, len(cfg.Functions))
	for arn, fc := range cfg.Functions {
		qualified := QualifyFunctionARN(arn)
		if qualified != arn {
			if _, exists := cfg.Functions[qualified]; exists {
				return &DuplicateConfigError{First: arn, Second: qualified}
			}
		}
		functions[qualified] = fc
	}
	cfg.Functions = functions
	return nil
}

func describeNode(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return "null"
		}
		return strings.TrimPrefix(node.Tag, "!!")
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}
