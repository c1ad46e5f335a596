package debugconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a mapping key that is defined more than once at
// the same nesting level of the configuration document.
type DuplicateKeyError struct {
	Key           string
	Line          int
	Column        int
	MappingLine   int
	MappingColumn int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf(
		"while constructing a mapping at line %d, column %d: found duplicate key %q at line %d, column %d",
		e.MappingLine, e.MappingColumn, e.Key, e.Line, e.Column,
	)
}

// parseDocument decodes raw into a yaml node tree and rejects any mapping
// that defines the same key twice. An empty document, or one that resolves
// to null, yields a nil root without an error.
func parseDocument(raw string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if err := checkDuplicateKeys(root); err != nil {
		return nil, err
	}
	if isNull(root) {
		return nil, nil
	}
	return root, nil
}

// scalarKey identifies a scalar mapping key. The resolved tag is part of
// the identity so that, say, the integer 1 and the string "1" remain
// distinct keys, as they are for the stock decoder.
type scalarKey struct {
	tag   string
	value string
}

// checkDuplicateKeys walks the node tree and fails on the first mapping that
// repeats a scalar key. The stock decoder keeps the last occurrence, which
// would silently discard half of a conflicting debug configuration.
func checkDuplicateKeys(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		seen := make(map[scalarKey]struct{}, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind == yaml.ScalarNode {
				if _, ok := seen[scalarKey{tag: key.Tag, value: key.Value}]; ok {
					return &DuplicateKeyError{
						Key:           key.Value,
						Line:          key.Line,
						Column:        key.Column,
						MappingLine:   node.Line,
						MappingColumn: node.Column,
					}
				}
				seen[scalarKey{tag: key.Tag, value: key.Value}] = struct{}{}
			}
			if err := checkDuplicateKeys(node.Content[i+1]); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			if err := checkDuplicateKeys(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
