package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError describes a configuration value kacl cannot use.
type ValidationError struct {
	// Source is the config file path, "environment" or "configuration" for
	// the merged result.
	Source string
	// Key is the configuration key, or the environment variable name.
	Key string
	// Line and Column locate the problem inside a YAML file. Zero if unknown.
	Line   int
	Column int
	// Message says what is wrong.
	Message string
	// Hint suggests a fix.
	Hint string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	b.WriteString(": ")
	if e.Key != "" {
		b.WriteString(e.Key + ": ")
	}
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString(" (" + e.Hint + ")")
	}
	return b.String()
}

var yamlErrorPosition = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// checkFile validates a kacl YAML config file before koanf loads it: the
// document must be a mapping of known keys to single values that parse as
// the key's type. Missing and empty files are valid.
func checkFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ValidationError{Source: path, Message: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		ve := &ValidationError{Source: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		if m := yamlErrorPosition.FindStringSubmatch(err.Error()); m != nil {
			ve.Line, _ = strconv.Atoi(m[1])
			ve.Column = 1
			ve.Message = m[2]
		}
		return ve
	}
	if len(doc.Content) == 0 {
		return nil
	}

	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return &ValidationError{
			Source:  path,
			Line:    top.Line,
			Column:  top.Column,
			Message: "expected a mapping of configuration keys",
			Hint:    "see 'kacl config keys'",
		}
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		if err := checkEntry(path, top.Content[i], top.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func checkEntry(path string, key, value *yaml.Node) error {
	ve := &ValidationError{Source: path, Key: key.Value, Line: key.Line, Column: key.Column}

	schema, err := GetKeySchema(key.Value)
	if err != nil {
		ve.Message = "unknown configuration key"
		ve.Hint = "see 'kacl config keys'"
		if near := closestKey(key.Value); near != "" {
			ve.Hint = fmt.Sprintf("did you mean %q?", near)
		}
		return ve
	}

	switch {
	case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
		return nil
	case value.Kind != yaml.ScalarNode:
		ve.Line, ve.Column = value.Line, value.Column
		ve.Message = fmt.Sprintf("expected a single %s value", schema.Type)
		return ve
	}

	if _, err := validateAgainstSchema(schema, value.Value); err != nil {
		ve.Line, ve.Column = value.Line, value.Column
		ve.Message = err.Error()
		return ve
	}
	return nil
}

// closestKey returns the known key within two edits of name, if any.
func closestKey(name string) string {
	best, bestDist := "", 3
	for _, key := range SortedKeys() {
		if d := editDistance(strings.ToLower(name), key); d < bestDist {
			best, bestDist = key, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(b)]
}

var structValidator = newStructValidator()

// newStructValidator reports fields by their configuration key.
func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}

// validateValues checks the merged configuration against the struct rules.
func validateValues(cfg *Configuration) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Source: "configuration", Message: err.Error()}
	}

	fe := fieldErrs[0]
	key := fe.Field()
	ve := &ValidationError{Source: "configuration", Key: key}
	switch fe.Tag() {
	case "required":
		ve.Message = "must not be empty"
	case "oneof":
		ve.Message = "must be one of " + strings.Join(KnownKeys[key].AllowedValues, "|")
	case "min":
		ve.Message = "must be at least " + fe.Param()
	case "max":
		ve.Message = "must be at most " + fe.Param()
	default:
		ve.Message = "fails rule " + fe.Tag()
	}
	ve.Hint = KnownKeys[key].Description
	return ve
}
