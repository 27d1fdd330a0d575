// Package configuration loads migration definitions from YAML. Each entry is
// a call to a named factory; factories declare their parameters and nested
// calls are evaluated before the enclosing one.
package configuration
