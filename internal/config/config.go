// Package config holds the engine's tunable options as a small registry of
// named descriptors, so the same defaults apply whether set by a command
// line flag at startup or by a UCI "setoption" at runtime.
package config

// Kind is a UCI option type (spin/check/string); combobox and button are
// not needed by any option this engine exposes.
type Kind int

const (
	Spin Kind = iota
	Check
	String
)

// Option describes one tunable setting and its UCI "option" advertisement.
type Option struct {
	Name    string
	Kind    Kind
	Default string
	Min     int
	Max     int
}

// Options holds the live values for every registered option, keyed by name.
type Options struct {
	HashMB  int
	Threads int
	EvalFile string
	UseNNUE bool
}

// Defaults returns the option set with its documented starting values.
func Defaults() Options {
	return Options{
		HashMB:  16,
		Threads: 1,
		EvalFile: "",
		UseNNUE: true,
	}
}

// Descriptors lists every option this engine advertises via "uci", in the
// order they're printed.
func Descriptors() []Option {
	return []Option{
		{Name: "Hash", Kind: Spin, Default: "16", Min: 1, Max: 4096},
		{Name: "Threads", Kind: Spin, Default: "1", Min: 1, Max: 512},
		{Name: "EvalFile", Kind: String, Default: ""},
		{Name: "UseNNUE", Kind: Check, Default: "true"},
	}
}
