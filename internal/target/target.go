// Package target defines the platform register/ABI data the ABI classifier
// (internal/abi) and inline-asm planner (internal/asmplan) read from,
// instead of hardcoding register lists inline. Data is loaded once from an
// embedded YAML document, mirroring the model-config loading pattern used
// elsewhere in this stack for small, rarely-changing reference tables.
package target

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var targetsYAML []byte

// Spec describes one compilation target's pointer width and physical
// register inventory.
type Spec struct {
	Name         string   `yaml:"name"`
	PointerBits  int      `yaml:"pointer_bits"`
	GPRs         []string `yaml:"gprs"`
	ArgIntRegs   []string `yaml:"arg_int_regs"`
	ArgFloatRegs []string `yaml:"arg_float_regs"`
}

type targetsFile struct {
	Targets []Spec `yaml:"targets"`
	Default string `yaml:"default"`
}

var (
	loaded  *targetsFile
	loadErr error
)

func load() (*targetsFile, error) {
	if loaded != nil || loadErr != nil {
		return loaded, loadErr
	}
	var tf targetsFile
	if err := yaml.Unmarshal(targetsYAML, &tf); err != nil {
		loadErr = fmt.Errorf("target: failed to parse embedded targets.yaml: %w", err)
		return nil, loadErr
	}
	loaded = &tf
	return loaded, nil
}

// Lookup returns the Spec for the named target ("linux-x86_64",
// "darwin-arm64").
func Lookup(name string) (*Spec, error) {
	tf, err := load()
	if err != nil {
		return nil, err
	}
	for i := range tf.Targets {
		if tf.Targets[i].Name == name {
			s := tf.Targets[i]
			return &s, nil
		}
	}
	return nil, fmt.Errorf("target: unknown target %q", name)
}

// Default returns the Spec for the embedded document's default target.
func Default() (*Spec, error) {
	tf, err := load()
	if err != nil {
		return nil, err
	}
	return Lookup(tf.Default)
}

// GPRGroup normalizes a register token to its physical-group name, e.g.
// "al"/"ax"/"eax"/"rax" all normalize to "rax" on linux-x86_64, and
// "w0"/"x0" normalize to "x0" on darwin-arm64. It consults the Spec's GPRs
// list for the canonical group names and falls back to returning tok
// unchanged if it already matches (or isn't a known sub-register alias),
// so callers can always use the result as a map key.
func (s *Spec) GPRGroup(tok string) string {
	if group, ok := amd64SubregGroups[tok]; ok {
		for _, g := range s.GPRs {
			if g == group {
				return group
			}
		}
	}
	if group, ok := arm64SubregGroups[tok]; ok {
		for _, g := range s.GPRs {
			if g == group {
				return group
			}
		}
	}
	for _, g := range s.GPRs {
		if g == tok {
			return tok
		}
	}
	return tok
}

// amd64SubregGroups maps every 8/16/32-bit x86-64 sub-register alias to its
// 64-bit physical group name.
var amd64SubregGroups = map[string]string{
	"al": "rax", "ax": "rax", "eax": "rax",
	"bl": "rbx", "bx": "rbx", "ebx": "rbx",
	"cl": "rcx", "cx": "rcx", "ecx": "rcx",
	"dl": "rdx", "dx": "rdx", "edx": "rdx",
	"sil": "rsi", "si": "rsi", "esi": "rsi",
	"dil": "rdi", "di": "rdi", "edi": "rdi",
	"bpl": "rbp", "bp": "rbp", "ebp": "rbp",
	"spl": "rsp", "sp": "rsp", "esp": "rsp",
	"r8b": "r8", "r8w": "r8", "r8d": "r8",
	"r9b": "r9", "r9w": "r9", "r9d": "r9",
	"r10b": "r10", "r10w": "r10", "r10d": "r10",
	"r11b": "r11", "r11w": "r11", "r11d": "r11",
	"r12b": "r12", "r12w": "r12", "r12d": "r12",
	"r13b": "r13", "r13w": "r13", "r13d": "r13",
	"r14b": "r14", "r14w": "r14", "r14d": "r14",
	"r15b": "r15", "r15w": "r15", "r15d": "r15",
}

// arm64SubregGroups maps every 32-bit ARM64 sub-register alias ("wN", the
// 32-bit view of "xN", plus "wsp" for "sp") to its 64-bit physical group
// name.
var arm64SubregGroups = map[string]string{
	"w0": "x0", "w1": "x1", "w2": "x2", "w3": "x3",
	"w4": "x4", "w5": "x5", "w6": "x6", "w7": "x7",
	"w8": "x8", "w9": "x9", "w10": "x10", "w11": "x11",
	"w12": "x12", "w13": "x13", "w14": "x14", "w15": "x15",
	"w16": "x16", "w17": "x17", "w18": "x18", "w19": "x19",
	"w20": "x20", "w21": "x21", "w22": "x22", "w23": "x23",
	"w24": "x24", "w25": "x25", "w26": "x26", "w27": "x27",
	"w28": "x28", "w29": "x29", "w30": "x30",
	"wsp": "sp",
}
