// Package command classifies Redis commands by their cache semantics and
// derives display-safe cache keys from command arguments.
package command

import "strings"

// Kind describes the cache semantics of a Redis command.
type Kind int

const (
	// StoreOnly commands are instrumented with a single store span.
	StoreOnly Kind = iota

	// CacheRead commands read whole values by key (GET, MGET).
	CacheRead

	// CacheWrite commands write whole values by key (SET, SETEX).
	CacheWrite
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case CacheRead:
		return "cache_read"
	case CacheWrite:
		return "cache_write"
	default:
		return "store_only"
	}
}

// Command is one intercepted client call. Args hold the positional
// arguments after the command name, in call order. Kwargs is reserved for
// commands that carry key material in named arguments; no command in the
// current table does.
type Command struct {
	Name   string
	Args   []interface{}
	Kwargs map[string]interface{}
}

// allKeys marks commands whose positional arguments are all keys.
const allKeys = -1

// descriptor records where a command keeps its keys and its written value.
type descriptor struct {
	kind     Kind
	keyArgs  int // leading positional args that are keys; allKeys for all of them
	valueArg int // position of the written value in Args; -1 for none
}

// commandTable is the source of truth for classification. It lists only
// commands with whole-key read/write semantics. Partial-field commands
// such as HGET stay StoreOnly: a field read cannot be equated to a
// whole-key hit or miss.
var commandTable = map[string]descriptor{
	"GET":   {kind: CacheRead, keyArgs: 1, valueArg: -1},
	"MGET":  {kind: CacheRead, keyArgs: allKeys, valueArg: -1},
	"SET":   {kind: CacheWrite, keyArgs: 1, valueArg: 1},
	"SETEX": {kind: CacheWrite, keyArgs: 1, valueArg: 2},
}

// Classify maps a command name to its cache semantics. Matching is
// case-insensitive. Unknown names are valid input and map to StoreOnly.
func Classify(name string) Kind {
	d, ok := commandTable[strings.ToUpper(name)]
	if !ok {
		return StoreOnly
	}
	return d.kind
}

// WrittenValue returns the value argument of a cache-write command, used
// to compute the written item size. The second return is false for
// non-write commands and for calls missing the value argument.
func WrittenValue(name string, args []interface{}) (interface{}, bool) {
	d, ok := commandTable[strings.ToUpper(name)]
	if !ok || d.valueArg < 0 || d.valueArg >= len(args) {
		return nil, false
	}
	return args[d.valueArg], true
}
