package redistrace

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/redis-cache-trace/pkg/command"
	"github.com/Sternrassler/redis-cache-trace/pkg/tracing"
)

// outcomeFor inspects a completed command for hit/miss and payload size.
// Anything undeterminable stays absent rather than defaulting.
func outcomeFor(cmd redis.Cmder, err error) tracing.Outcome {
	switch command.Classify(cmd.Name()) {
	case command.CacheRead:
		return readOutcome(cmd, err)
	case command.CacheWrite:
		return writeOutcome(cmd)
	default:
		return tracing.Outcome{}
	}
}

func readOutcome(cmd redis.Cmder, err error) tracing.Outcome {
	if errors.Is(err, redis.Nil) {
		return tracing.Outcome{HitKnown: true}
	}
	if err != nil {
		return tracing.Outcome{}
	}

	switch c := cmd.(type) {
	case *redis.StringCmd:
		return stringOutcome(c.Val())
	case *redis.SliceCmd:
		return sliceOutcome(c.Val())
	case *redis.Cmd:
		switch v := c.Val().(type) {
		case nil:
			return tracing.Outcome{HitKnown: true}
		case string:
			return stringOutcome(v)
		case []interface{}:
			return sliceOutcome(v)
		}
	}
	return tracing.Outcome{}
}

// stringOutcome reports the hit/size of a single-key read. A present but
// empty value counts as a miss: an empty entry serves nothing.
func stringOutcome(val string) tracing.Outcome {
	if val == "" {
		return tracing.Outcome{HitKnown: true}
	}
	return tracing.Outcome{Hit: true, HitKnown: true, ItemSize: len(val), SizeKnown: true}
}

// sliceOutcome applies the multi-key rule: a hit only when every requested
// key came back non-empty, size as the sum of the returned values. Partial
// or empty results report a miss with no size.
func sliceOutcome(vals []interface{}) tracing.Outcome {
	if len(vals) == 0 {
		return tracing.Outcome{}
	}

	size, sizeKnown := 0, true
	for _, v := range vals {
		if v == nil {
			return tracing.Outcome{HitKnown: true}
		}
		n, ok := byteSize(v)
		if ok && n == 0 {
			return tracing.Outcome{HitKnown: true}
		}
		if !ok {
			sizeKnown = false
			continue
		}
		size += n
	}

	out := tracing.Outcome{Hit: true, HitKnown: true}
	if sizeKnown {
		out.ItemSize, out.SizeKnown = size, true
	}
	return out
}

func writeOutcome(cmd redis.Cmder) tracing.Outcome {
	args := cmd.Args()
	if len(args) < 2 {
		return tracing.Outcome{}
	}
	v, ok := command.WrittenValue(cmd.Name(), args[1:])
	if !ok {
		return tracing.Outcome{}
	}
	if n, ok := byteSize(v); ok {
		return tracing.Outcome{ItemSize: n, SizeKnown: true}
	}
	return tracing.Outcome{}
}

// byteSize reports the concrete byte length of a value when it has one.
func byteSize(v interface{}) (int, bool) {
	switch s := v.(type) {
	case string:
		return len(s), true
	case []byte:
		return len(s), true
	default:
		return 0, false
	}
}
