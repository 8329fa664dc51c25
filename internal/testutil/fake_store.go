package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FakeStore is an in-memory stand-in for a Redis server, usable as the
// next function of a process hook. It implements just enough of
// GET/MGET/SET/SETEX/HGET/HSET semantics for hit/miss testing.
type FakeStore struct {
	mu     sync.Mutex
	values map[string]string
	fields map[string]map[string]string

	// FailWith, when set, makes every subsequent call fail with this error.
	FailWith error

	// CallCount tracks how many commands reached the store.
	CallCount int
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		values: make(map[string]string),
		fields: make(map[string]map[string]string),
	}
}

// Process executes one command against the in-memory store, filling the
// command's result the way a real connection would.
func (s *FakeStore) Process(ctx context.Context, cmd redis.Cmder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCount++

	if s.FailWith != nil {
		cmd.SetErr(s.FailWith)
		return s.FailWith
	}

	args := cmd.Args()
	switch strings.ToUpper(cmd.Name()) {
	case "GET":
		if len(args) < 2 {
			break
		}
		val, ok := s.values[argString(args[1])]
		if !ok {
			cmd.SetErr(redis.Nil)
			return redis.Nil
		}
		setStringResult(cmd, val)

	case "MGET":
		vals := make([]interface{}, 0, len(args)-1)
		for _, a := range args[1:] {
			if v, ok := s.values[argString(a)]; ok {
				vals = append(vals, v)
			} else {
				vals = append(vals, nil)
			}
		}
		if c, ok := cmd.(*redis.SliceCmd); ok {
			c.SetVal(vals)
		}

	case "SET":
		if len(args) < 3 {
			break
		}
		s.values[argString(args[1])] = argString(args[2])
		setStatusResult(cmd, "OK")

	case "SETEX":
		if len(args) < 4 {
			break
		}
		s.values[argString(args[1])] = argString(args[3])
		setStatusResult(cmd, "OK")

	case "HSET":
		if len(args) < 4 {
			break
		}
		key := argString(args[1])
		if s.fields[key] == nil {
			s.fields[key] = make(map[string]string)
		}
		s.fields[key][argString(args[2])] = argString(args[3])

	case "HGET":
		if len(args) < 3 {
			break
		}
		val, ok := s.fields[argString(args[1])][argString(args[2])]
		if !ok {
			cmd.SetErr(redis.Nil)
			return redis.Nil
		}
		setStringResult(cmd, val)
	}

	return nil
}

func setStringResult(cmd redis.Cmder, val string) {
	switch c := cmd.(type) {
	case *redis.StringCmd:
		c.SetVal(val)
	case *redis.Cmd:
		c.SetVal(val)
	}
}

func setStatusResult(cmd redis.Cmder, val string) {
	switch c := cmd.(type) {
	case *redis.StatusCmd:
		c.SetVal(val)
	case *redis.Cmd:
		c.SetVal(val)
	}
}

func argString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}
