package redistrace

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/redis-cache-trace/pkg/command"
	"github.com/Sternrassler/redis-cache-trace/pkg/tracing"
)

// tracingHook implements redis.Hook. Dialing passes through untouched;
// process hooks bracket the real call with span open/close.
type tracingHook struct {
	emitter  *tracing.Emitter
	endpoint EndpointFn
}

var _ redis.Hook = (*tracingHook)(nil)

func (h *tracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *tracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		call := h.emitter.Start(ctx, commandOf(cmd), h.resolveEndpoint())
		err := next(call.Context(), cmd)
		call.Finish(outcomeFor(cmd, err), callError(err))
		return err
	}
}

func (h *tracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		call := h.emitter.StartPipeline(ctx, pipelineSummary(cmds), h.resolveEndpoint())
		err := next(call.Context(), cmds)
		call.Finish(tracing.Outcome{}, callError(err))
		return err
	}
}

func (h *tracingHook) resolveEndpoint() *tracing.Endpoint {
	if h.endpoint == nil {
		return nil
	}
	return h.endpoint()
}

// commandOf converts a go-redis command into the classification input.
// Args()[0] is the command name itself.
func commandOf(cmd redis.Cmder) command.Command {
	args := cmd.Args()
	if len(args) <= 1 {
		return command.Command{Name: cmd.Name()}
	}
	return command.Command{Name: cmd.Name(), Args: args[1:]}
}

// callError filters redis.Nil: a missing key is a miss, not a failure.
func callError(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func pipelineSummary(cmds []redis.Cmder) string {
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	return strings.Join(names, ", ")
}
