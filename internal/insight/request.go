package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/innerlevel/internal/logger"
)

// State is the lifecycle of one insight request.
//
//	Pending -> InFlight -> Succeeded
//	                    -> Failed -> InFlight (retry) | terminal (fallback)
type State int

const (
	Pending State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	Pending:  {InFlight, Failed},
	InFlight: {Succeeded, Failed},
	Failed:   {InFlight},
}

// Reply is implemented by every typed reply. Fallback returns the static
// default used when the endpoint cannot provide one; Normalize clamps
// numeric fields into their documented ranges and replaces nil slices.
type Reply[T any] interface {
	Fallback() T
	Normalize() T
}

// Result is what every insight method returns. Err is the last failure
// seen and is for logs only; Reply is always usable.
type Result[T any] struct {
	Reply    T
	State    State
	Attempts int
	Degraded bool
	Err      error
}

type request struct {
	kind     Kind
	state    State
	attempts int
}

func (r *request) to(next State) {
	for _, allowed := range transitions[r.state] {
		if allowed == next {
			logger.Debug("Insight request transition", "kind", r.kind, "from", r.state, "to", next, "attempt", r.attempts)
			r.state = next
			return
		}
	}
	panic(fmt.Sprintf("insight: illegal transition %s -> %s", r.state, next))
}

// execute runs the retry loop for one prompt. Endpoint failures are retried
// with a linear backoff of Delay*attempt; a malformed reply or a cancelled
// context ends the loop at once.
func execute[T Reply[T]](ctx context.Context, c *Client, kind Kind, prompt string) (res Result[T]) {
	r := &request{kind: kind, state: Pending}
	var lastErr error

	defer func() {
		if p := recover(); p != nil {
			res = degraded[T](kind, r.attempts, fmt.Errorf("insight panic: %v", p))
		}
	}()

	for r.attempts < c.cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		r.attempts++
		r.to(InFlight)

		raw, err := c.generate(ctx, prompt)
		if err == nil {
			var reply T
			reply, err = decodeReply[T](raw)
			if err == nil {
				r.to(Succeeded)
				return Result[T]{Reply: reply.Normalize(), State: Succeeded, Attempts: r.attempts}
			}
		}
		r.to(Failed)
		lastErr = err

		var malformed *MalformedReplyError
		if errors.As(err, &malformed) {
			break
		}
		if r.attempts < c.cfg.MaxAttempts {
			if err := c.sleep(ctx, c.cfg.Delay*time.Duration(r.attempts)); err != nil {
				lastErr = err
				break
			}
		}
	}
	if r.state == Pending {
		r.to(Failed)
	}
	return degraded[T](kind, r.attempts, lastErr)
}

func degraded[T Reply[T]](kind Kind, attempts int, err error) Result[T] {
	logger.Warn("Insight degraded to default reply", "kind", kind, "attempts", attempts, "error", err)
	var zero T
	return Result[T]{
		Reply:    zero.Fallback(),
		State:    Failed,
		Attempts: attempts,
		Degraded: true,
		Err:      err,
	}
}

// Call is an insight request running in the background.
type Call[T Reply[T]] struct {
	kind Kind
	done chan struct{}
	res  Result[T]
}

// Dispatch starts call on its own goroutine. The call receives ctx, so
// cancelling ctx also ends the request.
func Dispatch[T Reply[T]](ctx context.Context, kind Kind, call func(context.Context) Result[T]) *Call[T] {
	p := &Call[T]{kind: kind, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.res = call(ctx)
	}()
	return p
}

// Await waits for the result. If ctx ends first the default reply is
// returned; the background request keeps running until its own context
// ends.
func (p *Call[T]) Await(ctx context.Context) Result[T] {
	select {
	case <-p.done:
		return p.res
	case <-ctx.Done():
		return degraded[T](p.kind, 0, ctx.Err())
	}
}

// Done is closed once the result is available.
func (p *Call[T]) Done() <-chan struct{} {
	return p.done
}
