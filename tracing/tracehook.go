package tracing

import "github.com/sarchlab/netsim/sim"

// A traceHook adapts the hook positions of a context into tracer calls.
type traceHook struct {
	tracer Tracer
}

// Func records message events.
func (h *traceHook) Func(ctx sim.HookCtx) {
	msg, ok := ctx.Item.(sim.Msg)
	if !ok {
		return
	}

	switch ctx.Pos {
	case sim.HookPosMsgSend:
		h.tracer.StartMsg(MsgTrace{
			ID:        msg.ID,
			Src:       uint64(msg.Src),
			Dst:       uint64(msg.Dst),
			Bytes:     int64(msg.TrafficBytes()),
			StartTime: wallclock(),
		})
	case sim.HookPosMsgRecv:
		h.tracer.EndMsg(MsgTrace{
			ID:      msg.ID,
			Outcome: OutcomeDelivered,
			EndTime: wallclock(),
		})
	case sim.HookPosMsgDrop:
		h.tracer.EndMsg(MsgTrace{
			ID:      msg.ID,
			Outcome: OutcomeDropped,
			EndTime: wallclock(),
		})
	}
}

// CollectMsgTrace subscribes tracer to every message event of the context.
func CollectMsgTrace(ctx *sim.Context, tracer Tracer) {
	ctx.AcceptHook(&traceHook{tracer: tracer})
}
