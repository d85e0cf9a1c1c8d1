package tower

import "github.com/funvibe/tower/internal/typesystem"

// invokeResolver resolves `x(args)` as `x.invoke(args)`. The callee name is
// first resolved as a variable; every successful variable group then
// schedules the invoke operator lookup on the variable's value. All of it
// runs as separate tasks next to the main task.
type invokeResolver struct {
	session *session
}

func (r *invokeResolver) applies(call *Call) bool {
	return call.Kind == CallFunction
}

func (r *invokeResolver) enqueueForNoReceiver(call *Call) {
	if !r.applies(call) {
		return
	}
	variable := call.AsVariableAccess()
	r.enqueueReceiverTask(call, false, func(t *resolveTask) { t.runForNoReceiver(variable) })
}

func (r *invokeResolver) enqueueForQualifier(call *Call, q *QualifierReceiver) {
	if !r.applies(call) {
		return
	}
	variable := call.AsVariableAccess()
	r.enqueueReceiverTask(call, false, func(t *resolveTask) { t.runForQualifier(variable, q) })
}

// enqueueForExpression handles `a.x(args)`: either `a.x` is a value with an
// invoke operator, or `x` is a value of extension function type called
// with `a` as its receiver.
func (r *invokeResolver) enqueueForExpression(call *Call, receiver Receiver) {
	if !r.applies(call) {
		return
	}
	variable := call.AsVariableAccess()
	r.enqueueReceiverTask(call, false, func(t *resolveTask) { t.runForExpression(variable, receiver, EmptyRoot) })

	unbound := variable.WithReceiver(nil)
	r.enqueueReceiverTask(call, true, func(t *resolveTask) { t.runForNoReceiver(unbound) })
}

// enqueueReceiverTask schedules the variable lookup of the callee. With
// extension set, found values are invoked with the call's explicit receiver
// as first argument.
func (r *invokeResolver) enqueueReceiverTask(call *Call, extension bool, run func(t *resolveTask)) {
	s := r.session
	values := NewCollector(s.oracle)
	t := s.newTask(values, true)
	t.intercept = func(g Group) Group {
		if extension {
			g = InvokeExtension.Join(g)
		}
		return g.WithInvokePriority(InvokeReceiverPriority)
	}
	t.onSuccess = func(g Group) {
		for _, value := range values.Candidates() {
			r.enqueueInvoke(call, value, g, extension)
		}
		values.Reset()
	}
	t.enqueue(Start, func() { run(t) })
}

// enqueueInvoke schedules the lookup of the invoke operator on value,
// keyed after the group value was found at.
func (r *invokeResolver) enqueueInvoke(call *Call, value *Candidate, valueGroup Group, extension bool) {
	s := r.session
	if value.Symbol.Type == nil {
		return
	}
	fn, isFunc := value.Symbol.Type.(typesystem.TFunc)
	if extension && isFunc && fn.Receiver == nil {
		// A plain function value cannot take the explicit receiver.
		return
	}
	receiver := NewExpressionReceiver(value.Symbol.Name, value.Symbol.Type)
	invokeCall := call.WithName(s.cfg.InvokeName).WithReceiver(receiver)

	priority := CommonInvoke
	if extension {
		priority = InvokeExtensionPriority
	}
	base := valueGroup.WithInvokePriority(priority)

	t := s.newTask(s.collector, true)
	t.intercept = base.InvokeOn
	t.decorate = func(c *Candidate) { c.Invoked = value }

	if extension {
		// Values of extension function type take the receiver as first
		// argument; other values may declare `operator fun A.invoke()`.
		level := &MemberLevel{DispatchReceiver: receiver, ExtensionReceiver: call.ExplicitReceiver, ExtensionInvoke: isFunc}
		t.enqueue(base, func() { t.processLevel(level, invokeCall, Member, ExtensionReceiver, nil) })
		return
	}
	t.enqueue(base, func() { t.runForExpression(invokeCall, receiver, EmptyRoot) })
}
