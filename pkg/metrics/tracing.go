package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer traces a single method call. A nil tracer is valid and does
// nothing.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment

	// owned is set when the tracer started txn and must end it.
	owned bool
}

// TraceMethodCall starts tracing a method. Inside a transaction the call is
// a segment of it; otherwise, when ctx carries an application, the call gets
// a background transaction of its own.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	name := structOrPackageName + " " + methodName

	if txn := newrelic.FromContext(ctx); txn != nil {
		return &MethodTracer{
			txn: txn,
			seg: txn.StartSegment(name),
		}
	}

	app := fromContext(ctx)
	if app == nil {
		return nil
	}
	return &MethodTracer{
		txn:   app.StartTransaction(name),
		owned: true,
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	if t.seg != nil {
		t.seg.AddAttribute(key, value)
		return
	}
	t.txn.AddAttribute(key, value)
}

func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	for key, value := range attributes {
		t.AddAttribute(key, value)
	}
}

// OnError notices err on the transaction. nil errors are ignored.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	if t.seg != nil {
		t.seg.End()
	}
	if t.owned {
		t.txn.End()
	}
}
