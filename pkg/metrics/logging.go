package metrics

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogFormatter is a logrus.Formatter that forwards each entry to New Relic,
// fields included, and appends New Relic linking metadata to the line
// produced by the wrapped formatter.
type LogFormatter struct {
	app  *newrelic.Application
	next logrus.Formatter
}

func NewLogFormatter(app *newrelic.Application, next logrus.Formatter) *LogFormatter {
	return &LogFormatter{
		app:  app,
		next: next,
	}
}

func (f *LogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	line, err := f.next.Format(e)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(bytes.TrimRight(line, "\n"))

	data := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	if txn != nil {
		txn.RecordLog(data)
		err = newrelic.EnrichLog(buf, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(data)
		err = newrelic.EnrichLog(buf, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// forwardedMessage renders an entry as its message followed by its fields,
// sorted by key.
func forwardedMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Message)
	for _, k := range keys {
		value := e.Data[k]
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		fmt.Fprintf(&b, " %s=%q", k, fmt.Sprint(value))
	}
	return b.String()
}
