package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

type Report struct {
	Kind   string
	Id     string
	Params []any
}

// TestAPI records every report so tests can assert that a component
// reported (or did not report) breakage.
type TestAPI struct {
	t       testing.TB
	mutex   sync.Mutex
	reports []Report
}

func NewTestAPI(t testing.TB) *TestAPI {
	return &TestAPI{t: t}
}

func (a *TestAPI) record(kind, id string, params []any) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.reports = append(a.reports, Report{Kind: kind, Id: id, Params: params})
	if a.t != nil {
		a.t.Logf("[%s] %s %s", kind, id, fmt.Sprint(params...))
	}
}

func (a *TestAPI) ReportBroken(id string, params ...any) {
	a.record(kind_broken, id, params)
}

func (a *TestAPI) ReportWarning(id string, params ...any) {
	a.record(kind_warning, id, params)
}

func (a *TestAPI) ReportDebug(msg string, params ...any) {
	a.record("debug", msg, params)
}

func (a *TestAPI) ReportCount(id string, count int64) {
	a.record("count", id, []any{count})
}

// Reports returns the reports of a given kind ("broken", "warning", "debug",
// "count") whose id contains idPart.
func (a *TestAPI) Reports(kind, idPart string) []Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var out []Report
	for _, r := range a.reports {
		if r.Kind == kind && strings.Contains(r.Id, idPart) {
			out = append(out, r)
		}
	}
	return out
}

func (a *TestAPI) Broken() []Report {
	return a.Reports(kind_broken, "")
}
