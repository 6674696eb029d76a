package supervisor

import (
	"context"
	"strings"
	"sync"
)

// response is a scripted result of fakeRunner.
type response struct {
	output string
	err    error
}

// fakeRunner records invocations and replays responses keyed by the first argument.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []string
	responses map[string][]response
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: make(map[string][]response),
	}
}

func (f *fakeRunner) script(firstArg string, responses ...response) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[firstArg] = append(f.responses[firstArg], responses...)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name+" "+strings.Join(args, " "))

	if len(args) == 0 {
		return nil, nil
	}

	queue := f.responses[args[0]]
	if len(queue) == 0 {
		return nil, nil
	}

	next := queue[0]
	if len(queue) > 1 {
		f.responses[args[0]] = queue[1:]
	}

	return []byte(next.output), next.err
}

func (f *fakeRunner) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}
