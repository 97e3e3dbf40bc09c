package fleet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/muurk/wledctl/internal/config"
	"github.com/muurk/wledctl/internal/discovery"
	"github.com/muurk/wledctl/internal/logging"
	"github.com/muurk/wledctl/internal/wled"
)

// fakeProvider returns a fixed device list and counts calls
type fakeProvider struct {
	devices []discovery.Device
	err     error
	calls   int
}

func (p *fakeProvider) Discover(ctx context.Context) ([]discovery.Device, error) {
	p.calls++
	return p.devices, p.err
}

// fakeClient answers every request with 200 unless the host is listed in
// status; transport lists hosts that are unreachable.
type fakeClient struct {
	mu        sync.Mutex
	status    map[string]int
	transport map[string]bool
	urls      []string
}

func (c *fakeClient) respond(host, url string) wled.Result {
	c.mu.Lock()
	c.urls = append(c.urls, url)
	c.mu.Unlock()

	if c.transport[host] {
		return wled.Classify(host, 0, errors.New("dial tcp: connection refused"))
	}
	if code, ok := c.status[host]; ok {
		return wled.Classify(host, code, nil)
	}
	return wled.Classify(host, 200, nil)
}

func (c *fakeClient) Download(ctx context.Context, host, url, dest string) wled.Result {
	result := c.respond(host, url)
	if result.OK() {
		if err := os.WriteFile(dest, []byte(`{}`), 0644); err != nil {
			return wled.Classify(host, 0, err)
		}
	}
	return result
}

func (c *fakeClient) UploadFirmware(ctx context.Context, host, url, firmwarePath string) wled.Result {
	return c.respond(host, url)
}

func newTestRunner(t *testing.T, opts config.Options, provider discovery.Provider, client DeviceClient) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	logs := &bytes.Buffer{}
	logger, err := logging.New(logging.Options{Quiet: opts.Quiet, Level: "info", Output: zapcore.AddSync(logs)})
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	return &Runner{
		Options:  opts,
		Provider: provider,
		Client:   client,
		Logger:   logger,
		Out:      out,
	}, logs, out
}

// lineContaining returns the first line of out containing substr.
func lineContaining(out, substr string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

var twoDevices = []discovery.Device{
	{Hostname: "livingroom", Address: "10.0.0.5", Port: 80},
	{Hostname: "kitchen", Address: "10.0.0.6", Port: 80},
}

func TestTargets_TargetWinsOverDiscover(t *testing.T) {
	provider := &fakeProvider{devices: twoDevices}
	r, _, _ := newTestRunner(t, config.Options{Target: "192.168.1.50", Discover: true}, provider, &fakeClient{})

	devices, err := r.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("discovery invoked %d times, want 0", provider.calls)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
	want := discovery.Device{Hostname: "192.168.1.50", Address: "192.168.1.50", Port: 80}
	if devices[0].Hostname != want.Hostname || devices[0].Address != want.Address || devices[0].Port != want.Port {
		t.Errorf("device = %+v, want %+v", devices[0], want)
	}
}

func TestTargets_NoTarget(t *testing.T) {
	r, _, _ := newTestRunner(t, config.Options{}, &fakeProvider{}, &fakeClient{})

	_, err := r.Targets(context.Background())
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("Targets() error = %v, want ErrNoTarget", err)
	}
}

func TestTargets_DiscoveryUnavailable(t *testing.T) {
	provider := &fakeProvider{err: &discovery.UnavailableError{Backend: discovery.BackendAvahi, Reason: "avahi-browse not found"}}
	r, _, _ := newTestRunner(t, config.Options{Discover: true}, provider, &fakeClient{})

	_, err := r.Targets(context.Background())
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("Targets() error = %v, want PreconditionError", err)
	}
	if !strings.Contains(err.Error(), "avahi-browse") {
		t.Errorf("error %q should name the missing tool", err)
	}
}

func TestBackup_DiscoveredDevices(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	client := &fakeClient{}
	r, logs, _ := newTestRunner(t, config.Options{Discover: true, Directory: dir}, &fakeProvider{devices: twoDevices}, client)

	summary, err := r.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if summary.Attempted != 2 || len(summary.Failed) != 0 {
		t.Errorf("summary = %+v", summary)
	}

	for _, name := range []string{"livingroom.cfg.json", "livingroom.presets.json", "kitchen.cfg.json", "kitchen.presets.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	wantURLs := []string{
		"http://10.0.0.5:80/cfg.json",
		"http://10.0.0.5:80/presets.json",
		"http://10.0.0.6:80/cfg.json",
		"http://10.0.0.6:80/presets.json",
	}
	if strings.Join(client.urls, ",") != strings.Join(wantURLs, ",") {
		t.Errorf("requests = %v, want %v", client.urls, wantURLs)
	}

	if line := lineContaining(logs.String(), "2 of 2 devices succeeded"); !strings.HasPrefix(line, "INFO") {
		t.Errorf("summary line = %q, want INFO", line)
	}
}

func TestBackup_FailureDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{transport: map[string]bool{"livingroom": true}}
	r, logs, _ := newTestRunner(t, config.Options{Discover: true, Directory: dir}, &fakeProvider{devices: twoDevices}, client)

	summary, err := r.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup() error = %v, per-device failures must not be returned", err)
	}
	if summary.Attempted != 2 || len(summary.Failed) != 1 || summary.Failed[0] != "livingroom" {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := os.Stat(filepath.Join(dir, "kitchen.cfg.json")); err != nil {
		t.Errorf("kitchen backup missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "livingroom.cfg.json")); !os.IsNotExist(err) {
		t.Errorf("livingroom.cfg.json should not exist (err = %v)", err)
	}

	out := logs.String()
	if !strings.Contains(out, "livingroom") || !strings.Contains(out, "ERROR") {
		t.Errorf("expected an error line for livingroom: %q", out)
	}
	summaryLine := lineContaining(out, "1 of 2 devices succeeded")
	if !strings.HasPrefix(summaryLine, "ERROR") {
		t.Errorf("summary with failures should be an ERROR line, got %q", summaryLine)
	}
	if strings.Contains(out, "WARN") {
		t.Errorf("output has a WARN line: %q", out)
	}
}

func TestBackup_SingleTarget(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{devices: twoDevices}
	client := &fakeClient{}
	r, logs, _ := newTestRunner(t, config.Options{Target: "192.168.1.50", Directory: dir}, provider, client)

	if _, err := r.Backup(context.Background()); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if provider.calls != 0 {
		t.Error("discovery should not run when a target is given")
	}
	for _, name := range []string{"192.168.1.50.cfg.json", "192.168.1.50.presets.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	if strings.Contains(logs.String(), "devices succeeded") {
		t.Errorf("single target should not log a batch summary: %q", logs.String())
	}

	wantURLs := []string{"http://192.168.1.50:80/cfg.json", "http://192.168.1.50:80/presets.json"}
	if strings.Join(client.urls, ",") != strings.Join(wantURLs, ",") {
		t.Errorf("requests = %v, want %v", client.urls, wantURLs)
	}
}

func TestBackup_NoDevicesFound(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{}
	r, _, _ := newTestRunner(t, config.Options{Discover: true, Directory: dir}, &fakeProvider{}, client)

	summary, err := r.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if summary.Attempted != 0 || len(client.urls) != 0 {
		t.Errorf("summary = %+v, requests = %v", summary, client.urls)
	}
}

func TestBackup_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{}
	r, _, _ := newTestRunner(t, config.Options{Discover: true, Directory: t.TempDir()}, &fakeProvider{devices: twoDevices}, client)

	_, err := r.Backup(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Backup() error = %v, want context.Canceled", err)
	}
	if len(client.urls) != 0 {
		t.Errorf("requests made after cancel: %v", client.urls)
	}
}

func TestUpdate_MissingFirmwareChecksFirst(t *testing.T) {
	provider := &fakeProvider{devices: twoDevices}
	client := &fakeClient{}
	r, _, _ := newTestRunner(t, config.Options{Discover: true, FirmwarePath: filepath.Join(t.TempDir(), "missing.bin")}, provider, client)

	_, err := r.Update(context.Background())
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("Update() error = %v, want PreconditionError", err)
	}
	if provider.calls != 0 || len(client.urls) != 0 {
		t.Errorf("no discovery or requests expected: calls=%d urls=%v", provider.calls, client.urls)
	}
}

func TestUpdate_CheckedBeforeTarget(t *testing.T) {
	r, _, _ := newTestRunner(t, config.Options{}, &fakeProvider{}, &fakeClient{})

	_, err := r.Update(context.Background())
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Errorf("Update() error = %v, want PreconditionError before ErrNoTarget", err)
	}
}

func TestUpdate_ServerErrorIsolated(t *testing.T) {
	fw := filepath.Join(t.TempDir(), "WLED_0.15.0_ESP32.bin")
	if err := os.WriteFile(fw, []byte("\xe9"), 0644); err != nil {
		t.Fatal(err)
	}

	client := &fakeClient{status: map[string]int{"kitchen": 500}}
	r, logs, _ := newTestRunner(t, config.Options{Discover: true, FirmwarePath: fw}, &fakeProvider{devices: twoDevices}, client)

	summary, err := r.Update(context.Background())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(summary.Failed) != 1 || summary.Failed[0] != "kitchen" {
		t.Errorf("summary = %+v", summary)
	}

	wantURLs := []string{"http://10.0.0.5:80/update", "http://10.0.0.6:80/update"}
	if strings.Join(client.urls, ",") != strings.Join(wantURLs, ",") {
		t.Errorf("requests = %v, want %v", client.urls, wantURLs)
	}
	if !strings.Contains(logs.String(), "HTTP 500") {
		t.Errorf("expected HTTP 500 in output: %q", logs.String())
	}
}

func TestDiscover_Listing(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{
			name:  "quiet prints bare hostnames",
			quiet: true,
			want:  "livingroom\nkitchen\n",
		},
		{
			name: "normal prints hostname and endpoint",
			want: "livingroom               10.0.0.5:80\nkitchen                  10.0.0.6:80\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, out := newTestRunner(t, config.Options{Discover: true, Quiet: tt.quiet}, &fakeProvider{devices: twoDevices}, &fakeClient{})

			if err := r.Discover(context.Background()); err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestDiscover_NothingFound(t *testing.T) {
	r, _, out := newTestRunner(t, config.Options{Quiet: true}, &fakeProvider{}, &fakeClient{})

	if err := r.Discover(context.Background()); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want empty", out.String())
	}
}

func TestErrorMessages(t *testing.T) {
	argErr := &ArgumentError{Flag: "--target", Reason: "requires a value"}
	if argErr.Error() != "--target: requires a value" {
		t.Errorf("ArgumentError = %q", argErr.Error())
	}

	preErr := &PreconditionError{What: "firmware", Err: os.ErrNotExist}
	if !errors.Is(preErr, os.ErrNotExist) {
		t.Error("PreconditionError should unwrap to its cause")
	}
}

func TestDiscover_DebugListsDevices(t *testing.T) {
	logs := &bytes.Buffer{}
	logger, err := logging.New(logging.Options{Level: "debug", Output: zapcore.AddSync(logs)})
	if err != nil {
		t.Fatal(err)
	}

	r := &Runner{
		Options:  config.Options{Discover: true},
		Provider: &fakeProvider{devices: twoDevices},
		Client:   &fakeClient{},
		Logger:   logger,
		Out:      &bytes.Buffer{},
	}
	if _, err := r.Targets(context.Background()); err != nil {
		t.Fatalf("Targets() error = %v", err)
	}

	for _, want := range []string{"livingroom (10.0.0.5:80)", "kitchen (10.0.0.6:80)"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("debug output missing %q: %q", want, logs.String())
		}
	}
}
