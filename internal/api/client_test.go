package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, secret string, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret != "" && r.Header.Get("Authorization") != "Bearer "+secret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, secret)
}

func TestClientSendsBearerSecret(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ConfigResponse{Mode: ModeRule})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s3cret")
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want Bearer s3cret", gotAuth)
	}
}

func TestClientUnauthorized(t *testing.T) {
	_, c := newTestServer(t, "right", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ConfigResponse{})
	})
	wrong := NewClient(c.BaseURL(), "wrong")

	err := wrong.Ping(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Ping with bad secret = %v, want ErrUnauthorized", err)
	}
}

func TestConfigAndSetMode(t *testing.T) {
	var patched map[string]string
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/configs":
			json.NewEncoder(w).Encode(ConfigResponse{MixedPort: 7890, Mode: ModeRule, LogLevel: "info"})
		case r.Method == http.MethodPatch && r.URL.Path == "/configs":
			json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	cfg, err := c.Config(context.Background())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.MixedPort != 7890 || cfg.Mode != ModeRule {
		t.Errorf("Config = %+v", cfg)
	}

	if err := c.SetMode(context.Background(), ModeGlobal); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if patched["mode"] != "global" {
		t.Errorf("PATCH body = %v, want mode=global", patched)
	}
}

func TestSwitchNode(t *testing.T) {
	var gotPath string
	var body map[string]string
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.EscapedPath()
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.SwitchNode(context.Background(), "Auto Select", "tokyo-01"); err != nil {
		t.Fatalf("SwitchNode: %v", err)
	}
	if gotPath != "/proxies/Auto%20Select" {
		t.Errorf("path = %q, want escaped group name", gotPath)
	}
	if body["name"] != "tokyo-01" {
		t.Errorf("body = %v, want name=tokyo-01", body)
	}
}

func TestSwitchNodeUnknownGroup(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := c.SwitchNode(context.Background(), "nope", "tokyo-01")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SwitchNode = %v, want ErrNotFound", err)
	}
}

func TestProbeLatency(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proxies/tokyo-01/delay" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("url") != "https://www.gstatic.com/generate_204" {
			t.Errorf("url param = %q", q.Get("url"))
		}
		if q.Get("timeout") != "5000" {
			t.Errorf("timeout param = %q, want 5000", q.Get("timeout"))
		}
		json.NewEncoder(w).Encode(DelayResponse{Delay: 142})
	})

	delay, err := c.ProbeLatency(context.Background(), "tokyo-01",
		"https://www.gstatic.com/generate_204", 5*time.Second)
	if err != nil {
		t.Fatalf("ProbeLatency: %v", err)
	}
	if delay != 142 {
		t.Errorf("delay = %d, want 142", delay)
	}
}

func TestProbeLatencyDaemonTimeout(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	_, err := c.ProbeLatency(context.Background(), "tokyo-01", "https://example.com", time.Second)
	if !IsTimeout(err) {
		t.Errorf("ProbeLatency = %v, want a timeout TransportError", err)
	}
}

func TestConnectionRefusedClassification(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, "")
	err := c.Ping(context.Background())
	if !IsUnreachable(err) {
		t.Errorf("Ping against a dead daemon = %v, want connection-refused TransportError", err)
	}
}

func TestMalformedResponse(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	_, err := c.Proxies(context.Background())
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindMalformed {
		t.Errorf("Proxies = %v, want malformed TransportError", err)
	}
}

func TestProxiesAndGroupDetection(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ProxiesResponse{Proxies: map[string]Proxy{
			"Auto Select": {Name: "Auto Select", Type: "Selector", Now: "tokyo-01", All: []string{"tokyo-01", "osaka-02"}},
			"tokyo-01":    {Name: "tokyo-01", Type: "Shadowsocks"},
			"DIRECT":      {Name: "DIRECT", Type: "Direct"},
		}})
	})

	resp, err := c.Proxies(context.Background())
	if err != nil {
		t.Fatalf("Proxies: %v", err)
	}
	group := resp.Proxies["Auto Select"]
	if !group.IsGroup() || group.Now != "tokyo-01" {
		t.Errorf("Auto Select = %+v, want selectable group", group)
	}
	if !resp.Proxies["tokyo-01"].IsTestable() {
		t.Error("leaf node should be testable")
	}
	if resp.Proxies["DIRECT"].IsTestable() {
		t.Error("DIRECT should not be testable")
	}
}

func TestConnectionsLifecycle(t *testing.T) {
	var deleted []string
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(ConnectionsResponse{
				DownloadTotal: 2048,
				UploadTotal:   512,
				Connections: []Connection{
					{ID: "c1", Rule: "DOMAIN-SUFFIX", Chains: []string{"Auto Select", "tokyo-01"}},
				},
			})
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	resp, err := c.Connections(context.Background())
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	if len(resp.Connections) != 1 || resp.DownloadTotal != 2048 {
		t.Errorf("Connections = %+v", resp)
	}

	if err := c.CloseConnection(context.Background(), "c1"); err != nil {
		t.Fatalf("CloseConnection: %v", err)
	}
	if err := c.CloseAllConnections(context.Background()); err != nil {
		t.Fatalf("CloseAllConnections: %v", err)
	}
	if len(deleted) != 2 || deleted[0] != "/connections/c1" || deleted[1] != "/connections" {
		t.Errorf("DELETE paths = %v", deleted)
	}
}

func TestStreamLogs(t *testing.T) {
	_, c := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("level") != "debug" {
			t.Errorf("level = %q, want debug", r.URL.Query().Get("level"))
		}
		f := w.(http.Flusher)
		enc := json.NewEncoder(w)
		enc.Encode(LogEntry{Type: "info", Payload: "proxy listening"})
		enc.Encode(LogEntry{Type: "warning", Payload: "dns fallback"})
		f.Flush()
	})

	out := make(chan LogEntry, 4)
	if err := c.StreamLogs(context.Background(), "debug", out); err != nil {
		t.Fatalf("StreamLogs: %v", err)
	}

	var entries []LogEntry
	for e := range out {
		entries = append(entries, e)
	}
	if len(entries) != 2 || entries[0].Payload != "proxy listening" || entries[1].Type != "warning" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestModeCycle(t *testing.T) {
	cases := []struct {
		in, want ProxyMode
	}{
		{ModeRule, ModeGlobal},
		{ModeGlobal, ModeDirect},
		{ModeDirect, ModeRule},
	}
	for _, tc := range cases {
		if got := tc.in.Next(); got != tc.want {
			t.Errorf("%s.Next() = %s, want %s", tc.in, got, tc.want)
		}
	}
}
