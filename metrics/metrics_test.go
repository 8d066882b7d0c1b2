package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncSeek("click")
	m.IncSeek("loop")
	m.IncSeek("loop")
	m.IncMoves()
	m.IncSnaps()
	m.AddClicks(4)
	m.SetKeyframes(7)

	if got := testutil.ToFloat64(m.seeksTotal.WithLabelValues("loop")); got != 2 {
		t.Errorf("loop seeks = %v", got)
	}
	if got := testutil.ToFloat64(m.clicksTotal); got != 4 {
		t.Errorf("clicks = %v", got)
	}
	if got := testutil.ToFloat64(m.keyframes); got != 7 {
		t.Errorf("keyframes = %v", got)
	}
}

func TestRouterServesMetrics(t *testing.T) {
	m := New()
	m.IncAdds()
	m.IncResolution("half-beat")

	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"formation_keyframe_adds_total 1",
		`formation_snap_resolution_changes_total{resolution="half-beat"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}

	resp2, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp2.StatusCode)
	}
}
