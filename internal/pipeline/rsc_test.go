package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/normalize"
)

func TestHarvestBodyEnqueuesUnderApexName(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestBody("www.example.com", "see also mail.example.com for details")
	assert.Equal(t, 1, queue.Len())
}

func TestHarvestBodyIgnoresCandidateItself(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestBody("www.example.com", "www.example.com is up")
	assert.Equal(t, 0, queue.Len())
}

func TestHarvestBodyIgnoresDescendantOfCandidate(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestBody("www.example.com", "see api.www.example.com for details")
	assert.Equal(t, 0, queue.Len())
}

func TestHarvestBodyEnqueuesAncestorOfCandidate(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestBody("api.www.example.com", "see www.example.com for details")
	assert.Equal(t, 1, queue.Len())
}

func TestHarvestRedirectIgnoresApexRedirect(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestRedirect("foo.example.com", "http://example.com/login")
	assert.Equal(t, 0, queue.Len())
}

func TestHarvestRedirectEnqueuesUnderApexDifferentHost(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestRedirect("foo.example.com", "http://bar.example.com/path")
	assert.Equal(t, 1, queue.Len())
}

func TestHarvestRedirectIgnoresOutsideApex(t *testing.T) {
	queue := model.NewDiscoveryQueue()
	p := &RscPipeline{Apex: "example.com", Queue: queue}
	p.harvestRedirect("foo.example.com", "http://evil.net/")
	assert.Equal(t, 0, queue.Len())
}

func TestRunOneAdmitsOnLowRatio(t *testing.T) {
	body := "a distinct real page body with enough unique content to diverge sharply from any sink page"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	host := srv.Listener.Addr().String()
	baseline := normalize.Body("short sink")
	state := &model.WildcardState{
		BaselineHTML3: baseline,
		BaselineLen3:  len(baseline),
	}
	admit := model.NewAdmitSet()
	p := New("example.com", state, admit, nil, nil, nil)
	p.Client = srv.Client()

	normalized := normalize.Body(body)
	require.NotEqual(t, len(normalized), len(baseline), "test fixture must not trigger the length-equality shortcut")
	require.LessOrEqual(t, QuickRatio(normalized, baseline), RatioThreshold)

	result := p.runOne(context.Background(), host)
	require.NoError(t, result.Err)
	assert.True(t, result.Admitted)
	assert.True(t, admit.Has(host))
}
