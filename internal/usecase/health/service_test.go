package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCatalogPinger struct {
	err error
}

func (m *mockCatalogPinger) Ping(_ context.Context) error { return m.err }

type mockInferenceChecker struct {
	err error
}

func (m *mockInferenceChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalogPinger{}, &mockInferenceChecker{}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["catalog"] != CheckOK {
		t.Errorf("expected catalog %q, got %q", CheckOK, r.Checks["catalog"])
	}
	if r.Checks["inference"] != CheckOK {
		t.Errorf("expected inference %q, got %q", CheckOK, r.Checks["inference"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_CatalogError(t *testing.T) {
	svc := New(&mockCatalogPinger{err: errors.New("conn refused")}, &mockInferenceChecker{}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["catalog"] != CheckError {
		t.Errorf("expected catalog %q, got %q", CheckError, r.Checks["catalog"])
	}
	if r.Checks["inference"] != CheckOK {
		t.Errorf("expected inference %q, got %q", CheckOK, r.Checks["inference"])
	}
}

func TestCheck_InferenceError(t *testing.T) {
	svc := New(&mockCatalogPinger{}, &mockInferenceChecker{err: errors.New("timeout")}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["inference"] != CheckError {
		t.Errorf("expected inference %q, got %q", CheckError, r.Checks["inference"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockCatalogPinger{err: errors.New("catalog down")},
		&mockInferenceChecker{err: errors.New("provider down")},
		&mockCachePinger{err: errors.New("cache down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["catalog"] != CheckError {
		t.Error("expected catalog error")
	}
	if r.Checks["inference"] != CheckError {
		t.Error("expected inference error")
	}
	if r.Checks["cache"] != CheckError {
		t.Error("expected cache error")
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockCatalogPinger{}, &mockInferenceChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}
