package catalog

import (
	"errors"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{400, KindBadRequest},
		{401, KindBadRequest},
		{404, KindNotFound},
		{429, KindBadRequest},
		{500, KindServerUnavailable},
		{503, KindServerUnavailable},
	}

	for _, tc := range cases {
		if got := classifyStatus(tc.status); got != tc.want {
			t.Fatalf("classifyStatus(%d) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestFallbackEligibility(t *testing.T) {
	eligible := []ErrorKind{KindNotFound, KindServerUnavailable, KindUnreachable}
	for _, kind := range eligible {
		if !kind.FallbackEligible() {
			t.Fatalf("%s should be fallback eligible", kind)
		}
	}

	terminal := []ErrorKind{KindBadRequest, KindAllSourcesExhausted}
	for _, kind := range terminal {
		if kind.FallbackEligible() {
			t.Fatalf("%s should not be fallback eligible", kind)
		}
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := transportError("catalog request failed", inner)

	if !errors.Is(err, inner) {
		t.Fatalf("expected Unwrap to expose inner error")
	}
	if err.Kind != KindUnreachable {
		t.Fatalf("transport error kind = %s", err.Kind)
	}
}
