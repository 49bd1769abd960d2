package audio

import (
	"errors"
	"math"
	"testing"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectIndexError(t *testing.T, err error, index int) {
	t.Helper()
	var indexErr *IndexError
	if !errors.As(err, &indexErr) {
		t.Fatalf("expected IndexError, but got: %v", err)
	}
	expectEqual(t, indexErr.Index, index)
}

func expectConfigError(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, but got: %v", err)
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		expectEqual(t, configErr.Field, field)
	}
}
