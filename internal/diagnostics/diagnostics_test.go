package diagnostics_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lezbar/strf/internal/diagnostics"
)

func TestSinkRoutesAboveLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	sink := diagnostics.NewSink(&buf, "warn")
	sink.Debugf("should not appear")
	sink.Warnf("satno %d unreachable", 12345)
	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "12345")
}

func TestDiscardSinkAcceptsCalls(t *testing.T) {
	diagnostics.Discard.Warnf("anything")
	diagnostics.Discard.Errorf("anything")
}
