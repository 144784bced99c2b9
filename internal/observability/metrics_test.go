package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetchCountsByStatus(t *testing.T) {
	before := testutil.ToFloat64(VendorFetchTotal.WithLabelValues("social", "degraded"))
	ObserveFetch("social", "degraded", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(VendorFetchTotal.WithLabelValues("social", "degraded")))
}

func TestObserveReportOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("error"))

	ObserveReport(nil, time.Millisecond)
	ObserveReport(errors.New("boom"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("error")))
}
