package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClaimsTotal(t *testing.T) {
	before := testutil.ToFloat64(ClaimsTotal.WithLabelValues(ResultInvalidProof))
	ClaimsTotal.WithLabelValues(ResultInvalidProof).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ClaimsTotal.WithLabelValues(ResultInvalidProof)))
}

func TestCollectorsRegistered(t *testing.T) {
	// promauto registers against the default registry; a lint pass catches bad names
	problems, err := testutil.CollectAndLint(ClaimsTotal)
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
