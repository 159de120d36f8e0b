package queries_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackOrderQuery(t *testing.T) {
	q, err := queries.NewTrackOrderQuery("  ORD-1001 ")
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	assert.Equal(t, "ORD-1001", q.Identifier())

	_, err = queries.NewTrackOrderQuery(" ")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
