package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	before := testutil.ToFloat64(RowsTotal.WithLabelValues("mapping"))
	RowsTotal.WithLabelValues("mapping").Add(3)
	require.Equal(t, before+3, testutil.ToFloat64(RowsTotal.WithLabelValues("mapping")))

	path := filepath.Join(t.TempDir(), "vnadmin.prom")
	require.NoError(t, WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `vnadmin_rows_total{pipeline="mapping"}`)
}
