package quotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNumbererRestartsDaily(t *testing.T) {
	now := time.Date(2026, 10, 7, 8, 30, 0, 0, time.UTC)
	n := &Numberer{Now: func() time.Time { return now }}

	number, date := n.Next()
	require.Equal(t, "07102026001", number)
	require.Equal(t, "2026-10-07", date)

	number, _ = n.Next()
	require.Equal(t, "07102026002", number)

	now = now.Add(24 * time.Hour)
	number, date = n.Next()
	require.Equal(t, "08102026001", number)
	require.Equal(t, "2026-10-08", date)
}
