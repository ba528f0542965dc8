package tip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRawAmount(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"5", 10, "50000000000"},
		{"0.5", 10, "5000000000"},
		{"1.25", 6, "1250000"},
		{"0.000001", 6, "1"},
		{"3", 12, "3000000000000"},
		{" 2 ", 0, "2"},
		{"1", 18, "1000000000000000000"},
		{"2.50", 1, "25"},
		{"1e2", 6, "100000000"},
	}
	for _, c := range cases {
		got, err := RawAmount(c.amount, c.decimals)
		require.NoError(t, err, c.amount)
		require.Equal(t, c.want, got, "%s @ %d", c.amount, c.decimals)

		back, err := FromRaw(got, c.decimals)
		require.NoError(t, err)
		want, err := ParseAmount(c.amount)
		require.NoError(t, err)
		require.True(t, want.Equal(back), "%s round trip gave %s", c.amount, back)
	}
}

func TestRawAmountRejects(t *testing.T) {
	for _, in := range []string{
		"", "x", "0", "-3", "0.0000001",
		"1e-200000000", "1e200000000", "1e37",
		"1" + strings.Repeat("0", 70),
	} {
		done := make(chan error, 1)
		go func() {
			_, err := RawAmount(in, 6)
			done <- err
		}()
		select {
		case err := <-done:
			require.Error(t, err, in)
			require.Equal(t, KindValidation, Classify(err), in)
		case <-time.After(2 * time.Second):
			t.Fatalf("RawAmount(%q) did not return", in)
		}
	}

	_, err := RawAmount("1", 37)
	require.Equal(t, KindValidation, Classify(err))
}

func TestParseAmountBoundsExponent(t *testing.T) {
	_, err := ParseAmount("1e-36")
	require.NoError(t, err)
	_, err = ParseAmount("1e-37")
	require.Equal(t, KindValidation, Classify(err))
}

func TestClassify(t *testing.T) {
	require.Equal(t, KindNone, Classify(nil))
	require.Equal(t, KindValidation, Classify(fmt.Errorf("wrap: %w", invalid("amount", "bad"))))
	require.Equal(t, KindConnectivity, Classify(fmt.Errorf("dial: %w", ErrConnectivity)))
	require.Equal(t, KindConnectivity, Classify(context.DeadlineExceeded))
	require.Equal(t, KindCancelled, Classify(context.Canceled))
	require.Equal(t, KindUnexpected, Classify(errors.New("boom")))

	require.True(t, Retryable(fmt.Errorf("dial: %w", ErrConnectivity)))
	require.True(t, Retryable(context.DeadlineExceeded))
	require.False(t, Retryable(errors.New("boom")))
	require.False(t, Retryable(invalid("amount", "bad")))
	require.False(t, Retryable(context.Canceled))
	require.False(t, Retryable(nil))

	require.Equal(t, "bad", Describe(invalid("amount", "bad")))
	require.Contains(t, Describe(errors.New("boom")), "draft is kept")
	require.Empty(t, Describe(nil))
}
