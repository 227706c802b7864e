package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {
	t.Run("half_up", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"10.005", "10.01"},
			{"10.004", "10"},
			{"-10.005", "-10.01"},
			{"0.1", "0.1"},
			{"123.456", "123.46"},
		}
		for _, tc := range cases {
			in, _ := decimal.NewFromString(tc.in)
			want, _ := decimal.NewFromString(tc.want)
			if got := Round2(in); !got.Equal(want) {
				t.Errorf("Round2(%s) = %s, want %s", tc.in, got, want)
			}
		}
	})

	t.Run("point_one_plus_point_two", func(t *testing.T) {
		sum := decimal.NewFromFloat(0.1).Add(decimal.NewFromFloat(0.2))
		want, _ := decimal.NewFromString("0.3")
		if got := Round2(sum); !got.Equal(want) {
			t.Errorf("expected exactly 0.3, got %s", got)
		}
	})
}

func TestCentsConversion(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		for _, cents := range []int64{0, 1, -1, 99, 100, 123456789, -50} {
			if got := ToCents(FromCents(cents)); got != cents {
				t.Errorf("round trip of %d cents gave %d", cents, got)
			}
		}
	})

	t.Run("from_float_rounds", func(t *testing.T) {
		cases := []struct {
			in   float64
			want int64
		}{
			{1234.56, 123456},
			{0.1, 10},
			{10.005, 1001},
			{-5.25, -525},
		}
		for _, tc := range cases {
			if got := FromFloat(tc.in); got != tc.want {
				t.Errorf("FromFloat(%v) = %d, want %d", tc.in, got, tc.want)
			}
		}
	})

	t.Run("ten_percent_of_thousand_is_exact", func(t *testing.T) {
		amount := decimal.NewFromFloat(1000.00)
		tax := amount.Mul(decimal.NewFromFloat(0.10))
		if got := ToCents(tax); got != 10000 {
			t.Errorf("expected exactly 10000 cents, got %d", got)
		}
	})

	t.Run("repeated_additions_do_not_drift", func(t *testing.T) {
		total := decimal.Zero
		for i := 0; i < 1000; i++ {
			total = total.Add(decimal.NewFromFloat(0.10))
		}
		if got := ToCents(total); got != 10000 {
			t.Errorf("expected 1000 * 0.10 = 10000 cents, got %d", got)
		}
	})
}

func TestEqualWithin(t *testing.T) {
	t.Run("sub_epsilon_difference_is_equal", func(t *testing.T) {
		a := decimal.NewFromFloat(100.0)
		b := decimal.NewFromFloat(100.0005)
		if !EqualWithin(a, b) {
			t.Error("expected values within epsilon to compare equal")
		}
	})

	t.Run("one_cent_is_not_equal", func(t *testing.T) {
		if EqualWithin(FromCents(10000), FromCents(10001)) {
			t.Error("expected a one-cent difference to compare unequal")
		}
	})
}

func TestIsZero(t *testing.T) {
	if !IsZero(0) {
		t.Error("expected zero cents to be zero")
	}
	if IsZero(1) {
		t.Error("expected one cent to be non-zero")
	}
}
