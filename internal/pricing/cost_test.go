package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNights(t *testing.T) {
	cases := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"two nights", day("2025-06-01"), day("2025-06-03"), 2},
		{"same day floors to one", day("2025-06-01"), day("2025-06-01"), 1},
		{"inverted floors to one", day("2025-06-03"), day("2025-06-01"), 1},
		{"partial day rounds up", day("2025-06-01"), day("2025-06-02").Add(3 * time.Hour), 2},
		{"beyond duration range", day("2026-06-01"), day("9999-12-31"), 2912291},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Nights(tc.in, tc.out))
		})
	}
}

func TestHotelLineCost(t *testing.T) {
	// rent 10000, 2 rooms, 2 nights
	h := HotelLine{RentCents: 10000, Rooms: 2, CheckIn: day("2025-06-01"), CheckOut: day("2025-06-03")}
	cost, err := h.Cost()
	require.NoError(t, err)
	assert.Equal(t, int64(40000), cost)

	for _, nights := range []int{0, -3} {
		cost, err = HotelLineCost(500, 1, nights)
		require.NoError(t, err)
		assert.Equal(t, int64(500), cost)
	}
}

func TestLineCostOverflow(t *testing.T) {
	_, err := TransportLine{FareCents: 5_000_000_000, Seats: math.MaxInt32}.Cost()
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = HotelLineCost(1_000_000, math.MaxInt32, 10_000)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FoodLineCost(math.MaxInt64, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FoodLineCost(-1, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	cost, err := FoodLineCost(math.MaxInt64, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), cost)
}

func TestSummarizeOverflow(t *testing.T) {
	l := Lines{Food: []FoodLine{
		{PriceCents: math.MaxInt64 - 10, Quantity: 1},
		{PriceCents: 11, Quantity: 1},
	}}
	_, err := Summarize(l)
	assert.ErrorIs(t, err, ErrOverflow)

	l = Lines{
		Transport: []TransportLine{{FareCents: math.MaxInt64, Seats: 1}},
		Food:      []FoodLine{{PriceCents: 1, Quantity: 1}},
	}
	_, err = Total(l)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestTransportAndFoodLineCost(t *testing.T) {
	cost, err := TransportLineCost(2500, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), cost)

	cost, err = FoodLineCost(400, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), cost)

	cost, err = FoodLineCost(400, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cost)
}

func TestSummarize(t *testing.T) {
	l := Lines{
		Hotels: []HotelLine{
			{RentCents: 10000, Rooms: 2, CheckIn: day("2025-06-01"), CheckOut: day("2025-06-03")},
			{RentCents: 5000, Rooms: 1, CheckIn: day("2025-06-03"), CheckOut: day("2025-06-03")},
		},
		Transport: []TransportLine{{FareCents: 2500, Seats: 2}},
		Food:      []FoodLine{{PriceCents: 800, Quantity: 1}, {PriceCents: 200, Quantity: 4}},
	}
	b, err := Summarize(l)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), b.HotelsCents)
	assert.Equal(t, int64(5000), b.TransportCents)
	assert.Equal(t, int64(1600), b.FoodCents)
	assert.Equal(t, int64(51600), b.TotalCents)
	total, err := Total(l)
	require.NoError(t, err)
	assert.Equal(t, b.TotalCents, total)
}

func TestEmpty(t *testing.T) {
	assert.True(t, Lines{}.Empty())
	assert.False(t, Lines{Food: []FoodLine{{PriceCents: 1, Quantity: 1}}}.Empty())
	total, err := Total(Lines{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
