package reports

import "testing"

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		count    int32
		expected StockStatus
	}{
		{0, StockOut},
		{1, StockLow},
		{5, StockLow},
		{6, StockMedium},
		{20, StockMedium},
		{21, StockHigh},
		{500, StockHigh},
	}
	for _, tc := range cases {
		if got := ClassifyStock(tc.count); got != tc.expected {
			t.Errorf("ClassifyStock(%d) = %s, want %s", tc.count, got, tc.expected)
		}
	}
}

func TestClassifySpend(t *testing.T) {
	cases := []struct {
		spent    float64
		expected Segment
	}{
		{0, SegmentBasic},
		{199.99, SegmentBasic},
		{200, SegmentRegular},
		{499.99, SegmentRegular},
		{500, SegmentPremium},
		{999.99, SegmentPremium},
		{1000, SegmentVIP},
		{12000, SegmentVIP},
	}
	for _, tc := range cases {
		if got := ClassifySpend(tc.spent); got != tc.expected {
			t.Errorf("ClassifySpend(%.2f) = %s, want %s", tc.spent, got, tc.expected)
		}
	}
}

func TestBucketOrderValue(t *testing.T) {
	cases := []struct {
		total    float64
		expected string
	}{
		{0, BucketUnder50},
		{49.99, BucketUnder50},
		{50, Bucket50To100},
		{99.99, Bucket50To100},
		{100, Bucket100To200},
		{199.99, Bucket100To200},
		{200, Bucket200To500},
		{499.99, Bucket200To500},
		{500, BucketOver500},
		{2500, BucketOver500},
	}
	for _, tc := range cases {
		if got := BucketOrderValue(tc.total); got != tc.expected {
			t.Errorf("BucketOrderValue(%.2f) = %s, want %s", tc.total, got, tc.expected)
		}
	}
}

func TestRatioZeroDenominator(t *testing.T) {
	if got := ratio(5, 0); got != 0 {
		t.Fatalf("ratio with zero denominator should be 0, got %v", got)
	}
	if got := ratio(1, 4); got != 25 {
		t.Fatalf("ratio(1, 4) = %v, want 25", got)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(137.499); got != 137.5 {
		t.Fatalf("round2(137.499) = %v", got)
	}
	if got := round2(0.005); got != 0.01 {
		t.Fatalf("round2(0.005) = %v", got)
	}
}
