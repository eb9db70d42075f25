package units

import (
	"testing"
)

func TestRenderFromWei(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1000000000000000000", "1"},
		{"0xde0b6b3a7640000", "1"},
		{"0x0", "0"},
		{"", "0"},
		{"1500000000000000000", "1.5"},
		{"123456789000000000", "0.12346"},
		{"10000000000000", "0.00001"},
		{"9999999999999", "< 0.00001"},
		{"1", "< 0.00001"},
		{"25000000000000000000000", "25000"},
		{"not-a-number", "0"},
		{"0x00de0b6b3a7640000", "1"},
	}

	for _, tt := range tests {
		if got := RenderFromWei(tt.in); got != tt.want {
			t.Errorf("RenderFromWei(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseWei(t *testing.T) {
	v, err := ParseWei("0x10")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int64() != 16 {
		t.Errorf("expected 16, got %s", v)
	}

	if _, err := ParseWei("0xzz"); err == nil {
		t.Error("expected error for bad hex")
	}
	if _, err := ParseWei("12.5"); err == nil {
		t.Error("expected error for fractional wei")
	}
}

func TestTicker(t *testing.T) {
	if Ticker("") != "ETH" {
		t.Errorf("expected fallback ETH, got %s", Ticker(""))
	}
	if Ticker("MATIC") != "MATIC" {
		t.Errorf("expected MATIC, got %s", Ticker("MATIC"))
	}
}

func TestTickerFor(t *testing.T) {
	tests := []struct {
		ticker  string
		chainID int64
		want    string
	}{
		{"", 1, "ETH"},
		{"", 11155111, "SepoliaETH"},
		{"", 137, "POL"},
		{"", 999999, "ETH"},
		{"", 0, "ETH"},
		{"xDAI", 137, "xDAI"},
	}
	for _, tt := range tests {
		if got := TickerFor(tt.ticker, tt.chainID); got != tt.want {
			t.Errorf("TickerFor(%q, %d) = %q, want %q", tt.ticker, tt.chainID, got, tt.want)
		}
	}
}
