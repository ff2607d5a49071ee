package identifiers

import (
	"testing"
)

func TestExtract(t *testing.T) {
	extractor := NewProductExtractor()

	tests := []struct {
		name     string
		url      string
		platform string
		wantID   string
		wantOK   bool
	}{
		{
			name:     "Coupang vp products path",
			url:      "https://www.coupang.com/vp/products/8470784672?itemId=24519876305&vendorItemId=91530425117",
			platform: "coupang",
			wantID:   "8470784672",
			wantOK:   true,
		},
		{
			name:     "Coupang products path",
			url:      "https://www.coupang.com/products/8473798698",
			platform: "coupang",
			wantID:   "8473798698",
			wantOK:   true,
		},
		{
			name:     "Coupang mobile host",
			url:      "https://m.coupang.com/vp/products/8473798698",
			platform: "coupang",
			wantID:   "8473798698",
			wantOK:   true,
		},
		{
			name:     "Coupang query parameter only",
			url:      "https://www.coupang.com/np/search?productId=123456",
			platform: "coupang",
			wantID:   "123456",
			wantOK:   true,
		},
		{
			name:     "Coupang itemId does not match vendorItemId",
			url:      "https://www.coupang.com/np/search?vendorItemId=999&itemId=555",
			platform: "coupang",
			wantID:   "555",
			wantOK:   true,
		},
		{
			name:     "Platform key is case-insensitive",
			url:      "https://www.coupang.com/vp/products/42",
			platform: "Coupang",
			wantID:   "42",
			wantOK:   true,
		},
		{
			name:     "Naver catalog",
			url:      "https://search.shopping.naver.com/catalog/12345678901",
			platform: "naver",
			wantID:   "12345678901",
			wantOK:   true,
		},
		{
			name:     "Naver nv_mid parameter",
			url:      "https://shopping.naver.com/detail/detail.naver?nv_mid=12345678901",
			platform: "naver",
			wantID:   "12345678901",
			wantOK:   true,
		},
		{
			name:     "11st products path with suffix",
			url:      "https://www.11st.co.kr/products/1234567890/share",
			platform: "11st",
			wantID:   "1234567890",
			wantOK:   true,
		},
		{
			name:     "11st prdNo parameter",
			url:      "https://www.11st.co.kr/product/SellerProductDetail.tmall?prdNo=777",
			platform: "11st",
			wantID:   "777",
			wantOK:   true,
		},
		{
			name:     "No matching pattern",
			url:      "https://www.coupang.com/np/categories/186764",
			platform: "coupang",
			wantOK:   false,
		},
		{
			name:     "Empty URL",
			url:      "",
			platform: "coupang",
			wantOK:   false,
		},
		{
			name:     "Unknown platform",
			url:      "https://www.coupang.com/vp/products/1",
			platform: "gmarket",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := extractor.Extract(tt.url, tt.platform)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q, %q) ok = %v, want %v", tt.url, tt.platform, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("Extract(%q, %q) = %q, want %q", tt.url, tt.platform, id, tt.wantID)
			}
		})
	}
}

func TestIsValidURL(t *testing.T) {
	extractor := NewProductExtractor()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.coupang.com/vp/products/1", true},
		{"http://example.com", true},
		{"www.coupang.com/vp/products/1", false},
		{"/vp/products/1", false},
		{"", false},
		{"   ", false},
		{"://broken", false},
	}

	for _, tt := range tests {
		if got := extractor.IsValidURL(tt.url); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsValidPlatformURL(t *testing.T) {
	extractor := NewProductExtractor()

	tests := []struct {
		url      string
		platform string
		want     bool
	}{
		{"https://www.coupang.com/vp/products/1", "coupang", true},
		{"https://m.coupang.com/vp/products/1", "COUPANG", true},
		{"https://www.coupang.com/vp/products/1", "naver", false},
		{"https://shopping.naver.com/catalog/1", "naver", true},
		{"https://smartstore.naver.com/shop/products/1", "naver", true},
		{"https://www.11st.co.kr/products/1", "11st", true},
		{"https://www.11st.co.kr/products/1", "unknown", false},
		{"not a url", "coupang", false},
	}

	for _, tt := range tests {
		if got := extractor.IsValidPlatformURL(tt.url, tt.platform); got != tt.want {
			t.Errorf("IsValidPlatformURL(%q, %q) = %v, want %v", tt.url, tt.platform, got, tt.want)
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	extractor := NewProductExtractor()

	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.coupang.com/vp/products/1", "coupang", true},
		{"https://search.shopping.naver.com/catalog/1", "naver", true},
		{"https://www.11st.co.kr/products/1", "11st", true},
		{"https://www.gmarket.co.kr/item?goodscode=1", "", false},
		{"coupang.com/vp/products/1", "", false},
	}

	for _, tt := range tests {
		got, ok := extractor.DetectPlatform(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("DetectPlatform(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	extractor := NewProductExtractor()

	tests := []struct {
		url  string
		want string
	}{
		{
			url:  "https://www.coupang.com/vp/products/8470784672?itemId=1&vendorItemId=2",
			want: "https://www.coupang.com/vp/products/8470784672",
		},
		{
			url:  "https://www.coupang.com/vp/products/8470784672#reviews",
			want: "https://www.coupang.com/vp/products/8470784672",
		},
		{
			url:  "https://www.11st.co.kr/products/1",
			want: "https://www.11st.co.kr/products/1",
		},
		{
			url:  "not a url?x=1",
			want: "not a url?x=1",
		},
	}

	for _, tt := range tests {
		if got := extractor.NormalizeURL(tt.url); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractRoundTrip(t *testing.T) {
	extractor := NewProductExtractor()

	ids := []string{"1", "8470784672", "0012", "99999999999999"}
	for _, id := range ids {
		url := "https://www.coupang.com/vp/products/" + id + "?itemId=5"
		got, ok := extractor.Extract(url, PlatformCoupang)
		if !ok || got != id {
			t.Errorf("round trip for %q returned (%q, %v)", id, got, ok)
		}
	}
}

func TestSupportedPlatforms(t *testing.T) {
	extractor := NewProductExtractor()

	got := extractor.SupportedPlatforms()
	want := []string{PlatformCoupang, PlatformNaver, Platform11st}
	if len(got) != len(want) {
		t.Fatalf("SupportedPlatforms() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SupportedPlatforms()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
