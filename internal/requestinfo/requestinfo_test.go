package requestinfo

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded first", "203.0.113.9, 10.0.0.1", "", "192.0.2.1:5000", "203.0.113.9"},
		{"forwarded garbage skipped", "nope, 198.51.100.4", "", "192.0.2.1:5000", "198.51.100.4"},
		{"real ip", "", "198.51.100.7", "192.0.2.1:5000", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:5000", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-Ip", tt.realIP)
			}
			if got := clientIP(r); got.String() != tt.want {
				t.Fatalf("clientIP = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestPrimaryLang(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"en-US,en;q=0.9":          "en-us",
		"fr;q=0.8, en":            "fr",
		"  ES , en-GB;q=0.5 ":     "es",
	}
	for in, want := range cases {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollect_WithoutGeo(t *testing.T) {
	res, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer res.Close()

	r := httptest.NewRequest("GET", "/demo?x=1", nil)
	r.RemoteAddr = "192.0.2.10:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")

	info := res.Collect(r)
	if info.Geo.IP.String() != "192.0.2.10" {
		t.Fatalf("geo ip = %v", info.Geo.IP)
	}
	if info.Geo.CountryISO != "" {
		t.Fatalf("unexpected country without DB: %q", info.Geo.CountryISO)
	}
	if info.UA.Device != "Desktop" {
		t.Fatalf("device = %q, want Desktop", info.UA.Device)
	}
	if info.URL.Path != "/demo" {
		t.Fatalf("url path = %q", info.URL.Path)
	}
}

func TestCollect_CachesUA(t *testing.T) {
	res, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0")
		res.Collect(r)
	}
	if n := res.uaLRU.Len(); n != 1 {
		t.Fatalf("ua cache len = %d, want 1", n)
	}

	var zero Resolver
	r := httptest.NewRequest("GET", "/", nil)
	if info := zero.Collect(r); info == nil {
		t.Fatal("zero Resolver returned nil")
	}
}
