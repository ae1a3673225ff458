//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types that describe the visitor behind a request
//  (user-agent fingerprint, IP + geolocation, URL, and timestamp).
//  These structs are inert.  They hold no pointers to database handles
//  or large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"

	"github.com/yanizio/campus/internal/cache"
)

// cacheSize bounds each lookup cache.
const cacheSize = 4096

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties shown on the demo page.
type UA struct {
	Raw         string // Entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "MacOSX", "Windows", "Android", "iOS", etc.
	OSVersion   string // "14.5", "11", "10.0"
	Device      string // "Desktop", "Mobile", "Tablet", "Other"
	Platform    string // "Mac", "Windows", "Linux", "iPad", "iPhone", ...
	IsBot       bool
	PrimaryLang string // First tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based geolocation hints.  Best-effort; empty without a DB.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// RequestInfo is attached to the Request Context by the visitor stage.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // pointer copy, read-only
	Timestamp time.Time
}

//
//  -----------------------------
//  Resolver
//  -----------------------------
//

// Resolver owns the optional MaxMind handle and two LRU caches, one per
// IP and one per User-Agent.  It is safe for concurrent use.  The zero
// value works without geo and without caching.
type Resolver struct {
	geo    *geoip2.Reader
	geoLRU *cache.LRU[string, Geo]
	uaLRU  *cache.LRU[string, UA]
}

// Open returns a Resolver.  An empty dbPath disables geolocation.
func Open(dbPath string) (*Resolver, error) {
	res := &Resolver{uaLRU: cache.New[string, UA](cacheSize)}
	if dbPath == "" {
		return res, nil
	}
	rd, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	res.geo = rd
	res.geoLRU = cache.New[string, Geo](cacheSize)
	return res, nil
}

// Close releases the MaxMind handle, if any.
func (res *Resolver) Close() error {
	if res == nil || res.geo == nil {
		return nil
	}
	return res.geo.Close()
}

// lookupGeo returns best-effort Geo data.
func (res *Resolver) lookupGeo(ip net.IP) Geo {
	if res == nil || res.geo == nil || ip == nil {
		return Geo{IP: ip}
	}
	key := ip.String()
	if g, ok := res.geoLRU.Get(key); ok {
		return g
	}
	rec, err := res.geo.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	g := Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
	res.geoLRU.Add(key, g)
	return g
}

// lookupUA parses raw, consulting the UA cache when present.
func (res *Resolver) lookupUA(raw, acceptLang string) UA {
	if res == nil || res.uaLRU == nil {
		return parseUA(raw, acceptLang)
	}
	key := raw + "\x00" + acceptLang
	if u, ok := res.uaLRU.Get(key); ok {
		return u
	}
	u := parseUA(raw, acceptLang)
	res.uaLRU.Add(key, u)
	return u
}

//
//  -----------------------------
//  UA helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw, acceptLang string) UA {
	u := surfer.Parse(raw)

	info := UA{
		Raw:         raw,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionToString(u.Browser.Version),
		OS:          strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion:   versionToString(u.OS.Version),
		Platform:    strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionToString renders a version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
