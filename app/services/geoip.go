package services

// GeoLocation is the resolved location of a visitor IP. Empty fields mean unknown.
type GeoLocation struct {
	Country string
	City    string
}

// GeoIPResolver maps a visitor IP address to a coarse location. Lookups must never
// block click recording; implementations are expected to be fast and local.
type GeoIPResolver interface {
	Resolve(ip string) GeoLocation
}

// NoopGeoIPResolver resolves every IP to an unknown location. Used when no GeoIP
// database is configured.
type NoopGeoIPResolver struct{}

func NewNoopGeoIPResolver() GeoIPResolver {
	return &NoopGeoIPResolver{}
}

func (r *NoopGeoIPResolver) Resolve(_ string) GeoLocation {
	return GeoLocation{}
}
