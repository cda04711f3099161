// Package domain models OpenWeatherMap (OWM) environmental index measurements:
// ultraviolet intensity readings and sulphur dioxide pollution readings.
//
// # Data Source
//
// Payloads originate from two OWM endpoints: the UV index API and the SO2 air
// pollution API. The collector service polls both on a schedule and publishes
// each payload to the Kafka source topic wrapped in an [Envelope], injecting a
// "kind" discriminator ("uv" or "so2") because the payloads themselves carry
// no type marker.
//
// # Provider Payload Conventions
//
// UV index payloads are flat:
//
//	{"lat": 47.37, "lon": 8.55, "date": 1594382400, "value": 6.53}
//
//	"date" is already a unix timestamp and is taken as the reference time
//	without reformatting. Coordinates sometimes arrive quoted ("8.55"); numeric
//	strings coerce.
//
// SO2 payloads nest their coordinates and use an ISO timestamp:
//
//	{"time": "2020-07-10T12:00:00Z",
//	 "location": {"longitude": 8.55, "latitude": 47.37},
//	 "data": [{"precision": -4.99, "pressure": 1000, "value": 8.17e-08}]}
//
//	"time" is normalized by replacing "Z" with "+00" and "T" with a space,
//	then parsed with the canonical layout "2006-01-02 15:04:05-07". The "data"
//	list is opaque: samples pass through untouched and unvalidated.
//
// Reception time is stamped from the package clock when a payload is parsed.
//
// # Canonical Output
//
// Serialization is deliberately asymmetric with parsing: parsers read provider
// field names ("date", "time", "lon", "location.longitude"), while ToMap emits
// the canonical ones ("reference_time", "reception_time", "value",
// "so2_samples", "interval", "location"). Canonical maps do not round-trip
// through the parsers, and nothing should try to make them.
//
// # Exposure Risk
//
// UV intensity classifies into the standard exposure risk bands:
//
//	[0, 2.9)    low
//	[2.9, 5.9)  moderate
//	[5.9, 7.9)  high
//	[7.9, 10.9) very high
//	otherwise   extreme
//
// Negative intensities fall through to extreme; constructed records never
// carry them, but the classifier is total for arbitrary input.
//
// # Key Generation
//
// Sink message keys are deterministic SHA-256 hashes of kind|lat|lon|reference
// time. Reprocessing a raw payload yields the same key, so replays stay
// partition-stable without distributed coordination. See [SerializeRecord].
package domain
