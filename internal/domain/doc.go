// Package domain models parametric crop-insurance policies, claims, and the
// oracle-attested weather readings that settle them.
//
// # Fixed-point conventions
//
// All weather quantities and trigger thresholds are int64 values scaled by
// 100 ("centi" units):
//
//	Temperature: °C × 100, signed   (2534  = 25.34 °C, -450 = -4.5 °C)
//	Rainfall:    mm × 100           (5000  = 50 mm)
//	Humidity:    %  × 100           (8700  = 87%)
//	Wind speed:  km/h × 100         (12000 = 120 km/h)
//
// Money amounts (premiums, coverage, treasury balances) are plain int64 in
// the ledger's base unit. All arithmetic is integer arithmetic with
// truncating division; the truncation order in the premium formula and the
// running-average update must not be reordered or replaced with floating
// point, since either changes quoted premiums and stored averages.
//
// # Locations
//
// A location is a (latitude, longitude) pair rounded to integer microdegrees.
// Its identifier is a deterministic SHA-256 short hash of the microdegree
// pair, so the same coordinates always map to the same ID. The location ID is
// the join key between policies, oracle requests, and reading history.
//
// # Lifecycles
//
// Policy:        Active → Expired | Cancelled | ClaimPaid (terminal states).
// Claim:         processed=false → processed=true, exactly once. A denied
//                claim does not change the policy; the holder may claim again
//                within the coverage window.
// OracleRequest: unverified → verified, at most once. Requests never expire.
package domain
